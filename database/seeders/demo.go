package seeders

import (
	"context"
	"errors"
	"fmt"

	"p2h.app/configs/configslog"
	"p2h.app/models"
	"p2h.app/repositories"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is shared by every demo account.
const DemoPassword = "p2h-demo"

type demoPerson struct {
	username string
	name     string
	nik      string
}

var (
	demoSupervisors = []demoPerson{
		{username: "pengawas.budi", name: "Budi Santoso"},
		{username: "pengawas.sari", name: "Sari Wulandari"},
	}
	demoDrivers = []demoPerson{
		{username: "driver.agus", name: "Agus Pratama", nik: "3201010101900001"},
		{username: "driver.dewi", name: "Dewi Lestari", nik: "3201010101900002"},
	}
	demoVehicles = []struct {
		number   string
		typeName string
	}{
		{number: "DT-101", typeName: "Dump Truck"},
		{number: "DT-102", typeName: "Dump Truck"},
		{number: "LV-201", typeName: "Light Vehicle"},
	}
)

// SeedDemoData fills an empty installation with accounts and vehicles for
// local development. Vehicle types must be seeded first.
func SeedDemoData(db *gorm.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("demo password could not be hashed: %w", err)
	}

	for _, p := range demoSupervisors {
		user, created, err := ensureUser(db, p, models.RolePengawas, string(hash))
		if err != nil {
			return err
		}
		if created {
			if err := db.Create(&models.Supervisor{Name: p.name, UserID: &user.ID}).Error; err != nil {
				return fmt.Errorf("demo supervisor %s: %w", p.name, err)
			}
		}
	}

	for _, p := range demoDrivers {
		user, created, err := ensureUser(db, p, models.RoleDriver, string(hash))
		if err != nil {
			return err
		}
		if created {
			driver := models.Driver{Name: p.name, NIK: p.nik, UserID: &user.ID, IsActive: true}
			if err := db.Create(&driver).Error; err != nil {
				return fmt.Errorf("demo driver %s: %w", p.name, err)
			}
		}
	}

	ctx := context.Background()
	vehicles := repositories.NewVehicleRepository(db)
	for _, v := range demoVehicles {
		var existing models.Vehicle
		err := db.Where("vehicle_number = ?", v.number).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("demo vehicle lookup %s: %w", v.number, err)
		}
		vt, err := vehicles.FindTypeByName(ctx, v.typeName)
		if err != nil {
			return fmt.Errorf("vehicle type %s must be seeded before demo vehicles: %w", v.typeName, err)
		}
		vehicle := models.Vehicle{VehicleNumber: v.number, VehicleTypeID: vt.ID, Status: models.VehicleStatusActive}
		if err := vehicles.Create(ctx, &vehicle); err != nil {
			return fmt.Errorf("demo vehicle %s: %w", v.number, err)
		}
	}

	configslog.SLog.Infof("Demo data ready, every demo account uses password %q.", DemoPassword)
	return nil
}

func ensureUser(db *gorm.DB, p demoPerson, role, hash string) (*models.User, bool, error) {
	var user models.User
	err := db.Where("username = ?", p.username).First(&user).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("demo user lookup %s: %w", p.username, err)
	}
	user = models.User{Username: p.username, PasswordHash: hash, Name: p.name, NIK: p.nik, Role: role}
	if err := db.Create(&user).Error; err != nil {
		return nil, false, fmt.Errorf("demo user %s: %w", p.username, err)
	}
	return &user, true, nil
}
