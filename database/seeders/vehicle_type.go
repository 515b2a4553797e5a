package seeders

import (
	"context"
	"errors"

	"p2h.app/configs/configslog"
	"p2h.app/models"
	"p2h.app/repositories"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var defaultVehicleTypes = []string{"Dump Truck", "Light Vehicle", "Excavator", "Bulldozer", "Water Truck"}

// SeedVehicleTypes creates the default vehicle types that are still missing.
func SeedVehicleTypes(db *gorm.DB) error {
	ctx := context.Background()
	vehicles := repositories.NewVehicleRepository(db)
	var createdCount int
	var errorOccurred bool

	for _, name := range defaultVehicleTypes {
		_, err := vehicles.FindTypeByName(ctx, name)
		if err == nil {
			configslog.SLog.Debugf("Vehicle type '%s' already exists, skipping.", name)
			continue
		} else if !errors.Is(err, repositories.ErrNotFound) {
			configslog.Log.Error("Vehicle type lookup failed", zap.String("name", name), zap.Error(err))
			errorOccurred = true
			continue
		}

		vt := models.VehicleType{Name: name}
		if err := vehicles.CreateType(ctx, &vt); err != nil {
			configslog.Log.Error("Vehicle type could not be created", zap.String("name", name), zap.Error(err))
			errorOccurred = true
			continue
		}
		createdCount++
	}

	if errorOccurred {
		return errors.New("at least one vehicle type could not be seeded")
	}
	configslog.SLog.Infof("Vehicle types seeded (%d new).", createdCount)
	return nil
}
