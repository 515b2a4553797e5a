package migrations

import (
	"fmt"

	"p2h.app/configs/configslog"
	"p2h.app/models"

	"gorm.io/gorm"
)

func MigrateFleetTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating vehicle_types & vehicles tables...")
	if err := db.AutoMigrate(&models.VehicleType{}, &models.Vehicle{}); err != nil {
		return fmt.Errorf("vehicle_types & vehicles migration failed: %w", err)
	}
	configslog.SLog.Info("Vehicle_types & vehicles tables migrated successfully")
	return nil
}
