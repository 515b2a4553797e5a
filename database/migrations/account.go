package migrations

import (
	"fmt"

	"p2h.app/configs/configslog"
	"p2h.app/models"

	"gorm.io/gorm"
)

func MigrateAccountTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating users, drivers & supervisors tables...")
	if err := db.AutoMigrate(&models.User{}, &models.Driver{}, &models.Supervisor{}); err != nil {
		return fmt.Errorf("users, drivers & supervisors migration failed: %w", err)
	}
	configslog.SLog.Info("Users, drivers & supervisors tables migrated successfully")
	return nil
}
