package migrations

import (
	"fmt"

	"p2h.app/configs/configslog"
	"p2h.app/models"

	"gorm.io/gorm"
)

func MigrateInspectionItemsTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating inspection_items table...")
	if err := db.AutoMigrate(&models.InspectionItem{}); err != nil {
		return fmt.Errorf("inspection_items migration failed: %w", err)
	}
	configslog.SLog.Info("Inspection_items table migrated successfully")
	return nil
}
