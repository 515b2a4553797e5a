package migrations

import (
	"p2h.app/configs/configslog"
	"p2h.app/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateP2HFormTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating p2h_forms, p2h_form_details & p2h_review_logs tables...")
	err := db.AutoMigrate(&models.P2HForm{}, &models.P2HFormDetail{}, &models.P2HReviewLog{})
	if err != nil {
		configslog.Log.Error("Failed to migrate p2h form tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("P2H form tables migrated successfully")
	return nil
}
