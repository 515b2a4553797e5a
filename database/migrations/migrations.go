package migrations

import (
	"p2h.app/configs/configslog"

	"gorm.io/gorm"
)

// RunInOrder applies every table migration. Accounts and fleet come first
// because forms reference them by id.
func RunInOrder(db *gorm.DB) error {
	steps := []struct {
		name string
		run  func(*gorm.DB) error
	}{
		{"accounts", MigrateAccountTables},
		{"fleet", MigrateFleetTables},
		{"inspection items", MigrateInspectionItemsTable},
		{"p2h forms", MigrateP2HFormTables},
	}
	for _, step := range steps {
		configslog.SLog.Infof(" -> Running %s migrations...", step.name)
		if err := step.run(db); err != nil {
			return err
		}
	}
	configslog.SLog.Info("All migrations completed.")
	return nil
}
