package database

import (
	"errors"

	"p2h.app/configs"
	"p2h.app/configs/configslog"
	"p2h.app/database/migrations"
	"p2h.app/database/seeders"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Options struct {
	Migrate bool
	Seed    bool
	// Demo adds development accounts and vehicles on top of Seed.
	Demo  bool
	Admin configs.AdminSeedConfig
}

// Initialize runs migrations and seeders inside a single transaction so a
// failed step leaves the database untouched.
func Initialize(db *gorm.DB, opts Options) error {
	if !opts.Migrate && !opts.Seed {
		configslog.SLog.Info("Neither migrate nor seed requested, nothing to do.")
		return nil
	}

	configslog.SLog.Info("Database initialisation starting...")
	err := db.Transaction(func(tx *gorm.DB) error {
		if opts.Migrate {
			if err := RunMigrationsInOrder(tx); err != nil {
				configslog.Log.Error("Migration failed", zap.Error(err))
				return err
			}
		} else {
			configslog.SLog.Info("Migrate flag not set, skipping migrations.")
		}

		if opts.Seed {
			if err := CheckAndRunSeeders(tx, opts); err != nil {
				configslog.Log.Error("Seeding failed", zap.Error(err))
				return err
			}
		} else {
			configslog.SLog.Info("Seed flag not set, skipping seeders.")
		}
		return nil
	})
	if err != nil {
		configslog.SLog.Warn("Database initialisation rolled back.")
		return err
	}

	configslog.SLog.Info("Database initialisation completed successfully")
	return nil
}

func RunMigrationsInOrder(db *gorm.DB) error {
	return migrations.RunInOrder(db)
}

func CheckAndRunSeeders(db *gorm.DB, opts Options) error {
	var errs []error
	if err := seeders.SeedAdminUser(db, opts.Admin); err != nil {
		errs = append(errs, err)
	}
	if err := seeders.SeedVehicleTypes(db); err != nil {
		errs = append(errs, err)
	}
	if err := seeders.SeedInspectionItems(db); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 && opts.Demo {
		if err := seeders.SeedDemoData(db); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
