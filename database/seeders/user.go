package seeders

import (
	"errors"
	"fmt"

	"p2h.app/configs"
	"p2h.app/configs/configslog"
	"p2h.app/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdminUser creates the first administrator. It never changes an
// existing account and is skipped when no password is configured.
func SeedAdminUser(db *gorm.DB, cfg configs.AdminSeedConfig) error {
	if cfg.Password == "" {
		configslog.SLog.Warn("ADMIN_PASSWORD is empty, admin user seeding skipped.")
		return nil
	}

	var existing models.User
	err := db.Where("username = ?", cfg.Username).First(&existing).Error
	if err == nil {
		configslog.SLog.Infof("User '%s' already exists, skipping.", cfg.Username)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("admin user lookup failed: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("admin password could not be hashed: %w", err)
	}
	admin := models.User{
		Username:     cfg.Username,
		PasswordHash: string(hash),
		Name:         cfg.Name,
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("admin user could not be created: %w", err)
	}
	configslog.SLog.Infof("Admin user '%s' created.", admin.Username)
	return nil
}
