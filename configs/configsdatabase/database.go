package configsdatabase

import (
	"time"

	"p2h.app/configs"
	"p2h.app/configs/configslog"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDB opens the postgres pool. Failure is fatal: nothing works without the database.
func InitDB(cfg *configs.AppConfig) {
	logLevel := logger.Warn
	if !cfg.IsProduction() {
		logLevel = logger.Info
	}

	conn, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		configslog.Log.Fatal("Database connection failed",
			zap.String("host", cfg.DB.Host),
			zap.Int("port", cfg.DB.Port),
			zap.String("dbname", cfg.DB.Name),
			zap.Error(err),
		)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		configslog.Log.Fatal("Could not obtain sql.DB from gorm", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	db = conn
	configslog.SLog.Infof("Connected to database %s@%s:%d", cfg.DB.Name, cfg.DB.Host, cfg.DB.Port)
}

// GetDB returns the shared pool opened by InitDB.
func GetDB() *gorm.DB {
	if db == nil {
		configslog.Log.Fatal("Database not initialised, call InitDB first")
	}
	return db
}

func CloseDB() {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		configslog.Log.Error("Could not obtain sql.DB while closing", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		configslog.Log.Error("Database close failed", zap.Error(err))
		return
	}
	configslog.SLog.Info("Database connection closed")
}
