package configslog

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the structured logger, SLog its sugared twin for printf-style calls.
// Both are no-ops until InitLogger runs.
var (
	Log  = zap.NewNop()
	SLog = Log.Sugar()
)

// InitLogger builds the global logger from APP_ENV and LOG_LEVEL.
func InitLogger() {
	env := strings.ToLower(os.Getenv("APP_ENV"))

	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(lvl)); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(level)
		}
	}

	logger, err := cfg.Build(zap.AddCaller())
	if err != nil {
		logger = zap.NewExample()
		logger.Warn("Logger config failed, falling back to example logger", zap.Error(err))
	}

	Log = logger
	SLog = logger.Sugar()
}

// SyncLogger flushes buffered log entries.
func SyncLogger() {
	_ = Log.Sync()
}
