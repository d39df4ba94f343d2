package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// Config controls how the package logger is built.
type Config struct {
	Environment string
	Level       string
	Service     string
	Version     string
}

// Initialize builds the package-level zap logger. Production environments
// get JSON output; anything else gets a human-readable console encoder.
func Initialize(cfg Config) error {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	var zcfg zap.Config
	if cfg.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	built, err := zcfg.Build(zap.Fields(
		zap.String("service", cfg.Service),
		zap.String("version", cfg.Version),
	))
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	log = built
	return nil
}

func logger() *zap.Logger {
	if log == nil {
		log, _ = zap.NewDevelopment()
	}
	return log
}

// Sync flushes any buffered log entries. Call before process exit.
func Sync() {
	_ = logger().Sync()
}

func Debug(msg string, fields ...zap.Field) { logger().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { logger().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { logger().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { logger().Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { logger().Fatal(msg, fields...) }
