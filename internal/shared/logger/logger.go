package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
	once   sync.Once
)

// GetLogger returns the process wide zap.Logger, built once on first use.
// APP_ENV=production selects JSON output, LOG_LEVEL overrides the level of either config.
func GetLogger() *zap.Logger {
	once.Do(func() {
		l, err := newConfig(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL")).Build()
		if err != nil {
			panic("failed logger setup : " + err.Error())
		}
		logger = l.Named("sneakerbid")
	})
	return logger
}

func newConfig(env, level string) zap.Config {
	cfg := zap.NewDevelopmentConfig()
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	if level != "" {
		// an unknown level keeps the default of the chosen config
		if lvl, err := zapcore.ParseLevel(level); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(lvl)
		}
	}
	return cfg
}
