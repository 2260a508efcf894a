package app

import (
	"github.com/doorkeeper/petdoor/internal/device"
	"github.com/doorkeeper/petdoor/internal/logging"
	"github.com/doorkeeper/petdoor/pkg/config"
)

func setupLogger(cfg config.LoggingConfig) device.Logger {
	return logging.New(logging.Options{
		FilePath:   cfg.FilePath,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxAgeDays: cfg.MaxAgeDays,
		MaxBackups: cfg.MaxBackups,
	})
}
