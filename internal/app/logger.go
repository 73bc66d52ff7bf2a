// Package app provides logger initialization.
package app

import (
	"github.com/guttosm/embedded/config"
	"github.com/guttosm/embedded/internal/logger"
)

// InitializeLogger initializes the JSON logger from the loaded configuration.
func InitializeLogger(cfg config.LoggingConfig) {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	logger.Init(level, cfg.Pretty)
}
