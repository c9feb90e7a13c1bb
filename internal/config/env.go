package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides are read from the process environment on every parse and win over the file.
type envOverrides struct {
	Timezone      *string `env:"TASQUE_TIMEZONE"`
	LogLevel      *string `env:"TASQUE_LOG_LEVEL"`
	HistoryDriver *string `env:"TASQUE_HISTORY_DRIVER"`
	HistoryPath   *string `env:"TASQUE_HISTORY_PATH"`
}

func applyEnv(cfg *Config, environ map[string]string) error {
	var ov envOverrides
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&ov, opts); err != nil {
		return fmt.Errorf("env overrides: %w", err)
	}
	if ov.Timezone != nil {
		cfg.Timezone = *ov.Timezone
	}
	if ov.LogLevel != nil {
		cfg.Logging.Level = *ov.LogLevel
	}
	if ov.HistoryDriver != nil {
		cfg.History.Driver = *ov.HistoryDriver
	}
	if ov.HistoryPath != nil {
		cfg.History.Path = *ov.HistoryPath
	}
	return nil
}
