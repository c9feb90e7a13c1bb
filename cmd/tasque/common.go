package main

import (
	"fmt"

	"github.com/urfave/cli"

	"tasque/internal/config"
	"tasque/internal/storage"
	"tasque/pkg/logx"
)

var (
	configPath string

	configFlag = cli.StringFlag{
		Name:        "config, c",
		Value:       "./tasque.yaml",
		Usage:       "path to the config file (json, jsonc or yaml)",
		EnvVar:      "TASQUE_CONFIG",
		Destination: &configPath,
	}
)

// loadConfig parses and validates the config file. The manager is returned committed so
// that a later Watch only publishes real changes.
func loadConfig(path string) (*config.ConfigManager, *config.Config, error) {
	mgr := config.NewConfigManager(path)
	cfg, err := mgr.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}
	return mgr, cfg, nil
}

// openHistory opens the fire journal described by cfg. It returns nil when the journal
// is disabled.
func openHistory(cfg *config.Config, log logx.Logger) (storage.Store, error) {
	sc, err := cfg.History.Storage()
	if err != nil {
		return nil, err
	}
	return storage.Open(sc, log)
}
