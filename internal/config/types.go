package config

import (
	"fmt"
	"strings"
	"time"

	"tasque/internal/storage"
	"tasque/pkg/logx"
	"tasque/pkg/schedule"
)

const (
	DefaultHistoryDriver = "file"
	DefaultHistoryPath   = "./tasque_history"
)

type Config struct {
	// Timezone is an IANA name (e.g. "Europe/Berlin"). Empty means the host's local zone.
	Timezone string        `json:"timezone,omitempty"`
	Logging  LoggingConfig `json:"logging"`
	History  HistoryConfig `json:"history"`
	Tasks    []TaskConfig  `json:"tasks"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// HistoryConfig controls the fire journal.
//
// Example:
//
//	"history": { "driver": "file", "path": "./tasque_history" }
//
// Driver "none" disables the journal.
type HistoryConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// Storage maps the section onto the journal driver config. An empty busy_timeout keeps the
// driver's default.
func (h HistoryConfig) Storage() (storage.Config, error) {
	cfg := storage.Config{Driver: h.Driver, Path: h.Path}
	raw := strings.TrimSpace(h.BusyTimeout)
	if raw == "" {
		return cfg, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return storage.Config{}, fmt.Errorf("history.busy_timeout %q: %w", raw, err)
	}
	if d < 0 {
		return storage.Config{}, fmt.Errorf("history.busy_timeout %q: negative", raw)
	}
	cfg.BusyTimeout = d
	return cfg, nil
}

// TaskConfig registers one task. Schedules are six-field cron expressions (seconds first)
// or one of @hourly, @daily, @midnight, @monthly; the task fires when any of them matches.
type TaskConfig struct {
	ID        string   `json:"id"`
	Schedules []string `json:"schedules"`
	Disabled  bool     `json:"disabled,omitempty"`
}

// Schedule parses the task's expressions.
func (t TaskConfig) Schedule() (schedule.Set, error) {
	set, err := schedule.ParseCronList(t.Schedules)
	if err != nil {
		return schedule.Set{}, fmt.Errorf("task %q: %w", t.ID, err)
	}
	return set, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", name, err)
	}
	return loc, nil
}

// LogConfig maps the logging section onto logx.
func (c *Config) LogConfig() logx.Config {
	return logx.Config{
		Level:   c.Logging.Level,
		Console: c.Logging.Console,
		File: logx.FileConfig{
			Enabled: c.Logging.File.Enabled,
			Path:    c.Logging.File.Path,
		},
	}
}

// EnabledTasks returns the tasks that are not disabled, in file order.
func (c *Config) EnabledTasks() []TaskConfig {
	out := make([]TaskConfig, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		if !t.Disabled {
			out = append(out, t)
		}
	}
	return out
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
	c.History.Driver = strings.ToLower(strings.TrimSpace(c.History.Driver))
	if c.History.Driver == "" {
		c.History.Driver = DefaultHistoryDriver
	}
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = DefaultHistoryPath
	}
	for i := range c.Tasks {
		c.Tasks[i].ID = strings.TrimSpace(c.Tasks[i].ID)
	}
}
