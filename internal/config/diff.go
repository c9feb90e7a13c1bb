package config

import (
	"slices"
	"strings"

	"tasque/pkg/logx"
)

// TaskDiff lists task ids by how they changed between two configs.
type TaskDiff struct {
	Added   []string
	Changed []string
	Removed []string
}

func (d TaskDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Changed) == 0 && len(d.Removed) == 0
}

// DiffTasks compares the enabled tasks of two configs. A task whose schedules changed (or
// were reordered) is reported as changed.
func DiffTasks(oldCfg, newCfg *Config) TaskDiff {
	oldT := taskIndex(oldCfg)
	newT := taskIndex(newCfg)

	var d TaskDiff
	for _, t := range enabled(newCfg) {
		prev, ok := oldT[t.ID]
		switch {
		case !ok:
			d.Added = append(d.Added, t.ID)
		case !slices.Equal(prev.Schedules, t.Schedules):
			d.Changed = append(d.Changed, t.ID)
		}
	}
	for _, t := range enabled(oldCfg) {
		if _, ok := newT[t.ID]; !ok {
			d.Removed = append(d.Removed, t.ID)
		}
	}
	return d
}

func enabled(cfg *Config) []TaskConfig {
	if cfg == nil {
		return nil
	}
	return cfg.EnabledTasks()
}

func taskIndex(cfg *Config) map[string]TaskConfig {
	ts := enabled(cfg)
	m := make(map[string]TaskConfig, len(ts))
	for _, t := range ts {
		m[t.ID] = t
	}
	return m
}

// SummarizeConfigChange returns a compact list of changed sections and structured attrs
// for logging.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 4)
	attrs := make([]logx.Field, 0, 8)

	if strings.TrimSpace(oldCfg.Timezone) != strings.TrimSpace(newCfg.Timezone) {
		changed = append(changed, "timezone")
		attrs = append(attrs, logx.String("timezone", newCfg.Timezone))
	}
	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logx.level", newCfg.Logging.Level),
			logx.Bool("logx.console", newCfg.Logging.Console),
			logx.Bool("logx.file_enabled", newCfg.Logging.File.Enabled),
		)
	}
	if oldCfg.History != newCfg.History {
		changed = append(changed, "history")
		attrs = append(attrs, logx.String("history.driver", newCfg.History.Driver))
	}
	if d := DiffTasks(oldCfg, newCfg); !d.Empty() {
		changed = append(changed, "tasks")
		attrs = append(attrs,
			logx.Strings("tasks.added", d.Added),
			logx.Strings("tasks.changed", d.Changed),
			logx.Strings("tasks.removed", d.Removed),
		)
	}
	return changed, attrs
}
