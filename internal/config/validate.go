package config

import (
	"errors"
	"fmt"

	"tasque/internal/storage"
	"tasque/pkg/logx"
)

var ErrInvalid = errors.New("invalid config")

// Validate checks everything that would otherwise fail at runtime: the timezone, the log
// level, the history driver, task ids and every schedule expression. All problems are
// reported at once.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalid)
	}
	var errs []error
	if _, err := cfg.Location(); err != nil {
		errs = append(errs, err)
	}
	if !logx.ValidLevel(cfg.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level))
	}
	if !storage.DriverAvailable(cfg.History.Driver) {
		errs = append(errs, fmt.Errorf("history.driver: unknown driver %q or not built into this binary", cfg.History.Driver))
	}
	if _, err := cfg.History.Storage(); err != nil {
		errs = append(errs, err)
	}

	seen := make(map[string]int, len(cfg.Tasks))
	for i, t := range cfg.Tasks {
		if t.ID == "" {
			errs = append(errs, fmt.Errorf("tasks[%d]: id is required", i))
			continue
		}
		if j, dup := seen[t.ID]; dup {
			errs = append(errs, fmt.Errorf("tasks[%d]: duplicate id %q (first at tasks[%d])", i, t.ID, j))
			continue
		}
		seen[t.ID] = i
		if len(t.Schedules) == 0 {
			errs = append(errs, fmt.Errorf("tasks[%d] %q: no schedules", i, t.ID))
			continue
		}
		if _, err := t.Schedule(); err != nil {
			errs = append(errs, fmt.Errorf("tasks[%d]: %w", i, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}
