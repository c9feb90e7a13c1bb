package storage

import (
	"fmt"
	"strings"

	"tasque/pkg/logx"
)

func normalizeDriver(driver string) string {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "sqlite3" {
		return "sqlite"
	}
	return driver
}

// DriverAvailable reports whether Open accepts driver in this build. "" and "none" are
// always available.
func DriverAvailable(driver string) bool {
	switch normalizeDriver(driver) {
	case "", "none", "file":
		return true
	case "sqlite":
		return sqliteBuilt
	default:
		return false
	}
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := normalizeDriver(cfg.Driver)
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite":
		return openSQLite(cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", driver)
	}
}
