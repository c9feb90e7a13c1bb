package storage

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDisabled = errors.New("storage disabled")
	ErrClosed   = errors.New("storage closed")
)

// Config configures storage.
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// FireRecord is one dispatched occurrence. Keep it compact and schema-stable.
type FireRecord struct {
	Session string    `json:"session"`
	TaskID  string    `json:"task"`
	Due     time.Time `json:"due"`
	FiredAt time.Time `json:"fired_at"`
	Tied    bool      `json:"tied,omitempty"`
}

// Store is the persistence API used by the runner and the CLI.
type Store interface {
	AppendFire(ctx context.Context, r FireRecord) error
	// LastFire returns the most recent record for taskID.
	LastFire(ctx context.Context, taskID string) (FireRecord, bool, error)
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]FireRecord, error)
	Close() error
}
