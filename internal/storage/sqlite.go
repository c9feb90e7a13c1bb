//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tasque/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

const sqliteBuilt = true

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) AppendFire(ctx context.Context, r FireRecord) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if r.FiredAt.IsZero() {
		r.FiredAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fires(session, task, due, fired_at, tied) VALUES(?,?,?,?,?)`,
		r.Session, r.TaskID, r.Due.Unix(), r.FiredAt.UnixMilli(), r.Tied,
	)
	return err
}

const fireColumns = `session, task, due, fired_at, tied`

func (s *sqliteStore) LastFire(ctx context.Context, taskID string) (FireRecord, bool, error) {
	if s == nil || s.db == nil {
		return FireRecord{}, false, ErrDisabled
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+fireColumns+` FROM fires WHERE task = ? ORDER BY id DESC LIMIT 1`, taskID)
	r, err := scanFire(row)
	if errors.Is(err, sql.ErrNoRows) {
		return FireRecord{}, false, nil
	}
	if err != nil {
		return FireRecord{}, false, err
	}
	return r, true, nil
}

func (s *sqliteStore) Recent(ctx context.Context, limit int) ([]FireRecord, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	if limit <= 0 {
		limit = -1 // no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+fireColumns+` FROM fires ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FireRecord
	for rows.Next() {
		r, err := scanFire(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFire(sc scanner) (FireRecord, error) {
	var (
		r       FireRecord
		due     int64
		firedMS int64
	)
	if err := sc.Scan(&r.Session, &r.TaskID, &due, &firedMS, &r.Tied); err != nil {
		return FireRecord{}, err
	}
	r.Due = time.Unix(due, 0)
	r.FiredAt = time.UnixMilli(firedMS)
	return r, nil
}
