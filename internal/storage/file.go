package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"tasque/pkg/logx"
)

const (
	// fileKeep is how many records survive a compaction.
	fileKeep = 5000
	// fileCompactEvery triggers a compaction after this many appends.
	fileCompactEvery = 2 * fileKeep
)

// fileStore is a dependency-free persistence backend.
//
// Files:
//   - <prefix>.fires.jsonl (append-only JSON Lines)
//
// The file is rewritten with the newest fileKeep records every fileCompactEvery appends,
// and the whole history is replayed into memory on open.
type fileStore struct {
	log logx.Logger

	mu   sync.Mutex
	path string
	f    *os.File

	records []FireRecord // oldest first
	last    map[string]int
	appends int
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("history.path is required for file driver")
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	firesPath := filepath.Join(dir, base) + ".fires.jsonl"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	s := &fileStore{log: log, path: firesPath, last: map[string]int{}}
	if err := s.replay(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if len(s.records) > fileKeep {
		if err := s.rewrite(); err != nil {
			log.Warn("fire journal compaction failed", logx.Err(err))
		}
	}

	f, err := os.OpenFile(firesPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	s.f = f
	return s, nil
}

func (s *fileStore) replay() error {
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	skipped := 0
	for sc.Scan() {
		var r FireRecord
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil || r.TaskID == "" {
			skipped++
			continue
		}
		s.add(r)
	}
	if skipped > 0 {
		s.log.Warn("fire journal: skipped unreadable lines", logx.String("path", s.path), logx.Int("count", skipped))
	}
	return sc.Err()
}

func (s *fileStore) add(r FireRecord) {
	s.records = append(s.records, r)
	s.last[r.TaskID] = len(s.records) - 1
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

func (s *fileStore) AppendFire(ctx context.Context, r FireRecord) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return ErrClosed
	}
	if err := json.NewEncoder(s.f).Encode(r); err != nil {
		return err
	}
	s.add(r)
	s.appends++
	if s.appends%fileCompactEvery == 0 {
		// Best-effort compact.
		if err := s.compactLocked(); err != nil {
			s.log.Debug("fire journal compact failed", logx.Err(err))
		}
	}
	return nil
}

func (s *fileStore) LastFire(ctx context.Context, taskID string) (FireRecord, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.last[taskID]
	if !ok {
		return FireRecord{}, false, nil
	}
	return s.records[i], true, nil
}

func (s *fileStore) Recent(ctx context.Context, limit int) ([]FireRecord, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}
	out := make([]FireRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

func (s *fileStore) compactLocked() error {
	if err := s.f.Close(); err != nil {
		return err
	}
	s.f = nil
	werr := s.rewrite()
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	s.f = f
	return werr
}

// rewrite keeps the newest fileKeep records, replacing the file atomically.
func (s *fileStore) rewrite() error {
	if len(s.records) > fileKeep {
		kept := append([]FireRecord(nil), s.records[len(s.records)-fileKeep:]...)
		s.records = s.records[:0]
		s.last = make(map[string]int, len(s.last))
		for _, r := range kept {
			s.add(r)
		}
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range s.records {
		if err := enc.Encode(r); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
