package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tasque/pkg/logx"
)

func openTestStore(t *testing.T, path string) Store {
	t.Helper()
	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if st == nil {
		t.Fatal("Open returned a nil store")
	}
	return st
}

func fire(task string, due time.Time) FireRecord {
	return FireRecord{Session: "s1", TaskID: task, Due: due, FiredAt: due.Add(3 * time.Millisecond)}
}

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"", "none", " NONE "} {
		st, err := Open(Config{Driver: driver}, logx.Logger{})
		if err != nil || st != nil {
			t.Fatalf("Open(%q) = (%v, %v), want (nil, nil)", driver, st, err)
		}
	}
	if _, err := Open(Config{Driver: "redis"}, logx.Logger{}); err == nil {
		t.Fatal("Open(redis) succeeded")
	}
	if _, err := Open(Config{Driver: "file"}, logx.Logger{}); err == nil {
		t.Fatal("file driver without path succeeded")
	}
}

func TestFileStoreAppendAndReplay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history")
	base := time.Date(2022, 4, 4, 18, 2, 0, 0, time.UTC)

	st := openTestStore(t, path)
	for i, task := range []string{"a", "b", "a", "c"} {
		if err := st.AppendFire(ctx, fire(task, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("AppendFire: %v", err)
		}
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := st.AppendFire(ctx, fire("a", base)); err != ErrClosed {
		t.Fatalf("AppendFire after Close = %v, want ErrClosed", err)
	}

	// Append a corrupt line; replay skips it.
	f, err := os.OpenFile(path+".fires.jsonl", os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	_, _ = f.WriteString("{not json\n")
	_ = f.Close()

	st = openTestStore(t, path)
	defer st.Close()

	last, ok, err := st.LastFire(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("LastFire(a) = (%v, %v)", ok, err)
	}
	if want := base.Add(2 * time.Minute); !last.Due.Equal(want) || last.Session != "s1" {
		t.Fatalf("LastFire(a) = %+v, want due %s", last, want)
	}
	if _, ok, _ := st.LastFire(ctx, "zzz"); ok {
		t.Fatal("LastFire(zzz) found a record")
	}

	recent, err := st.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || recent[0].TaskID != "c" || recent[1].TaskID != "a" {
		t.Fatalf("Recent(2) = %+v, want [c a]", recent)
	}
	all, _ := st.Recent(ctx, 0)
	if len(all) != 4 {
		t.Fatalf("Recent(0) = %d records, want 4", len(all))
	}
}

func TestFileStoreCompactsOnOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history")
	base := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	st := openTestStore(t, path)
	total := fileKeep + 10
	for i := 0; i < total; i++ {
		task := "bulk"
		if i == 3 {
			task = "early"
		}
		if err := st.AppendFire(ctx, fire(task, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("AppendFire: %v", err)
		}
	}
	_ = st.Close()

	st = openTestStore(t, path)
	defer st.Close()
	all, _ := st.Recent(ctx, 0)
	if len(all) != fileKeep {
		t.Fatalf("records after compaction = %d, want %d", len(all), fileKeep)
	}
	if _, ok, _ := st.LastFire(ctx, "early"); ok {
		t.Fatal("compacted record still indexed")
	}
	if want := base.Add(time.Duration(total-1) * time.Second); !all[0].Due.Equal(want) {
		t.Fatalf("newest = %s, want %s", all[0].Due, want)
	}
}

func TestDriverAvailableMatchesOpen(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"", "none", "file", " FILE "} {
		if !DriverAvailable(driver) {
			t.Fatalf("DriverAvailable(%q) = false, want true", driver)
		}
	}
	if DriverAvailable("redis") {
		t.Fatal("DriverAvailable(redis) = true, want false")
	}
	if DriverAvailable("sqlite") != DriverAvailable("sqlite3") {
		t.Fatal("sqlite and sqlite3 disagree")
	}

	st, err := Open(Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "h.db")}, logx.Nop())
	if st != nil {
		_ = st.Close()
	}
	if got := err == nil; got != DriverAvailable("sqlite") {
		t.Fatalf("Open(sqlite) err = %v, but DriverAvailable(sqlite) = %v", err, DriverAvailable("sqlite"))
	}
}
