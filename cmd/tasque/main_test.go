package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tasque/pkg/logx"
	"tasque/pkg/schedule"
)

func TestUpcoming(t *testing.T) {
	t.Parallel()
	set, err := schedule.ParseCron("0 */20 * * * *")
	if err != nil {
		t.Fatalf("ParseCron: %v", err)
	}
	from := time.Date(2022, 4, 4, 18, 20, 0, 500, time.UTC)

	got := upcoming(set, from, 3)
	want := []string{"18:40:00", "19:00:00", "19:20:00"}
	if len(got) != len(want) {
		t.Fatalf("upcoming = %v, want %d entries", got, len(want))
	}
	for i, w := range want {
		if got[i].Format("15:04:05") != w {
			t.Fatalf("upcoming[%d] = %s, want %s", i, got[i].Format("15:04:05"), w)
		}
	}
	if n := len(upcoming(schedule.Set{}, from, 3)); n != 0 {
		t.Fatalf("upcoming(empty) = %d entries, want 0", n)
	}
}

func TestLoadConfigAndHistory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "tasque.yaml")
	body := "timezone: UTC\n" +
		"history:\n  driver: file\n  path: " + filepath.Join(dir, "hist") + "\n" +
		"tasks:\n  - id: backup\n    schedules: [\"0 0 3 * * *\"]\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	mgr, cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if mgr.Get() != cfg {
		t.Fatal("manager does not hold the loaded config")
	}
	store, err := openHistory(cfg, logx.Nop())
	if err != nil || store == nil {
		t.Fatalf("openHistory = (%v, %v), want a store", store, err)
	}
	_ = store.Close()

	if err := os.WriteFile(path, []byte("tasks:\n  - id: broken\n    schedules: [\"nope\"]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := loadConfig(path); err == nil {
		t.Fatal("loadConfig accepted an invalid schedule")
	}
}
