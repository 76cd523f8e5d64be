package config

import (
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestConfig(t *testing.T) (*Config, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "console.yaml")
	cfg := DefaultConfig()
	cfg.Remote.BaseURL = "https://one-api.example.com"
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("Failed to save initial config: %v", err)
	}
	return cfg, path
}

func TestConfigPersister_MarkDirtyAndFlush(t *testing.T) {
	cfg, path := newTestConfig(t)

	var writeCount int32
	persister := NewConfigPersister(cfg, path, &PersisterConfig{
		FlushInterval: 100 * time.Millisecond,
		MaxDirtyTime:  500 * time.Millisecond,
		AfterWrite: func(c *Config) error {
			atomic.AddInt32(&writeCount, 1)
			return nil
		},
	})
	persister.Start()
	defer persister.Stop()

	persister.MarkDirty()
	time.Sleep(20 * time.Millisecond)
	if atomic.LoadInt32(&writeCount) != 0 {
		t.Errorf("MarkDirty should not trigger immediate write")
	}

	before := atomic.LoadInt32(&writeCount)
	if err := persister.FlushNow(); err != nil {
		t.Fatalf("FlushNow failed: %v", err)
	}
	if atomic.LoadInt32(&writeCount) <= before {
		t.Errorf("FlushNow should trigger immediate write")
	}

	stats := persister.GetStats()
	if stats.WriteCount == 0 {
		t.Errorf("Expected non-zero write count")
	}
	if stats.PendingChanges {
		t.Errorf("Should have no pending changes after flush")
	}
}

func TestConfigPersister_StopFlushesPending(t *testing.T) {
	cfg, path := newTestConfig(t)

	persister := NewConfigPersister(cfg, path, &PersisterConfig{
		FlushInterval: time.Hour,
		MaxDirtyTime:  time.Hour,
	})
	persister.Start()

	persister.Mutate(func(c *Config) { c.View.NoticeHistory = 42 })
	if err := persister.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	// second Stop is a no-op
	if err := persister.Stop(); err != nil {
		t.Fatalf("second Stop failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.View.NoticeHistory != 42 {
		t.Errorf("expected notice_history 42 after stop, got %d", loaded.View.NoticeHistory)
	}
}

func TestDetailToggle_PersistsImmediately(t *testing.T) {
	cfg, path := newTestConfig(t)

	persister := NewConfigPersister(cfg, path, nil)
	toggle := NewDetailToggle(persister)

	if toggle.ShowDetail() {
		t.Fatalf("show_detail should default to false")
	}
	if err := toggle.SetShowDetail(true); err != nil {
		t.Fatalf("SetShowDetail failed: %v", err)
	}
	if !toggle.ShowDetail() {
		t.Errorf("expected in-memory show_detail true")
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !loaded.View.ShowDetail {
		t.Errorf("expected persisted show_detail true")
	}
	if persister.GetStats().PendingChanges {
		t.Errorf("toggle should leave no pending changes")
	}
}

func TestPersisterStats_String(t *testing.T) {
	stats := PersisterStats{WriteCount: 2, ThrottleCount: 1, PendingChanges: true, FlushInterval: time.Second}
	got := stats.String()
	if got == "" {
		t.Fatal("expected non-empty stats string")
	}
	for _, want := range []string{"writes=2", "throttled=1", "status=dirty"} {
		if !strings.Contains(got, want) {
			t.Errorf("stats string %q missing %q", got, want)
		}
	}
}

