package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("defaults apply without a config file", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if cfg.StoreFile != "reminders.json" {
			t.Errorf("unexpected default store file: %s", cfg.StoreFile)
		}
		if cfg.Scheduler.PollInterval != 1 {
			t.Errorf("unexpected default poll interval: %d", cfg.Scheduler.PollInterval)
		}
		if !cfg.Notify.Enabled || !cfg.Sound.Enabled || !cfg.History.Enabled {
			t.Error("notify, sound and history should default to enabled")
		}
		if cfg.Sound.Source != "" {
			t.Errorf("default sound source should be empty (bundled chime), got %q", cfg.Sound.Source)
		}
	})

	t.Run("config file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := []byte(`
data_dir: /var/lib/reminderd
scheduler:
  poll_interval: 5
sound:
  enabled: false
`)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.DataDir != "/var/lib/reminderd" {
			t.Errorf("data_dir override not applied: %s", cfg.DataDir)
		}
		if cfg.Scheduler.PollInterval != 5 {
			t.Errorf("poll_interval override not applied: %d", cfg.Scheduler.PollInterval)
		}
		if cfg.Sound.Enabled {
			t.Error("sound.enabled override not applied")
		}
		// Untouched keys keep defaults.
		if cfg.StoreFile != "reminders.json" {
			t.Errorf("store_file default lost: %s", cfg.StoreFile)
		}
	})

	t.Run("environment overrides file and defaults", func(t *testing.T) {
		t.Setenv("REMINDERD_SCHEDULER__POLL_INTERVAL", "7")
		t.Setenv("REMINDERD_NOTIFY__APP_NAME", "custom")

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Scheduler.PollInterval != 7 {
			t.Errorf("env poll_interval not applied: %d", cfg.Scheduler.PollInterval)
		}
		if cfg.Notify.AppName != "custom" {
			t.Errorf("env app_name not applied: %s", cfg.Notify.AppName)
		}
	})

	t.Run("tilde paths expand to the home directory", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skipf("no home dir: %v", err)
		}
		if cfg.DataDir != filepath.Join(home, ".reminderd") {
			t.Errorf("expected expanded data dir, got %s", cfg.DataDir)
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DataDir:   "/tmp/reminderd",
			StoreFile: "reminders.json",
			Scheduler: SchedulerConfig{PollInterval: 1},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	c := valid()
	c.DataDir = ""
	if err := c.Validate(); err == nil {
		t.Error("empty data_dir should be rejected")
	}

	c = valid()
	c.Scheduler.PollInterval = 0
	if err := c.Validate(); err == nil {
		t.Error("zero poll_interval should be rejected")
	}
}

func TestEnsureDataDir(t *testing.T) {
	t.Run("creates missing directory", func(t *testing.T) {
		cfg := &Config{DataDir: filepath.Join(t.TempDir(), "nested", "data")}
		if err := cfg.EnsureDataDir(); err != nil {
			t.Fatalf("EnsureDataDir failed: %v", err)
		}
		if _, err := os.Stat(cfg.DataDir); err != nil {
			t.Errorf("data dir not created: %v", err)
		}
	})

	t.Run("fails on unwritable location", func(t *testing.T) {
		if os.Getuid() == 0 {
			t.Skip("running as root, permission checks are bypassed")
		}
		base := t.TempDir()
		if err := os.Chmod(base, 0o555); err != nil {
			t.Fatalf("chmod: %v", err)
		}
		cfg := &Config{DataDir: filepath.Join(base, "data")}
		if err := cfg.EnsureDataDir(); err == nil {
			t.Error("expected error for unwritable data dir")
		}
	})
}

func TestPaths(t *testing.T) {
	cfg := &Config{
		DataDir:   "/home/u/.reminderd",
		StoreFile: "reminders.json",
		History:   HistoryConfig{File: "history.db"},
	}

	if got := cfg.StorePath(); got != "/home/u/.reminderd/reminders.json" {
		t.Errorf("unexpected store path: %s", got)
	}
	if got := cfg.HistoryPath(); got != "/home/u/.reminderd/history.db" {
		t.Errorf("unexpected history path: %s", got)
	}
}
