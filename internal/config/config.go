package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment variable overrides.
// REMINDERD_SCHEDULER__POLL_INTERVAL maps to scheduler.poll_interval.
const EnvPrefix = "REMINDERD_"

type Config struct {
	DataDir   string          `koanf:"data_dir"`
	StoreFile string          `koanf:"store_file"`
	Logging   LoggingConfig   `koanf:"logging"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Notify    NotifyConfig    `koanf:"notify"`
	Sound     SoundConfig     `koanf:"sound"`
	History   HistoryConfig   `koanf:"history"`
}

type LoggingConfig struct {
	Level string `koanf:"level"`
}

type SchedulerConfig struct {
	PollInterval int `koanf:"poll_interval"` // seconds between poll cycles
}

type NotifyConfig struct {
	Enabled bool   `koanf:"enabled"`
	AppName string `koanf:"app_name"`
}

type SoundConfig struct {
	Enabled bool   `koanf:"enabled"`
	Source  string `koanf:"source"` // custom audio file; empty means the bundled chime
}

type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	File    string `koanf:"file"`
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath == "" {
		configPath = GetDefaultConfigPath()
	}
	configPath = expandPath(configPath)

	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.DataDir = expandPath(cfg.DataDir)
	cfg.Sound.Source = expandPath(cfg.Sound.Source)

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.StoreFile == "" {
		return fmt.Errorf("store_file is required")
	}
	if c.Scheduler.PollInterval <= 0 {
		return fmt.Errorf("scheduler poll_interval must be positive, got %d", c.Scheduler.PollInterval)
	}
	return nil
}

// EnsureDataDir creates the data directory if missing and verifies it is
// writable. A reminder service without writable persistence cannot honor
// its contract, so callers should treat a failure here as fatal.
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", c.DataDir, err)
	}

	probe, err := os.CreateTemp(c.DataDir, ".writecheck-*")
	if err != nil {
		return fmt.Errorf("data directory %s is not writable: %w", c.DataDir, err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)

	return nil
}

// StorePath returns the full path of the durable reminder file.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, c.StoreFile)
}

// HistoryPath returns the full path of the delivery history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, c.History.File)
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
