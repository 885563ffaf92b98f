// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/afkstats/internal/model"
)

// Defaults applied when neither the config file nor a flag sets a value.
const (
	DefaultPollMs      = 1000
	DefaultMaxSessions = 20
	DefaultBackend     = BackendSQLite
	DefaultShowPanel   = true
	DefaultNameWidth   = 30
	DefaultLogLevel    = "info"
)

// History backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Tracker TrackerConfig `toml:"tracker"`
	History HistoryConfig `toml:"history"`
	Display DisplayConfig `toml:"display"`
	Log     LogConfig     `toml:"log"`
}

// TrackerConfig maps live-tracking settings.
type TrackerConfig struct {
	PollMs *int `toml:"poll-ms"`
}

// HistoryConfig maps archive settings.
type HistoryConfig struct {
	MaxSessions *int    `toml:"max-sessions"`
	Backend     *string `toml:"backend"`
	Path        *string `toml:"path"`
}

// DisplayConfig maps UI settings.
type DisplayConfig struct {
	ShowPanel *bool `toml:"show-panel"`
	NameWidth *int  `toml:"name-width"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return FileConfig{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Default returns the built-in runtime configuration.
func Default() model.Config {
	return model.Config{
		PollInterval: DefaultPollMs * time.Millisecond,
		MaxSessions:  DefaultMaxSessions,
		Backend:      DefaultBackend,
		ShowPanel:    DefaultShowPanel,
		NameWidth:    DefaultNameWidth,
		LogLevel:     DefaultLogLevel,
	}
}

// Apply overlays the values set in the file onto cfg.
func (fc FileConfig) Apply(cfg model.Config) model.Config {
	if fc.Tracker.PollMs != nil {
		cfg.PollInterval = time.Duration(*fc.Tracker.PollMs) * time.Millisecond
	}
	if fc.History.MaxSessions != nil {
		cfg.MaxSessions = *fc.History.MaxSessions
	}
	if fc.History.Backend != nil {
		cfg.Backend = strings.ToLower(strings.TrimSpace(*fc.History.Backend))
	}
	if fc.History.Path != nil {
		cfg.HistoryPath = *fc.History.Path
	}
	if fc.Display.ShowPanel != nil {
		cfg.ShowPanel = *fc.Display.ShowPanel
	}
	if fc.Display.NameWidth != nil {
		cfg.NameWidth = *fc.Display.NameWidth
	}
	if fc.Log.Level != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*fc.Log.Level))
	}
	return cfg
}

// Validate checks a runtime configuration.
func Validate(cfg model.Config) error {
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be > 0")
	}
	if cfg.MaxSessions < 1 {
		return fmt.Errorf("max sessions must be >= 1")
	}
	switch cfg.Backend {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("unknown history backend %q (use %s or %s)", cfg.Backend, BackendSQLite, BackendFile)
	}
	if cfg.NameWidth < 4 {
		return fmt.Errorf("name width must be >= 4")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	return nil
}

// ResolveHistoryPath returns the configured path or the backend default.
func ResolveHistoryPath(cfg model.Config) string {
	if cfg.HistoryPath != "" {
		return cfg.HistoryPath
	}
	if cfg.Backend == BackendFile {
		return DefaultHistoryFilePath()
	}
	return DefaultDBPath()
}
