package config

import (
	"path/filepath"

	"github.com/xolan/haven/internal/osutil"
	"github.com/xolan/haven/internal/storage"
)

const (
	// ConfigFile is the name of the TOML configuration file
	ConfigFile = "config.toml"
	// EnvFile is loaded from the config directory and the working directory
	EnvFile = ".env"
	// DefaultTrendWindow is the number of days shown in the mood trend
	DefaultTrendWindow = 14
	MinTrendWindow     = 2
	MaxTrendWindow     = 90
)

// Config represents the application configuration
type Config struct {
	// WeekStartDay defines which day starts the calendar week (sunday or monday)
	WeekStartDay string `toml:"week_start_day"`
	// Timezone decides what "today" is (IANA timezone name or "Local")
	Timezone string `toml:"timezone"`
	// Theme is a bubbletint theme id for the TUI
	Theme string `toml:"theme"`
	// TrendWindow is how many logged days the trend chart shows
	TrendWindow int `toml:"trend_window"`

	Storage  StorageConfig  `toml:"storage"`
	Identity IdentityConfig `toml:"identity"`
	Agent    AgentConfig    `toml:"agent"`
	Log      LogConfig      `toml:"log"`
}

type StorageConfig struct {
	// Backend is jsonl, sqlite or postgres
	Backend string `toml:"backend"`
	// Path is the data directory (jsonl) or database file (sqlite); empty means the app dir
	Path string `toml:"path"`
	// DSN is the postgres connection string
	DSN string `toml:"dsn"`
}

type IdentityConfig struct {
	Email       string `toml:"email"`
	DisplayName string `toml:"display_name"`
	// Token is a signed HS256 identity token; it takes precedence over Email
	Token       string `toml:"token"`
	TokenSecret string `toml:"token_secret"`
}

type AgentConfig struct {
	Model  string `toml:"model"`
	APIKey string `toml:"api_key"`
}

type LogConfig struct {
	Level string `toml:"level"`
	// File defaults to haven.log in the app dir
	File string `toml:"file"`
}

// DefaultConfig returns a Config with the defaults used when no file exists.
func DefaultConfig() Config {
	return Config{
		WeekStartDay: "sunday",
		Timezone:     "Local",
		Theme:        "",
		TrendWindow:  DefaultTrendWindow,
		Storage: StorageConfig{
			Backend: storage.BackendJSONL,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// GetConfigPath returns the path to the config file, creating its directory.
func GetConfigPath() (string, error) {
	dir, err := osutil.AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFile), nil
}

// StorageLocation resolves the storage location, defaulting to the app dir.
func (c Config) StorageLocation() (storage.Config, error) {
	sc := storage.Config{Backend: c.Storage.Backend, Path: c.Storage.Path, DSN: c.Storage.DSN}
	if sc.Path != "" || sc.Backend == storage.BackendPostgres {
		return sc, nil
	}

	switch sc.Backend {
	case storage.BackendSQLite:
		dir, err := osutil.AppDir()
		if err != nil {
			return sc, err
		}
		sc.Path = filepath.Join(dir, "haven.db")
	default:
		dir, err := osutil.AppDir("data")
		if err != nil {
			return sc, err
		}
		sc.Path = dir
	}
	return sc, nil
}

// LogPath returns the log file location.
func (c Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := osutil.AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "haven.log"), nil
}
