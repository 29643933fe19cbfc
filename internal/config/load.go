package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/xolan/haven/internal/storage"
	"github.com/xolan/haven/internal/timeutil"
)

// Load reads, normalizes and validates the config file at path.
// Fields missing from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadOrDefault loads path, or returns the defaults when it does not exist.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("failed to stat config file: %w", err)
	}
	return Load(path)
}

// LoadRuntime is what the application uses at startup: .env files, then the
// config file, then HAVEN_* environment overrides.
func LoadRuntime(path string) (Config, error) {
	if err := LoadEnvFiles(filepath.Join(filepath.Dir(path), EnvFile), EnvFile); err != nil {
		return Config{}, err
	}

	cfg, err := LoadOrDefault(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration after environment overrides: %w", err)
	}
	return cfg, nil
}

// LoadEnvFiles loads the existing files among paths into the process
// environment. Variables already set are never overwritten.
func LoadEnvFiles(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load %s: %w", strings.Join(existing, ", "), err)
	}
	return nil
}

// Normalize lowercases enumerated values and trims whitespace.
func (c *Config) Normalize() {
	c.WeekStartDay = strings.ToLower(strings.TrimSpace(c.WeekStartDay))
	c.Timezone = strings.TrimSpace(c.Timezone)
	c.Theme = strings.TrimSpace(c.Theme)
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Identity.Email = strings.TrimSpace(c.Identity.Email)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := timeutil.ParseWeekStart(c.WeekStartDay); err != nil || c.WeekStartDay == "" {
		return fmt.Errorf("invalid week_start_day %q: must be \"sunday\" or \"monday\"", c.WeekStartDay)
	}
	if _, err := c.loadLocation(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.TrendWindow < MinTrendWindow || c.TrendWindow > MaxTrendWindow {
		return fmt.Errorf("invalid trend_window %d: must be between %d and %d", c.TrendWindow, MinTrendWindow, MaxTrendWindow)
	}

	switch c.Storage.Backend {
	case storage.BackendJSONL, storage.BackendSQLite:
	case storage.BackendPostgres:
		if c.Storage.DSN == "" {
			return errors.New("invalid storage: postgres backend requires dsn")
		}
	default:
		return fmt.Errorf("invalid storage backend %q: must be one of %s", c.Storage.Backend, strings.Join(storage.Backends, ", "))
	}

	if c.Identity.Token != "" && c.Identity.TokenSecret == "" {
		return errors.New("invalid identity: token requires token_secret")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return nil
}

// Location returns the configured timezone; invalid values fall back to Local.
func (c Config) Location() *time.Location {
	loc, err := c.loadLocation()
	if err != nil {
		return time.Local
	}
	return loc
}

func (c Config) loadLocation() (*time.Location, error) {
	if c.Timezone == "" {
		return nil, errors.New("timezone is empty")
	}
	if c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// WeekStart returns the first day of the calendar week.
func (c Config) WeekStart() time.Weekday {
	day, err := timeutil.ParseWeekStart(c.WeekStartDay)
	if err != nil {
		return time.Sunday
	}
	return day
}

// envVars maps environment variables onto config fields.
var envVars = []struct {
	name string
	set  func(c *Config, v string) error
}{
	{"HAVEN_WEEK_START_DAY", func(c *Config, v string) error { c.WeekStartDay = v; return nil }},
	{"HAVEN_TIMEZONE", func(c *Config, v string) error { c.Timezone = v; return nil }},
	{"HAVEN_THEME", func(c *Config, v string) error { c.Theme = v; return nil }},
	{"HAVEN_TREND_WINDOW", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HAVEN_TREND_WINDOW must be a number, got %q", v)
		}
		c.TrendWindow = n
		return nil
	}},
	{"HAVEN_STORAGE_BACKEND", func(c *Config, v string) error { c.Storage.Backend = v; return nil }},
	{"HAVEN_STORAGE_PATH", func(c *Config, v string) error { c.Storage.Path = v; return nil }},
	{"HAVEN_STORAGE_DSN", func(c *Config, v string) error { c.Storage.DSN = v; return nil }},
	{"HAVEN_EMAIL", func(c *Config, v string) error { c.Identity.Email = v; return nil }},
	{"HAVEN_DISPLAY_NAME", func(c *Config, v string) error { c.Identity.DisplayName = v; return nil }},
	{"HAVEN_TOKEN", func(c *Config, v string) error { c.Identity.Token = v; return nil }},
	{"HAVEN_TOKEN_SECRET", func(c *Config, v string) error { c.Identity.TokenSecret = v; return nil }},
	{"HAVEN_AGENT_MODEL", func(c *Config, v string) error { c.Agent.Model = v; return nil }},
	{"GEMINI_API_KEY", func(c *Config, v string) error { c.Agent.APIKey = v; return nil }},
	{"HAVEN_AGENT_API_KEY", func(c *Config, v string) error { c.Agent.APIKey = v; return nil }},
	{"HAVEN_LOG_LEVEL", func(c *Config, v string) error { c.Log.Level = v; return nil }},
	{"HAVEN_LOG_FILE", func(c *Config, v string) error { c.Log.File = v; return nil }},
}

// ApplyEnv overrides fields from non-empty environment variables.
// HAVEN_AGENT_API_KEY wins over GEMINI_API_KEY.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, ev := range envVars {
		v, ok := lookup(ev.name)
		if !ok || v == "" {
			continue
		}
		if err := ev.set(c, v); err != nil {
			return err
		}
	}
	return nil
}
