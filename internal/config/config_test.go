package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/xolan/haven/internal/osutil"
	"github.com/xolan/haven/internal/storage"
)

// Helper to create a temporary config file
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), ConfigFile)
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}
	return tmpFile
}

func envMap(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.WeekStartDay != "sunday" {
		t.Errorf("WeekStartDay = %q, expected sunday", cfg.WeekStartDay)
	}
	if cfg.Timezone != "Local" {
		t.Errorf("Timezone = %q, expected Local", cfg.Timezone)
	}
	if cfg.TrendWindow != DefaultTrendWindow {
		t.Errorf("TrendWindow = %d, expected %d", cfg.TrendWindow, DefaultTrendWindow)
	}
	if cfg.Storage.Backend != storage.BackendJSONL {
		t.Errorf("Storage.Backend = %q, expected jsonl", cfg.Storage.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, cfg Config)
	}{
		{
			name: "all sections",
			content: `week_start_day = "monday"
timezone = "America/New_York"
theme = "nord"
trend_window = 30

[storage]
backend = "sqlite"
path = "/tmp/haven.db"

[identity]
email = "ash@example.com"
display_name = "Ash"

[agent]
model = "gemini-2.5-pro"

[log]
level = "debug"`,
			check: func(t *testing.T, cfg Config) {
				want := Config{
					WeekStartDay: "monday",
					Timezone:     "America/New_York",
					Theme:        "nord",
					TrendWindow:  30,
					Storage:      StorageConfig{Backend: "sqlite", Path: "/tmp/haven.db"},
					Identity:     IdentityConfig{Email: "ash@example.com", DisplayName: "Ash"},
					Agent:        AgentConfig{Model: "gemini-2.5-pro"},
					Log:          LogConfig{Level: "debug"},
				}
				if diff := cmp.Diff(want, cfg); diff != "" {
					t.Errorf("Load() mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:    "partial config keeps defaults",
			content: `timezone = "Europe/London"`,
			check: func(t *testing.T, cfg Config) {
				if cfg.WeekStartDay != "sunday" || cfg.TrendWindow != DefaultTrendWindow {
					t.Errorf("defaults lost: %+v", cfg)
				}
				if cfg.Timezone != "Europe/London" {
					t.Errorf("Timezone = %q", cfg.Timezone)
				}
			},
		},
		{
			name: "mixed case values normalized",
			content: `week_start_day = "MONDAY"
[storage]
backend = "JSONL"`,
			check: func(t *testing.T, cfg Config) {
				if cfg.WeekStartDay != "monday" || cfg.Storage.Backend != "jsonl" {
					t.Errorf("not normalized: %q, %q", cfg.WeekStartDay, cfg.Storage.Backend)
				}
			},
		},
		{
			name:    "empty file",
			content: "",
			check: func(t *testing.T, cfg Config) {
				if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
					t.Errorf("empty file should give defaults:\n%s", diff)
				}
			},
		},
		{
			name:    "sample config",
			content: GenerateSampleConfig(),
			check: func(t *testing.T, cfg Config) {
				if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
					t.Errorf("sample config should give defaults:\n%s", diff)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(createTempConfigFile(t, tt.content))
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name           string
		content        string
		errorSubstring string
	}{
		{"malformed TOML", `week_start_day = "monday`, "failed to parse"},
		{"not TOML", `this is not valid TOML at all`, "failed to parse"},
		{"wrong type", `trend_window = "many"`, "failed to parse"},
		{"invalid week start", `week_start_day = "tuesday"`, "invalid week_start_day"},
		{"empty week start", `week_start_day = ""`, "invalid week_start_day"},
		{"invalid timezone", `timezone = "Mars/Olympus"`, "invalid timezone"},
		{"empty timezone", `timezone = ""`, "invalid timezone"},
		{"window too small", `trend_window = 1`, "invalid trend_window"},
		{"window too large", `trend_window = 91`, "invalid trend_window"},
		{"unknown backend", "[storage]\nbackend = \"mongo\"", "invalid storage backend"},
		{"postgres without dsn", "[storage]\nbackend = \"postgres\"", "requires dsn"},
		{"token without secret", "[identity]\ntoken = \"abc\"", "token requires token_secret"},
		{"bad log level", "[log]\nlevel = \"loud\"", "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(createTempConfigFile(t, tt.content))
			if err == nil {
				t.Fatal("Load() should return an error")
			}
			if !strings.Contains(err.Error(), tt.errorSubstring) {
				t.Errorf("Error should contain %q, got: %v", tt.errorSubstring, err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "does_not_exist.toml")); err == nil {
		t.Error("Load() should return error for non-existent file")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() returned unexpected error for non-existent file: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("missing file should give defaults:\n%s", diff)
	}

	if _, err := LoadOrDefault(createTempConfigFile(t, `week_start_day = "someday"`)); err == nil {
		t.Error("LoadOrDefault() should return error for invalid config file")
	}
}

func TestLoadOrDefault_StatError(t *testing.T) {
	parentDir := filepath.Join(t.TempDir(), "parent")
	if err := os.Mkdir(parentDir, 0755); err != nil {
		t.Fatalf("Failed to create parent directory: %v", err)
	}
	if err := os.Chmod(parentDir, 0000); err != nil {
		t.Skipf("Cannot change directory permissions: %v", err)
	}
	defer func() { _ = os.Chmod(parentDir, 0755) }()

	// root ignores directory permissions
	if _, err := os.Stat(filepath.Join(parentDir, ConfigFile)); err == nil || os.IsNotExist(err) {
		t.Skip("stat is not denied in this environment")
	}

	if _, err := LoadOrDefault(filepath.Join(parentDir, ConfigFile)); err == nil {
		t.Error("LoadOrDefault() should return error when os.Stat fails with permission error")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"HAVEN_WEEK_START_DAY":  "monday",
		"HAVEN_TREND_WINDOW":    "21",
		"HAVEN_STORAGE_BACKEND": "postgres",
		"HAVEN_STORAGE_DSN":     "postgres://localhost/haven",
		"HAVEN_EMAIL":           "ash@example.com",
		"GEMINI_API_KEY":        "gemini-key",
		"HAVEN_AGENT_API_KEY":   "haven-key",
		"HAVEN_THEME":           "",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.WeekStartDay != "monday" || cfg.TrendWindow != 21 {
		t.Errorf("top-level overrides not applied: %+v", cfg)
	}
	if cfg.Storage.Backend != "postgres" || cfg.Storage.DSN != "postgres://localhost/haven" {
		t.Errorf("storage overrides not applied: %+v", cfg.Storage)
	}
	if cfg.Identity.Email != "ash@example.com" {
		t.Errorf("Identity.Email = %q", cfg.Identity.Email)
	}
	if cfg.Agent.APIKey != "haven-key" {
		t.Errorf("Agent.APIKey = %q, want haven-key", cfg.Agent.APIKey)
	}
	if cfg.Theme != "" {
		t.Errorf("empty variable should not override, Theme = %q", cfg.Theme)
	}

	if err := cfg.ApplyEnv(envMap(map[string]string{"HAVEN_TREND_WINDOW": "lots"})); err == nil {
		t.Error("ApplyEnv() should reject a non-numeric trend window")
	}
}

func TestLoadEnvFiles(t *testing.T) {
	const key = "HAVEN_TEST_ENV_FILE_VALUE"
	envPath := filepath.Join(t.TempDir(), EnvFile)
	if err := os.WriteFile(envPath, []byte(key+"=from-file\n"), 0644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	if err := LoadEnvFiles(filepath.Join(t.TempDir(), "missing.env"), envPath); err != nil {
		t.Fatalf("LoadEnvFiles() error = %v", err)
	}
	if got := os.Getenv(key); got != "from-file" {
		t.Errorf("%s = %q, want from-file", key, got)
	}

	t.Setenv(key, "from-env")
	if err := LoadEnvFiles(envPath); err != nil {
		t.Fatalf("LoadEnvFiles() error = %v", err)
	}
	if got := os.Getenv(key); got != "from-env" {
		t.Errorf("existing variable overwritten: %q", got)
	}
}

func TestLoadRuntime(t *testing.T) {
	path := createTempConfigFile(t, "week_start_day = \"monday\"\n")
	t.Setenv("HAVEN_TIMEZONE", "Asia/Tokyo")
	t.Setenv("HAVEN_WEEK_START_DAY", "")

	cfg, err := LoadRuntime(path)
	if err != nil {
		t.Fatalf("LoadRuntime() error = %v", err)
	}
	if cfg.WeekStartDay != "monday" || cfg.Timezone != "Asia/Tokyo" {
		t.Errorf("LoadRuntime() = %+v", cfg)
	}

	t.Setenv("HAVEN_STORAGE_BACKEND", "postgres")
	if _, err := LoadRuntime(path); err == nil || !strings.Contains(err.Error(), "environment overrides") {
		t.Errorf("LoadRuntime() error = %v, want invalid override", err)
	}
}

func TestLocationAndWeekStart(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Location() != time.Local {
		t.Error("Local timezone should map to time.Local")
	}
	if cfg.WeekStart() != time.Sunday {
		t.Errorf("WeekStart() = %v, want Sunday", cfg.WeekStart())
	}

	cfg.Timezone = "Asia/Tokyo"
	cfg.WeekStartDay = "monday"
	if cfg.Location().String() != "Asia/Tokyo" {
		t.Errorf("Location() = %v", cfg.Location())
	}
	if cfg.WeekStart() != time.Monday {
		t.Errorf("WeekStart() = %v, want Monday", cfg.WeekStart())
	}

	cfg.Timezone = "Nowhere/Special"
	if cfg.Location() != time.Local {
		t.Error("invalid timezone should fall back to Local")
	}
}

func TestMarshal_RoundTripsAndHidesKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WeekStartDay = "monday"
	cfg.Identity.Email = "ash@example.com"
	cfg.Agent.APIKey = "secret-key"

	data, err := Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "secret-key") {
		t.Error("Marshal() wrote the API key")
	}
	if !strings.HasPrefix(string(data), "# haven configuration file") {
		t.Errorf("Marshal() missing header:\n%s", data)
	}

	loaded, err := Load(createTempConfigFile(t, string(data)))
	if err != nil {
		t.Fatalf("Load(Marshal()) error = %v", err)
	}
	cfg.Agent.APIKey = ""
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("reloaded config mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateSampleConfig(t *testing.T) {
	content := GenerateSampleConfig()

	for _, expected := range []string{
		"# haven configuration file",
		"# week_start_day",
		"# timezone",
		"# trend_window",
		"[storage]",
		"[identity]",
		"[agent]",
		"GEMINI_API_KEY",
		"Asia/Tokyo",
	} {
		if !strings.Contains(content, expected) {
			t.Errorf("GenerateSampleConfig() missing expected content: %q", expected)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	defer osutil.ResetProvider()
	root := t.TempDir()
	osutil.SetProvider(&mockPathProvider{
		userConfigDirFn: func() (string, error) { return root, nil },
		mkdirAllFn:      os.MkdirAll,
	})

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if want := filepath.Join(root, osutil.AppName, ConfigFile); path != want {
		t.Errorf("GetConfigPath() = %q, want %q", path, want)
	}
}

func TestGetConfigPath_UserConfigDirError(t *testing.T) {
	defer osutil.ResetProvider()
	osutil.SetProvider(&mockPathProvider{
		userConfigDirFn: func() (string, error) { return "", os.ErrPermission },
	})

	if _, err := GetConfigPath(); err == nil {
		t.Error("GetConfigPath() should return error when UserConfigDir fails")
	}
}

func TestStorageLocationAndLogPath(t *testing.T) {
	defer osutil.ResetProvider()
	root := t.TempDir()
	osutil.SetProvider(&mockPathProvider{
		userConfigDirFn: func() (string, error) { return root, nil },
		mkdirAllFn:      os.MkdirAll,
	})
	appDir := filepath.Join(root, osutil.AppName)

	cfg := DefaultConfig()
	sc, err := cfg.StorageLocation()
	if err != nil {
		t.Fatalf("StorageLocation() error = %v", err)
	}
	if sc.Path != filepath.Join(appDir, "data") {
		t.Errorf("jsonl path = %q", sc.Path)
	}

	cfg.Storage.Backend = storage.BackendSQLite
	sc, _ = cfg.StorageLocation()
	if sc.Path != filepath.Join(appDir, "haven.db") {
		t.Errorf("sqlite path = %q", sc.Path)
	}

	cfg.Storage.Path = "/srv/haven"
	sc, _ = cfg.StorageLocation()
	if sc.Path != "/srv/haven" {
		t.Errorf("explicit path = %q", sc.Path)
	}

	logPath, err := cfg.LogPath()
	if err != nil || logPath != filepath.Join(appDir, "haven.log") {
		t.Errorf("LogPath() = %q, %v", logPath, err)
	}
}

// mockPathProvider is a test helper for mocking osutil.PathProvider
type mockPathProvider struct {
	userConfigDirFn func() (string, error)
	mkdirAllFn      func(path string, perm os.FileMode) error
}

func (m *mockPathProvider) UserConfigDir() (string, error) {
	if m.userConfigDirFn != nil {
		return m.userConfigDirFn()
	}
	return "", nil
}

func (m *mockPathProvider) MkdirAll(path string, perm os.FileMode) error {
	if m.mkdirAllFn != nil {
		return m.mkdirAllFn(path, perm)
	}
	return nil
}
