package service

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/xolan/haven/internal/config"
)

// ErrConfigExists is returned by Init when the config file is already there.
var ErrConfigExists = errors.New("config file already exists")

// ConfigService holds the running configuration and its file. It is safe for
// concurrent use; the TUI saves the theme from a command goroutine while views
// read the config.
type ConfigService struct {
	path string

	mu  sync.RWMutex
	cfg config.Config
}

// NewConfigService creates a new ConfigService
func NewConfigService(configPath string, cfg config.Config) *ConfigService {
	return &ConfigService{path: configPath, cfg: cfg}
}

// Get returns the current configuration
func (s *ConfigService) Get() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// GetPath returns the path to the config file
func (s *ConfigService) GetPath() string {
	return s.path
}

// Exists checks if the config file exists
func (s *ConfigService) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Update validates cfg, writes it and makes it current.
// Values that came from the environment are written too.
func (s *ConfigService) Update(cfg config.Config) error {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	s.cfg = cfg
	return nil
}

// Init writes the commented sample config. It never overwrites a file.
func (s *ConfigService) Init() error {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w at %s", ErrConfigExists, s.path)
		}
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if _, err := f.WriteString(config.GenerateSampleConfig()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return f.Close()
}

// Reload re-reads .env files, the config file and HAVEN_* overrides.
// The running config is kept when loading fails.
func (s *ConfigService) Reload() error {
	cfg, err := config.LoadRuntime(s.path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}
