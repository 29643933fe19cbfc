package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xolan/haven/internal/config"
	"github.com/xolan/haven/internal/identity"
	"github.com/xolan/haven/internal/logging"
	"github.com/xolan/haven/internal/storage"
)

// Services holds all service instances used by the application
type Services struct {
	Mood      *MoodService
	Journal   *JournalService
	Community *CommunityService
	Insight   *InsightService
	Storage   *StorageService
	Config    *ConfigService

	env *env
}

// Options wires Services. Zero values fall back to anonymous identity,
// a no-op logger and time.Now.
type Options struct {
	Store      storage.Store
	Identity   identity.Provider
	Config     config.Config
	ConfigPath string
	Logger     *zap.Logger
	Now        func() time.Time
	Agent      AgentFactory
}

// NewServices loads the config, opens logging and storage, and wires everything.
func NewServices(ctx context.Context) (*Services, error) {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadRuntime(configPath)
	if err != nil {
		return nil, err
	}

	logPath, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logPath, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	location, err := cfg.StorageLocation()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(ctx, location, storage.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", location.Backend, err)
	}

	idp, err := identity.FromConfig(cfg.Identity.Email, cfg.Identity.DisplayName, cfg.Identity.Token, cfg.Identity.TokenSecret, time.Now)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return NewServicesWith(Options{
		Store:      store,
		Identity:   idp,
		Config:     cfg,
		ConfigPath: configPath,
		Logger:     logger,
		Agent:      GenAIFactory(cfg.Agent.APIKey, cfg.Agent.Model),
	}), nil
}

// NewServicesWith wires services around an already opened store (useful for testing)
func NewServicesWith(opts Options) *Services {
	if opts.Identity == nil {
		opts.Identity = identity.Anonymous()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	e := &env{
		store:    opts.Store,
		identity: opts.Identity,
		config:   opts.Config,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	journalService := &JournalService{env: e}

	return &Services{
		Mood:      &MoodService{env: e},
		Journal:   journalService,
		Community: &CommunityService{env: e},
		Insight:   &InsightService{env: e, journal: journalService, factory: opts.Agent},
		Storage:   &StorageService{env: e},
		Config:    NewConfigService(opts.ConfigPath, opts.Config),
		env:       e,
	}
}

// CurrentUser returns the signed-in user, or nil when anonymous.
func (s *Services) CurrentUser(ctx context.Context) (*identity.User, error) {
	_, u, err := s.env.owner(ctx)
	return u, err
}

// Now returns the current time in the configured timezone.
func (s *Services) Now() time.Time {
	return s.env.now().In(s.env.config.Location())
}

// Logger returns the application logger.
func (s *Services) Logger() *zap.Logger {
	return s.env.logger
}

// Close flushes the logger and closes the store.
func (s *Services) Close() error {
	_ = s.env.logger.Sync()
	if s.env.store == nil {
		return nil
	}
	return s.env.store.Close()
}
