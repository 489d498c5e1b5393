// Package cli implements the gitquest commands behind the cobra wiring in cmd/gitquest.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/gitquest"
	"github.com/aretw0/gitquest/internal/config"
	"github.com/aretw0/gitquest/internal/metrics"
	"github.com/aretw0/gitquest/pkg/adapters/file"
	"github.com/aretw0/gitquest/pkg/adapters/redis"
	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/aretw0/gitquest/pkg/persistence/middleware"
	"github.com/aretw0/gitquest/pkg/ports"
	"github.com/aretw0/gitquest/pkg/session"
	"github.com/aretw0/gitquest/pkg/settings"
)

// Options are the global flags shared by every command. Set fields override the config file.
type Options struct {
	ConfigPath string
	ContentDir string
	DataDir    string
	RedisAddr  string
	Debug      bool
}

// Store persists both sessions and settings.
type Store interface {
	ports.SessionStore
	ports.SettingsStore
}

// App holds everything a command needs. Close releases the store connections.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Engine   *gitquest.Engine
	Store    Store
	Settings *settings.Service
	Manager  *session.Manager
	Metrics  *metrics.Metrics

	closers []func() error
}

// LoadConfig reads the config file and applies the flag overrides.
func LoadConfig(opts Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.ContentDir != "" {
		cfg.ContentDir = opts.ContentDir
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.RedisAddr != "" {
		cfg.Redis.Addr = opts.RedisAddr
	}
	return cfg, nil
}

// NewEngine builds the lesson engine described by cfg.
func NewEngine(cfg *config.Config, logger *slog.Logger, debug bool, hooks ...domain.Hooks) (*gitquest.Engine, error) {
	engineOpts := []gitquest.Option{gitquest.WithLogger(logger)}
	if cfg.ContentDir != "" {
		engineOpts = append(engineOpts, gitquest.WithContentDir(cfg.ContentDir))
	}
	if debug {
		engineOpts = append(engineOpts, gitquest.WithHooks(debugHooks(logger)))
	}
	for _, h := range hooks {
		engineOpts = append(engineOpts, gitquest.WithHooks(h))
	}
	engine, err := gitquest.New(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// Setup wires config, logging, the engine, the store, and the services.
// The content is validated up front so a broken act never reaches a player.
func Setup(ctx context.Context, opts Options) (*App, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger := cfg.NewLogger(opts.Debug)
	m := metrics.New(true)

	engine, err := NewEngine(cfg, logger, opts.Debug, m.Hooks())
	if err != nil {
		return nil, err
	}
	if err := engine.Validate(); err != nil {
		return nil, fmt.Errorf("invalid content: %w", err)
	}

	app := &App{Config: cfg, Logger: logger, Engine: engine, Metrics: m}
	managerOpts := []session.Option{session.WithLogger(logger)}

	if cfg.Redis.Addr != "" {
		var storeOpts []redis.Option
		if cfg.Redis.Prefix != "" {
			storeOpts = append(storeOpts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			storeOpts = append(storeOpts, redis.WithTTL(cfg.Redis.TTL))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, storeOpts...)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		app.Store = store
		app.closers = append(app.closers, store.Close)
		managerOpts = append(managerOpts,
			session.WithLocker(redis.NewLocker(store.Client(), cfg.Redis.Prefix+"lock:")),
			session.WithLockTTL(cfg.Redis.LockTTL),
		)
		logger.Debug("using redis store", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	} else {
		app.Store = file.New(cfg.DataDir)
		logger.Debug("using file store", "dir", cfg.DataDir)
	}

	protected, err := protectSessions(cfg.Storage, app.Store)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Store = protected

	app.Settings = settings.NewService(app.Store, settings.WithLogger(logger))
	if _, err := app.Settings.Load(ctx); err != nil {
		logger.Warn("continuing with default settings", "error", err)
	}
	app.Manager = session.NewManager(engine, app.Store, managerOpts...)
	return app, nil
}

type protectedStore struct {
	ports.SessionStore
	ports.SettingsStore
}

// protectSessions wraps the session half of store with redaction and encryption.
// Settings are left untouched.
func protectSessions(cfg config.StorageConfig, store Store) (Store, error) {
	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		mws = append(mws, middleware.NewRedactMiddleware(cfg.Redact))
	}
	active, fallback, err := cfg.Keys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
	}
	if len(mws) == 0 {
		return store, nil
	}
	return protectedStore{
		SessionStore:  middleware.Chain(store, mws...),
		SettingsStore: store,
	}, nil
}

// Close releases resources opened by Setup.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func debugHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("enter step", "session_id", e.SessionID, "step_id", e.StepID, "type", e.StepType)
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("leave step", "session_id", e.SessionID, "step_id", e.StepID)
		},
		OnMismatch: func(ctx context.Context, e *domain.MismatchEvent) {
			logger.Debug("command mismatch", "session_id", e.SessionID, "step_id", e.StepID, "failures", e.Failures)
		},
		OnActComplete: func(ctx context.Context, e *domain.CompletionEvent) {
			logger.Debug("act complete", "session_id", e.SessionID, "act_id", e.Completion.ActID)
		},
	}
}
