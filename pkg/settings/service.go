package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/gitquest/internal/logging"
	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/aretw0/gitquest/pkg/ports"
)

// Service owns the in-memory settings record and writes it through on every change.
// Safe for concurrent use.
type Service struct {
	store  ports.SettingsStore
	logger *slog.Logger

	mu      sync.RWMutex
	current Settings
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for recovery warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a service over store. Call Load before Get.
func NewService(store ports.SettingsStore, opts ...Option) *Service {
	s := &Service{
		store:   store,
		logger:  logging.NewNop(),
		current: Defaults(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the stored blob. Missing, corrupt, invalid, or outdated blobs fall back to
// defaults (the latter three are logged at warn). Only store I/O failures are returned,
// and even then the service keeps serving defaults.
func (s *Service) Load(ctx context.Context) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Defaults()

	blob, err := s.store.ReadSettings(ctx)
	if errors.Is(err, domain.ErrSettingsNotFound) {
		s.logger.Debug("no stored settings, using defaults")
		return s.current, nil
	}
	if err != nil {
		s.logger.Warn("settings store unavailable, using defaults", "error", err)
		return s.current, fmt.Errorf("failed to read settings: %w", err)
	}

	stored, err := decode(blob)
	if err != nil {
		s.logger.Warn("discarding stored settings", "error", err)
		return s.current, nil
	}
	s.current = stored
	return s.current, nil
}

func decode(blob []byte) (Settings, error) {
	// Unset fields keep their defaults.
	stored := Defaults()
	stored.Version = 0
	if err := json.Unmarshal(blob, &stored); err != nil {
		return Settings{}, fmt.Errorf("corrupt settings blob: %w", err)
	}
	if stored.Version != CurrentVersion {
		return Settings{}, fmt.Errorf("settings version %d, want %d", stored.Version, CurrentVersion)
	}
	if err := stored.Validate(); err != nil {
		return Settings{}, err
	}
	return stored, nil
}

// Get returns a copy of the current settings.
func (s *Service) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update applies fn to a copy of the settings, validates it, persists it, and only then
// makes it current.
func (s *Service) Update(ctx context.Context, fn func(*Settings)) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	fn(&next)
	next.Version = CurrentVersion
	if err := next.Validate(); err != nil {
		return s.current, err
	}
	if err := s.write(ctx, next); err != nil {
		return s.current, err
	}
	s.current = next
	return next, nil
}

// Reset restores and persists the defaults.
func (s *Service) Reset(ctx context.Context) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def := Defaults()
	if err := s.write(ctx, def); err != nil {
		return s.current, err
	}
	s.current = def
	return def, nil
}

func (s *Service) write(ctx context.Context, v Settings) error {
	blob, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := s.store.WriteSettings(ctx, blob); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
