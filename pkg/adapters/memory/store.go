package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/gitquest/pkg/domain"
)

// Store implements ports.SessionStore and ports.SettingsStore in memory.
// Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	data     map[string]*domain.LessonState
	settings []byte
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.LessonState),
	}
}

// Save persists a copy of the state.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.LessonState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = state.Clone()
	return nil
}

// Load returns a copy so callers can't mutate stored state through the pointer.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.LessonState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return state.Clone(), nil
}

// Delete removes the state.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns active sessions.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	return sessions, nil
}

// ReadSettings returns the last written settings blob.
func (s *Store) ReadSettings(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return nil, domain.ErrSettingsNotFound
	}
	return append([]byte(nil), s.settings...), nil
}

// WriteSettings replaces the settings blob.
func (s *Store) WriteSettings(ctx context.Context, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = append([]byte(nil), blob...)
	return nil
}
