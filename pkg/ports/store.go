package ports

import (
	"context"

	"github.com/aretw0/gitquest/pkg/domain"
)

// SessionStore defines the interface for persisting lesson state.
// This allows a player to close the game and resume an act later.
type SessionStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.LessonState) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.LessonState, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns all active session IDs.
	List(ctx context.Context) ([]string, error)
}

// SettingsStore holds the serialized settings record.
// The blob format belongs to the settings package; stores only move bytes.
type SettingsStore interface {
	// ReadSettings returns domain.ErrSettingsNotFound when nothing was written yet.
	ReadSettings(ctx context.Context) ([]byte, error)
	WriteSettings(ctx context.Context, blob []byte) error
}
