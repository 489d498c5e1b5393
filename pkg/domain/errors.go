package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrActNotFound is returned when the loader has no act with the requested ID.
var ErrActNotFound = errors.New("act not found")

// ErrSettingsNotFound is returned by settings stores that hold no blob yet.
var ErrSettingsNotFound = errors.New("settings not found")

// ErrActionNotAllowed is returned when a player action does not apply to the current step type.
// The state is left untouched.
var ErrActionNotAllowed = errors.New("action not allowed for current step")

// ErrActCompleted is returned when an action is submitted to a session whose act already finished.
var ErrActCompleted = errors.New("act already completed")

// ErrUnknownFile is returned when a conflict resolution targets a file that is not part of the encounter.
var ErrUnknownFile = errors.New("unknown conflict file")

// ErrUnknownHunk is returned when a conflict resolution targets a hunk that is not part of the file.
var ErrUnknownHunk = errors.New("unknown conflict hunk")

// ConfigError describes a defect in authored act data.
// Configuration errors are fatal at load time and are meant for the content author, not the player.
type ConfigError struct {
	ActID  int
	StepID string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.StepID == "" {
		return fmt.Sprintf("act %d: %s", e.ActID, e.Reason)
	}
	return fmt.Sprintf("act %d: step %q: %s", e.ActID, e.StepID, e.Reason)
}

// IsConfigError reports whether err (or any error it wraps or joins) is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
