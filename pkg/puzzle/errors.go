package puzzle

import "errors"

var (
	// ErrIndexOutOfRange is returned when a board operation references a missing slot.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrUnknownCommit is returned when a commit ID is not part of the level.
	ErrUnknownCommit = errors.New("unknown commit")
	// ErrInvalidChoice is returned for a hunk choice other than current, incoming, or both.
	ErrInvalidChoice = errors.New("invalid hunk choice")
)
