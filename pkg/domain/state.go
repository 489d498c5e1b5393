package domain

import "slices"

// LessonStatus defines whether the act is still being played.
type LessonStatus string

const (
	StatusActive    LessonStatus = "active"    // Normal operation
	StatusCompleted LessonStatus = "completed" // Sink state reached
)

// LineKind tags a terminal line for styling and derivation.
type LineKind string

const (
	LineCommand LineKind = "command"
	LineOutput  LineKind = "output"
	LineError   LineKind = "error"
	LineSuccess LineKind = "success"
	LineInfo    LineKind = "info"
)

// TerminalLine is one entry of the simulated terminal log.
type TerminalLine struct {
	Kind   LineKind `json:"kind"`
	Text   string   `json:"text"`
	StepID string   `json:"step_id"`

	// Outcome is set on command lines and records how the submission was judged.
	Outcome Outcome `json:"outcome,omitempty"`

	// Marker is copied from the step payload onto success lines.
	Marker string `json:"marker,omitempty"`
}

// Effect is an opaque presentation event emitted by a step.
type Effect struct {
	StepID string `json:"step_id"`
	Effects
}

// LessonState represents the current snapshot of a player's progress in one act.
type LessonState struct {
	SessionID     string       `json:"session_id"`
	ActID         int          `json:"act_id"`
	CurrentStepID string       `json:"current_step_id"`
	Status        LessonStatus `json:"status"`

	// Lines is append-only during a session.
	Lines []TerminalLine `json:"lines"`

	// Effects is append-only; presentation layers keep their own cursor into it.
	Effects []Effect `json:"effects,omitempty"`

	// History tracks the path of visited steps.
	History []string `json:"history"`

	HintsEnabled bool `json:"hints_enabled"`

	// Completion is set once the act reached its sink state.
	Completion *Completion `json:"completion,omitempty"`
}

// NewLessonState creates a clean state positioned at the entry step.
func NewLessonState(sessionID string, actID int, entryStepID string) *LessonState {
	return &LessonState{
		SessionID:     sessionID,
		ActID:         actID,
		CurrentStepID: entryStepID,
		Status:        StatusActive,
		Lines:         []TerminalLine{},
		History:       []string{entryStepID},
	}
}

// Clone returns a copy that can be mutated without affecting s.
func (s *LessonState) Clone() *LessonState {
	if s == nil {
		return nil
	}
	next := *s
	next.Lines = slices.Clone(s.Lines)
	next.Effects = slices.Clone(s.Effects)
	next.History = slices.Clone(s.History)
	if s.Completion != nil {
		c := *s.Completion
		next.Completion = &c
	}
	return &next
}

// Flags are presentation indicators derived from the terminal log.
// They are never stored; call DeriveFlags again after every transition.
type Flags struct {
	Commands   int
	Successes  int
	Mistakes   int
	Markers    map[string]bool
	failByStep map[string]int
}

// Failures returns the number of failed submissions on the given step.
func (f Flags) Failures(stepID string) int {
	return f.failByStep[stepID]
}

// Reached reports whether a success line carrying the marker exists.
func (f Flags) Reached(marker string) bool {
	return f.Markers[marker]
}

// DeriveFlags recomputes the indicators by scanning the terminal log.
func DeriveFlags(s *LessonState) Flags {
	f := Flags{
		Markers:    make(map[string]bool),
		failByStep: make(map[string]int),
	}
	if s == nil {
		return f
	}
	for _, l := range s.Lines {
		if l.Kind == LineCommand {
			f.Commands++
			switch l.Outcome {
			case OutcomeSuccess:
				f.Successes++
			case OutcomeFailure:
				f.Mistakes++
				f.failByStep[l.StepID]++
			}
		}
		if l.Marker != "" {
			f.Markers[l.Marker] = true
		}
	}
	return f
}
