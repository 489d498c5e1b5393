package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter    EventType = "step_enter"
	EventStepLeave    EventType = "step_leave"
	EventLine         EventType = "line"
	EventEffect       EventType = "effect"
	EventMismatch     EventType = "mismatch"
	EventActComplete  EventType = "act_complete"
	EventHunkResolved EventType = "hunk_resolved"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// StepEvent represents entry or exit from a step.
type StepEvent struct {
	EventBase
	ActID    int      `json:"act_id"`
	StepID   string   `json:"step_id"`
	StepType StepType `json:"step_type"`
}

// LineEvent is emitted for every line appended to the terminal log.
type LineEvent struct {
	EventBase
	Line TerminalLine `json:"line"`
}

// EffectEvent forwards a step's opaque presentation tokens.
type EffectEvent struct {
	EventBase
	Effect Effect `json:"effect"`
}

// MismatchEvent is emitted when a submitted command does not match the step pattern.
type MismatchEvent struct {
	EventBase
	StepID   string `json:"step_id"`
	Input    string `json:"input"`
	Failures int    `json:"failures"`
}

// CompletionEvent is emitted once when an act reaches its sink state.
type CompletionEvent struct {
	EventBase
	Completion Completion `json:"completion"`
}

// Hooks defines callbacks for engine observability and presentation.
// Every field is optional.
type Hooks struct {
	OnStepEnter   func(context.Context, *StepEvent)
	OnStepLeave   func(context.Context, *StepEvent)
	OnLine        func(context.Context, *LineEvent)
	OnEffect      func(context.Context, *EffectEvent)
	OnMismatch    func(context.Context, *MismatchEvent)
	OnActComplete func(context.Context, *CompletionEvent)
}

// Merge chains two hook sets; callbacks of h run before those of other.
func (h Hooks) Merge(other Hooks) Hooks {
	return Hooks{
		OnStepEnter:   chain(h.OnStepEnter, other.OnStepEnter),
		OnStepLeave:   chain(h.OnStepLeave, other.OnStepLeave),
		OnLine:        chain(h.OnLine, other.OnLine),
		OnEffect:      chain(h.OnEffect, other.OnEffect),
		OnMismatch:    chain(h.OnMismatch, other.OnMismatch),
		OnActComplete: chain(h.OnActComplete, other.OnActComplete),
	}
}

func chain[T any](a, b func(context.Context, T)) func(context.Context, T) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, ev T) {
		a(ctx, ev)
		b(ctx, ev)
	}
}
