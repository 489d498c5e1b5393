package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/gitquest/internal/logging"
	"github.com/aretw0/gitquest/internal/validator"
	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/aretw0/gitquest/pkg/matcher"
	"github.com/aretw0/gitquest/pkg/ports"
)

// DefaultErrorLine is written when a terminal step declares no error narration.
const DefaultErrorLine = "That command didn't do what we need here. Try again."

// Engine is the lesson progression state machine.
// It holds no session state: every action takes a LessonState and returns the next one.
// Acts are validated on first use and cached.
type Engine struct {
	loader  ports.ActLoader
	matcher *matcher.Matcher
	hooks   domain.Hooks
	logger  *slog.Logger
	now     func() time.Time

	mu   sync.RWMutex
	acts map[int]*domain.Act
}

// EngineOption configures the runtime engine.
type EngineOption func(*Engine)

// WithHooks registers observability and presentation hooks.
func WithHooks(hooks domain.Hooks) EngineOption {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMatcher shares a compiled-pattern cache across engines.
func WithMatcher(m *matcher.Matcher) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.matcher = m
		}
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a new engine reading acts from loader.
func NewEngine(loader ports.ActLoader, opts ...EngineOption) *Engine {
	e := &Engine{
		loader: loader,
		logger: logging.NewNop(),
		now:    time.Now,
		acts:   make(map[int]*domain.Act),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.matcher == nil {
		e.matcher = matcher.New(matcher.DefaultCacheSize)
	}
	return e
}

// LoadAct loads and validates an act. Configuration defects fail fast and are
// returned joined so authors see all of them at once.
func (e *Engine) LoadAct(id int) (*domain.Act, error) {
	e.mu.RLock()
	act, ok := e.acts[id]
	e.mu.RUnlock()
	if ok {
		return act, nil
	}

	act, err := e.loader.GetAct(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load act %d: %w", id, err)
	}
	if err := validator.ValidateAct(act); err != nil {
		e.logger.Error("act failed validation", "act_id", id, "error", err)
		return nil, err
	}

	e.mu.Lock()
	e.acts[id] = act
	e.mu.Unlock()
	return act, nil
}

// Acts lists the act IDs known to the loader.
func (e *Engine) Acts() ([]int, error) {
	return e.loader.ListActs()
}

// Start creates the initial state for an act and enters its entry step.
func (e *Engine) Start(ctx context.Context, sessionID string, actID int, opts domain.StartOptions) (*domain.LessonState, error) {
	act, err := e.LoadAct(actID)
	if err != nil {
		return nil, err
	}

	state := domain.NewLessonState(sessionID, actID, act.Entry)
	state.HintsEnabled = opts.HintsEnabled
	state.History = state.History[:0]

	e.logger.Debug("lesson started", "session_id", sessionID, "act_id", actID, "entry", act.Entry)
	e.enter(ctx, act, state, act.Entry)
	return state, nil
}

// Current returns the step the state is positioned on.
func (e *Engine) Current(state *domain.LessonState) (*domain.Step, error) {
	_, step, err := e.locate(state)
	return step, err
}

// Inspect returns the steps of an act.
func (e *Engine) Inspect(actID int) ([]domain.Step, error) {
	act, err := e.LoadAct(actID)
	if err != nil {
		return nil, err
	}
	return append([]domain.Step(nil), act.Steps...), nil
}

// SubmitCommand judges a terminal submission. A mismatch is a normal outcome: error
// narration is appended and the step is retained unless a failure transition applies.
// Blank input is ignored.
func (e *Engine) SubmitCommand(ctx context.Context, state *domain.LessonState, input string) (*domain.LessonState, error) {
	act, step, err := e.expect(state, domain.StepTerminal)
	if err != nil {
		return nil, err
	}

	command := matcher.Normalize(input)
	next := state.Clone()
	if command == "" {
		return next, nil
	}

	ok, err := e.matcher.Match(command, step.Terminal.Pattern)
	if err != nil {
		return nil, fmt.Errorf("step %q: %w", step.ID, err)
	}

	if ok {
		e.appendLine(ctx, next, domain.TerminalLine{Kind: domain.LineCommand, Text: command, StepID: step.ID, Outcome: domain.OutcomeSuccess})
		e.succeed(ctx, next, step, step.Terminal.Success, step.Terminal.Marker)
		e.advance(ctx, act, next, step, step.Resolve(domain.OutcomeSuccess, 0))
		return next, nil
	}

	e.appendLine(ctx, next, domain.TerminalLine{Kind: domain.LineCommand, Text: command, StepID: step.ID, Outcome: domain.OutcomeFailure})
	failures := domain.DeriveFlags(next).Failures(step.ID)

	lines := step.Terminal.Errors
	if len(lines) == 0 {
		lines = []string{DefaultErrorLine}
	}
	for _, text := range lines {
		e.appendLine(ctx, next, domain.TerminalLine{Kind: domain.LineError, Text: text, StepID: step.ID})
	}

	if e.hooks.OnMismatch != nil {
		e.hooks.OnMismatch(ctx, &domain.MismatchEvent{
			EventBase: e.base(next, domain.EventMismatch),
			StepID:    step.ID,
			Input:     command,
			Failures:  failures,
		})
	}

	if next.HintsEnabled && step.Terminal.Hint != "" && failures == step.Terminal.HintThreshold() {
		e.appendLine(ctx, next, domain.TerminalLine{Kind: domain.LineInfo, Text: step.Terminal.Hint, StepID: step.ID})
	}

	if target := step.Resolve(domain.OutcomeFailure, failures); target != "" {
		e.advance(ctx, act, next, step, target)
	}
	return next, nil
}

// Acknowledge advances past a dialog step.
func (e *Engine) Acknowledge(ctx context.Context, state *domain.LessonState) (*domain.LessonState, error) {
	return e.pass(ctx, state, domain.StepDialog)
}

// Elapse advances past a cinematic step once its duration has run out.
// Timing belongs to the host; the engine only performs the transition.
func (e *Engine) Elapse(ctx context.Context, state *domain.LessonState) (*domain.LessonState, error) {
	return e.pass(ctx, state, domain.StepCinematic)
}

// Dismiss advances past a concept step. Every continue key behaves the same;
// an empty key counts as a click.
func (e *Engine) Dismiss(ctx context.Context, state *domain.LessonState, key string) (*domain.LessonState, error) {
	if key != "" && !domain.IsContinueKey(key) {
		return nil, fmt.Errorf("%w: key %q does not continue", domain.ErrActionNotAllowed, key)
	}
	return e.pass(ctx, state, domain.StepConcept)
}

// ConfirmEdit reports that the editor collaborator saw the fix applied.
// Readonly editor steps only accept confirmations from the host.
func (e *Engine) ConfirmEdit(ctx context.Context, state *domain.LessonState, source domain.ConfirmSource) (*domain.LessonState, error) {
	act, step, err := e.expect(state, domain.StepEditor)
	if err != nil {
		return nil, err
	}
	if step.Editor.ReadOnly && source != domain.SourceExternal {
		return nil, fmt.Errorf("%w: step %q is readonly", domain.ErrActionNotAllowed, step.ID)
	}

	next := state.Clone()
	e.succeed(ctx, next, step, step.Editor.Success, step.Editor.Marker)
	e.advance(ctx, act, next, step, step.Resolve(domain.OutcomeSuccess, 0))
	return next, nil
}

// pass advances a step that needs no validation.
func (e *Engine) pass(ctx context.Context, state *domain.LessonState, want domain.StepType) (*domain.LessonState, error) {
	act, step, err := e.expect(state, want)
	if err != nil {
		return nil, err
	}
	next := state.Clone()
	e.advance(ctx, act, next, step, step.Resolve(domain.OutcomeSuccess, 0))
	return next, nil
}

// locate resolves the act and step a state points at.
func (e *Engine) locate(state *domain.LessonState) (*domain.Act, *domain.Step, error) {
	if state == nil {
		return nil, nil, errors.New("nil lesson state")
	}
	act, err := e.LoadAct(state.ActID)
	if err != nil {
		return nil, nil, err
	}
	if state.CurrentStepID == domain.ActComplete {
		return act, sentinelStep(act, state), nil
	}
	step, ok := act.Step(state.CurrentStepID)
	if !ok {
		return nil, nil, fmt.Errorf("act %d has no step %q", act.ID, state.CurrentStepID)
	}
	return act, step, nil
}

// expect checks that the action applies to the current step.
func (e *Engine) expect(state *domain.LessonState, want domain.StepType) (*domain.Act, *domain.Step, error) {
	if state != nil && state.Status == domain.StatusCompleted {
		return nil, nil, domain.ErrActCompleted
	}
	act, step, err := e.locate(state)
	if err != nil {
		return nil, nil, err
	}
	if step.Type != want {
		return nil, nil, fmt.Errorf("%w: step %q is %s, not %s", domain.ErrActionNotAllowed, step.ID, step.Type, want)
	}
	return act, step, nil
}
