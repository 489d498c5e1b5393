package boss

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/gitquest/internal/logging"
	"github.com/aretw0/gitquest/pkg/puzzle"
)

// ErrEncounterOver is returned when resolving after victory or defeat.
var ErrEncounterOver = errors.New("encounter is over")

// Defaults applied to levels that leave the fields empty.
const (
	DefaultTimeLimit      = 120
	DefaultPenaltySeconds = 10
)

// Level is the authored definition of a boss encounter.
type Level struct {
	ID             string                `json:"id" yaml:"id" mapstructure:"id"`
	Title          string                `json:"title" yaml:"title" mapstructure:"title"`
	Intro          string                `json:"intro,omitempty" yaml:"intro,omitempty" mapstructure:"intro"`
	TimeLimit      int                   `json:"time_limit" yaml:"time_limit" mapstructure:"time_limit"`
	PenaltySeconds int                   `json:"penalty_seconds,omitempty" yaml:"penalty_seconds,omitempty" mapstructure:"penalty_seconds"`
	BonusSeconds   int                   `json:"bonus_seconds,omitempty" yaml:"bonus_seconds,omitempty" mapstructure:"bonus_seconds"`
	Files          []puzzle.ConflictFile `json:"files" yaml:"files" mapstructure:"files"`
	Interrupts     []Rule                `json:"interrupts,omitempty" yaml:"interrupts,omitempty" mapstructure:"interrupts"`
}

// Check verifies the level content.
func (l Level) Check() error {
	if len(l.Files) == 0 {
		return fmt.Errorf("boss %q: no conflict files", l.ID)
	}
	var errs []error
	for _, f := range l.Files {
		if err := f.Check(); err != nil {
			errs = append(errs, fmt.Errorf("boss %q: %w", l.ID, err))
		}
	}
	for i, r := range l.Interrupts {
		switch r.Kind {
		case TriggerTimeBelow, TriggerFilesResolved, TriggerMistake:
		default:
			errs = append(errs, fmt.Errorf("boss %q: interrupt %d: unknown trigger %q", l.ID, i, r.Kind))
		}
	}
	return errors.Join(errs...)
}

// Outcome of an encounter.
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
)

// ResolveResult reports a single hunk resolution.
type ResolveResult struct {
	Correct   bool            `json:"correct"`
	Progress  puzzle.Progress `json:"progress"`
	Remaining int             `json:"remaining"`
	Outcome   Outcome         `json:"outcome"`
	Interrupt *Interrupt      `json:"interrupt,omitempty"`
}

// Encounter is one boss battle. Create one per session and per attempt.
type Encounter struct {
	mu        sync.Mutex
	level     Level
	conflicts *puzzle.ConflictSystem
	timer     *Timer
	coord     *Coordinator
	outcome   Outcome
	lastEvent puzzle.HunkResolved

	onResolved []func(puzzle.HunkResolved)
	onFinish   []func(Outcome)
	logger     *slog.Logger
}

// EncounterOption configures an Encounter.
type EncounterOption func(*encounterConfig)

type encounterConfig struct {
	timerOpts []TimerOption
	coordOpts []CoordinatorOption
	logger    *slog.Logger
}

// WithTimerOptions forwards options to the countdown.
func WithTimerOptions(opts ...TimerOption) EncounterOption {
	return func(c *encounterConfig) {
		c.timerOpts = append(c.timerOpts, opts...)
	}
}

// WithCoordinatorOptions forwards options to the interrupt coordinator.
func WithCoordinatorOptions(opts ...CoordinatorOption) EncounterOption {
	return func(c *encounterConfig) {
		c.coordOpts = append(c.coordOpts, opts...)
	}
}

// WithLogger configures the encounter logger.
func WithLogger(logger *slog.Logger) EncounterOption {
	return func(c *encounterConfig) {
		c.logger = logger
	}
}

// NewEncounter validates level and prepares a stopped encounter.
func NewEncounter(level Level, opts ...EncounterOption) (*Encounter, error) {
	if err := level.Check(); err != nil {
		return nil, err
	}
	if level.TimeLimit <= 0 {
		level.TimeLimit = DefaultTimeLimit
	}
	if level.PenaltySeconds <= 0 {
		level.PenaltySeconds = DefaultPenaltySeconds
	}

	cfg := &encounterConfig{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger.With("boss", level.ID)

	e := &Encounter{
		level:     level,
		conflicts: puzzle.NewConflictSystem(level.Files...),
		timer:     NewTimer(level.TimeLimit, append([]TimerOption{WithTimerLogger(logger)}, cfg.timerOpts...)...),
		coord:     NewCoordinator(level.Interrupts, cfg.coordOpts...),
		outcome:   OutcomePending,
		logger:    logger,
	}
	e.conflicts.OnResolved(func(ev puzzle.HunkResolved) {
		e.lastEvent = ev
	})
	e.timer.OnTick(e.handleTick)
	e.timer.OnExpire(e.handleExpire)
	return e, nil
}

// Level returns the level definition with defaults applied.
func (e *Encounter) Level() Level {
	return e.level
}

// OnResolved registers a listener for every hunk resolution.
func (e *Encounter) OnResolved(fn func(puzzle.HunkResolved)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onResolved = append(e.onResolved, fn)
}

// OnInterrupt registers a listener for narrative interruptions.
func (e *Encounter) OnInterrupt(fn func(Interrupt)) {
	e.coord.OnInterrupt(fn)
}

// OnTick registers a listener for countdown ticks.
func (e *Encounter) OnTick(fn func(remaining int)) {
	e.timer.OnTick(fn)
}

// OnFinish registers a listener called once with the final outcome.
func (e *Encounter) OnFinish(fn func(Outcome)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onFinish = append(e.onFinish, fn)
}

// Start begins the countdown.
func (e *Encounter) Start(ctx context.Context) {
	e.logger.Info("boss encounter started", "time_limit", e.level.TimeLimit, "files", len(e.level.Files))
	e.timer.Start(ctx)
}

// Tick advances the countdown by one second (for hosts driving the clock themselves).
func (e *Encounter) Tick() {
	e.timer.Tick()
}

// Stop halts the countdown without deciding the outcome. Safe to call multiple times.
func (e *Encounter) Stop() {
	e.timer.Stop()
}

// Resolve applies a player's choice to a hunk.
// Wrong choices are accepted (the hunk is resolved) but cost PenaltySeconds.
func (e *Encounter) Resolve(file, hunkID string, choice puzzle.Choice) (ResolveResult, error) {
	e.mu.Lock()
	if e.outcome != OutcomePending {
		e.mu.Unlock()
		return ResolveResult{}, ErrEncounterOver
	}
	correct, err := e.conflicts.Resolve(file, hunkID, choice)
	if err != nil {
		e.mu.Unlock()
		return ResolveResult{}, err
	}
	ev := e.lastEvent
	victory := ev.AllResolved
	if victory {
		e.outcome = OutcomeVictory
	}
	listeners := slices.Clone(e.onResolved)
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}

	if correct {
		e.timer.Bonus(e.level.BonusSeconds)
	} else {
		e.logger.Debug("wrong resolution", "file", file, "hunk", hunkID, "choice", choice)
		e.timer.Penalty(e.level.PenaltySeconds)
	}

	remaining := e.timer.Remaining()
	intr, fired := e.coord.Evaluate(Snapshot{
		Remaining:     remaining,
		FilesResolved: ev.Progress.FilesResolved,
		Mistake:       !correct,
	})

	if victory {
		e.timer.Stop()
		e.finish(OutcomeVictory)
	}

	res := ResolveResult{
		Correct:   correct,
		Progress:  ev.Progress,
		Remaining: remaining,
		Outcome:   e.Outcome(),
	}
	if fired {
		res.Interrupt = &intr
	}
	return res, nil
}

// Outcome returns the current outcome.
func (e *Encounter) Outcome() Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outcome
}

// Progress recomputes the resolution counts.
func (e *Encounter) Progress() puzzle.Progress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conflicts.Progress()
}

// Files returns a snapshot of the conflict files.
func (e *Encounter) Files() []puzzle.ConflictFile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conflicts.Files()
}

// Remaining returns the seconds left on the countdown.
func (e *Encounter) Remaining() int {
	return e.timer.Remaining()
}

// Score is 100 points per correct hunk plus 10 per remaining second on victory, 0 otherwise.
func (e *Encounter) Score() int {
	if e.Outcome() != OutcomeVictory {
		return 0
	}
	return 100*e.Progress().Correct + 10*e.timer.Remaining()
}

func (e *Encounter) handleTick(remaining int) {
	e.coord.Evaluate(Snapshot{
		Remaining:     remaining,
		FilesResolved: e.Progress().FilesResolved,
	})
}

func (e *Encounter) handleExpire() {
	e.mu.Lock()
	if e.outcome != OutcomePending {
		e.mu.Unlock()
		return
	}
	e.outcome = OutcomeDefeat
	e.mu.Unlock()
	e.finish(OutcomeDefeat)
}

func (e *Encounter) finish(o Outcome) {
	e.mu.Lock()
	listeners := slices.Clone(e.onFinish)
	e.mu.Unlock()

	e.logger.Info("boss encounter finished", "outcome", o)
	for _, fn := range listeners {
		fn(o)
	}
}
