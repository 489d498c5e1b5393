package gitquest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/gitquest/internal/content"
	"github.com/aretw0/gitquest/internal/logging"
	"github.com/aretw0/gitquest/internal/runtime"
	"github.com/aretw0/gitquest/pkg/adapters/yamlfs"
	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/aretw0/gitquest/pkg/matcher"
	"github.com/aretw0/gitquest/pkg/ports"
)

// Version is the release of the gitquest module.
const Version = "0.4.0"

// ErrNoLevels is returned by Levels when the loader does not carry puzzle levels.
var ErrNoLevels = errors.New("loader has no puzzle levels")

// Engine is the high-level entry point for the gitquest library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime    *runtime.Engine
	loader     ports.ActLoader
	contentDir string
	hooks      domain.Hooks
	matcher    *matcher.Matcher
	logger     *slog.Logger
	Name       string
}

var _ ports.LessonEngine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithHooks registers lifecycle hooks. Repeated calls chain the hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLoader injects a custom ActLoader, bypassing the embedded content.
func WithLoader(l ports.ActLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithContentDir loads acts and levels from a directory instead of the embedded content.
func WithContentDir(dir string) Option {
	return func(e *Engine) {
		e.contentDir = dir
	}
}

// WithMatcher shares a pattern cache across engines.
func WithMatcher(m *matcher.Matcher) Option {
	return func(e *Engine) {
		e.matcher = m
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a gitquest Engine. Without options it plays the built-in acts.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{Name: "builtin"}
	for _, opt := range opts {
		opt(eng)
	}

	switch {
	case eng.loader != nil && eng.contentDir != "":
		return nil, fmt.Errorf("WithLoader and WithContentDir are mutually exclusive")
	case eng.contentDir != "":
		abs, err := filepath.Abs(eng.contentDir)
		if err != nil {
			return nil, fmt.Errorf("invalid content path: %w", err)
		}
		eng.Name = filepath.Base(abs)
		eng.loader = yamlfs.NewDir(abs)
	case eng.loader == nil:
		eng.loader = content.Loader()
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	eng.logger = eng.logger.With("content", eng.Name)

	runtimeOpts := []runtime.EngineOption{
		runtime.WithHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	}
	if eng.matcher != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithMatcher(eng.matcher))
	}
	eng.runtime = runtime.NewEngine(eng.loader, runtimeOpts...)
	return eng, nil
}

// Start creates the initial state of an act and enters its entry step.
func (e *Engine) Start(ctx context.Context, sessionID string, actID int, opts domain.StartOptions) (*domain.LessonState, error) {
	return e.runtime.Start(ctx, sessionID, actID, opts)
}

// Current returns the step the state points at.
func (e *Engine) Current(state *domain.LessonState) (*domain.Step, error) {
	return e.runtime.Current(state)
}

// SubmitCommand judges a terminal command. A mismatch is not an error.
func (e *Engine) SubmitCommand(ctx context.Context, state *domain.LessonState, input string) (*domain.LessonState, error) {
	return e.runtime.SubmitCommand(ctx, state, input)
}

// Acknowledge dismisses a dialog step.
func (e *Engine) Acknowledge(ctx context.Context, state *domain.LessonState) (*domain.LessonState, error) {
	return e.runtime.Acknowledge(ctx, state)
}

// ConfirmEdit reports that the editor fix was applied.
func (e *Engine) ConfirmEdit(ctx context.Context, state *domain.LessonState, source domain.ConfirmSource) (*domain.LessonState, error) {
	return e.runtime.ConfirmEdit(ctx, state, source)
}

// Dismiss continues past a concept step.
func (e *Engine) Dismiss(ctx context.Context, state *domain.LessonState, key string) (*domain.LessonState, error) {
	return e.runtime.Dismiss(ctx, state, key)
}

// Elapse advances a cinematic step once its duration has passed.
func (e *Engine) Elapse(ctx context.Context, state *domain.LessonState) (*domain.LessonState, error) {
	return e.runtime.Elapse(ctx, state)
}

// Inspect returns the steps of an act for visualization tools.
func (e *Engine) Inspect(actID int) ([]domain.Step, error) {
	return e.runtime.Inspect(actID)
}

// Act loads and validates one act.
func (e *Engine) Act(actID int) (*domain.Act, error) {
	return e.runtime.LoadAct(actID)
}

// Acts lists the available act IDs in ascending order.
func (e *Engine) Acts() ([]int, error) {
	return e.runtime.Acts()
}

// Validate loads every act and the puzzle levels, joining all configuration errors.
func (e *Engine) Validate() error {
	ids, err := e.Acts()
	if err != nil {
		return err
	}
	var errs []error
	for _, id := range ids {
		if _, err := e.runtime.LoadAct(id); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := e.Levels(); err != nil && !errors.Is(err, ErrNoLevels) && !errors.Is(err, fs.ErrNotExist) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Levels returns the puzzle and boss levels shipped with the content.
func (e *Engine) Levels() (*yamlfs.Levels, error) {
	l, ok := e.loader.(*yamlfs.Loader)
	if !ok {
		return nil, ErrNoLevels
	}
	return l.LoadLevels()
}

// Loader returns the underlying ActLoader used by the engine.
func (e *Engine) Loader() ports.ActLoader {
	return e.loader
}
