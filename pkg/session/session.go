package session

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/gitquest/internal/logging"
	"github.com/aretw0/gitquest/pkg/boss"
	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/aretw0/gitquest/pkg/ports"
	"github.com/aretw0/gitquest/pkg/puzzle"
)

// ErrNotStarted is returned by actions on a session with no lesson state.
var ErrNotStarted = errors.New("session not started")

// Session is one player's context: lesson state, boss encounter, and open puzzle board.
// Actions return only an error; callers re-read State afterwards.
// Safe for concurrent use.
type Session struct {
	id     string
	engine ports.LessonEngine
	logger *slog.Logger

	mu        sync.Mutex
	state     *domain.LessonState
	encounter *boss.Encounter
	board     any
	listeners []*changeListener
}

type changeListener struct {
	fn func(*domain.LessonState, *domain.StateDiff)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithID fixes the session identifier instead of generating one.
func WithID(id string) SessionOption {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an idle session bound to engine.
func New(engine ports.LessonEngine, opts ...SessionOption) *Session {
	s := &Session{
		id:     NewID(),
		engine: engine,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.ForSession(s.logger, s.id)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// OnChange registers a listener called after every action that changed the state.
// Listeners run outside the session lock. The returned func removes the listener and
// may be called more than once.
func (s *Session) OnChange(fn func(state *domain.LessonState, diff *domain.StateDiff)) (remove func()) {
	l := &changeListener{fn: fn}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// Copy first: notify may be ranging over the old slice.
		s.listeners = slices.DeleteFunc(slices.Clone(s.listeners), func(c *changeListener) bool { return c == l })
	}
}

// Begin starts an act, discarding any lesson in progress.
func (s *Session) Begin(ctx context.Context, actID int, opts domain.StartOptions) error {
	state, err := s.engine.Start(ctx, s.id, actID, opts)
	if err != nil {
		return err
	}
	s.replace(nil, state)
	return nil
}

// Resume continues from a saved state.
func (s *Session) Resume(state *domain.LessonState) {
	if state == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone()
	s.state.SessionID = s.id
}

// State returns a snapshot of the lesson state, or nil before Begin.
func (s *Session) State() *domain.LessonState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Current returns the step the player is on.
func (s *Session) Current() (*domain.Step, error) {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if state == nil {
		return nil, ErrNotStarted
	}
	return s.engine.Current(state)
}

// SubmitCommand sends a terminal command.
func (s *Session) SubmitCommand(ctx context.Context, input string) error {
	return s.apply(ctx, func(ctx context.Context, st *domain.LessonState) (*domain.LessonState, error) {
		return s.engine.SubmitCommand(ctx, st, input)
	})
}

// Acknowledge dismisses a dialog.
func (s *Session) Acknowledge(ctx context.Context) error {
	return s.apply(ctx, s.engine.Acknowledge)
}

// ConfirmEdit reports an applied fix.
func (s *Session) ConfirmEdit(ctx context.Context, source domain.ConfirmSource) error {
	return s.apply(ctx, func(ctx context.Context, st *domain.LessonState) (*domain.LessonState, error) {
		return s.engine.ConfirmEdit(ctx, st, source)
	})
}

// Dismiss continues past a concept.
func (s *Session) Dismiss(ctx context.Context, key string) error {
	return s.apply(ctx, func(ctx context.Context, st *domain.LessonState) (*domain.LessonState, error) {
		return s.engine.Dismiss(ctx, st, key)
	})
}

// Elapse reports that a cinematic finished playing.
func (s *Session) Elapse(ctx context.Context) error {
	return s.apply(ctx, s.engine.Elapse)
}

func (s *Session) apply(ctx context.Context, action Action) error {
	s.mu.Lock()
	current := s.state
	if current == nil {
		s.mu.Unlock()
		return ErrNotStarted
	}
	next, err := action(ctx, current)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	listeners := s.listeners
	s.mu.Unlock()

	s.notify(listeners, current, next)
	return nil
}

func (s *Session) replace(old, next *domain.LessonState) {
	s.mu.Lock()
	s.state = next
	listeners := s.listeners
	s.mu.Unlock()
	s.notify(listeners, old, next)
}

func (s *Session) notify(listeners []*changeListener, old, next *domain.LessonState) {
	diff := domain.Diff(old, next)
	if diff == nil {
		return
	}
	for _, l := range listeners {
		l.fn(next, diff)
	}
}

// StartBoss opens a boss encounter, stopping any previous one. The conflict system is
// created fresh for every encounter. The countdown is not started.
func (s *Session) StartBoss(level boss.Level, opts ...boss.EncounterOption) (*boss.Encounter, error) {
	opts = append([]boss.EncounterOption{boss.WithLogger(s.logger)}, opts...)
	enc, err := boss.NewEncounter(level, opts...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	prev := s.encounter
	s.encounter = enc
	s.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}
	return enc, nil
}

// Encounter returns the boss encounter in progress, or nil.
func (s *Session) Encounter() *boss.Encounter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encounter
}

// OpenMerge opens a merge puzzle, discarding any board already open.
func (s *Session) OpenMerge(level puzzle.MergeLevel) *puzzle.MergeBoard {
	b := puzzle.NewMergeBoard(level)
	s.setBoard(b)
	return b
}

// OpenRebase opens a rebase puzzle, discarding any board already open.
func (s *Session) OpenRebase(level puzzle.RebaseLevel) *puzzle.RebaseBoard {
	b := puzzle.NewRebaseBoard(level)
	s.setBoard(b)
	return b
}

// OpenCherryPick opens a cherry-pick puzzle, discarding any board already open.
func (s *Session) OpenCherryPick(level puzzle.CherryPickLevel) *puzzle.CherryPickBoard {
	b := puzzle.NewCherryPickBoard(level)
	s.setBoard(b)
	return b
}

// Board returns the open puzzle board (*puzzle.MergeBoard, *puzzle.RebaseBoard,
// or *puzzle.CherryPickBoard), or nil.
func (s *Session) Board() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board
}

// CloseBoard discards the open puzzle. Attempts are never persisted.
func (s *Session) CloseBoard() {
	s.setBoard(nil)
}

func (s *Session) setBoard(b any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = b
}

// Close stops the boss countdown and drops the open board. Safe to call multiple times.
func (s *Session) Close() {
	s.mu.Lock()
	enc := s.encounter
	s.encounter = nil
	s.board = nil
	s.mu.Unlock()

	if enc != nil {
		enc.Stop()
	}
}
