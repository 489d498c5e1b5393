package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/gitquest/internal/presentation/tui"
	"github.com/aretw0/gitquest/pkg/boss"
	"github.com/aretw0/gitquest/pkg/puzzle"
	"github.com/aretw0/gitquest/pkg/runner"
	"github.com/aretw0/gitquest/pkg/session"
)

// Puzzle kinds accepted by RunPuzzle.
const (
	PuzzleMerge      = "merge"
	PuzzleRebase     = "rebase"
	PuzzleCherryPick = "cherry-pick"
)

// ErrLevelNotFound is returned for unknown level IDs.
var ErrLevelNotFound = errors.New("level not found")

// PuzzleOptions configure `gitquest puzzle` and `gitquest boss`.
type PuzzleOptions struct {
	IO
	Kind string
	// LevelID selects the level. Empty picks the first one.
	LevelID  string
	Headless bool
}

func (a *App) levelRunner(opts PuzzleOptions, out io.Writer, in io.Reader) *runner.Runner {
	prefs := a.Settings.Get()
	runnerOpts := []runner.Option{
		runner.WithInput(in),
		runner.WithOutput(out),
		runner.WithLogger(a.Logger),
		runner.WithHeadless(opts.Headless),
	}
	if !opts.Headless {
		if render, err := tui.NewRenderer(prefs.Theme); err == nil {
			runnerOpts = append(runnerOpts, runner.WithRenderer(render))
		}
	}
	return runner.NewRunner(runnerOpts...)
}

func pick[T any](items []T, id string, key func(T) string) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrLevelNotFound
	}
	if id == "" {
		return items[0], nil
	}
	for _, it := range items {
		if key(it) == id {
			return it, nil
		}
	}
	return zero, fmt.Errorf("%w: %q", ErrLevelNotFound, id)
}

// ListLevels prints the level IDs of every mini-game.
func ListLevels(app *App, out io.Writer) error {
	levels, err := app.Engine.Levels()
	if err != nil {
		return err
	}
	section := func(name string, ids []string) {
		fmt.Fprintf(out, "%s:\n", name)
		for _, id := range ids {
			fmt.Fprintf(out, "  - %s\n", id)
		}
	}
	section(PuzzleMerge, ids(levels.Merge, func(l puzzle.MergeLevel) string { return l.ID }))
	section(PuzzleRebase, ids(levels.Rebase, func(l puzzle.RebaseLevel) string { return l.ID }))
	section(PuzzleCherryPick, ids(levels.CherryPick, func(l puzzle.CherryPickLevel) string { return l.ID }))
	section("boss", ids(levels.Boss, func(l boss.Level) string { return l.ID }))
	return nil
}

func ids[T any](items []T, key func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, key(it))
	}
	return out
}

// RunPuzzle plays one merge, rebase, or cherry-pick level. It reports whether the
// player solved it.
func RunPuzzle(ctx context.Context, app *App, opts PuzzleOptions) (bool, error) {
	levels, err := app.Engine.Levels()
	if err != nil {
		return false, err
	}
	in, out := opts.streams()
	r := app.levelRunner(opts, out, in)
	sess := session.New(app.Engine, session.WithSessionLogger(app.Logger))
	defer sess.Close()

	switch opts.Kind {
	case PuzzleMerge:
		level, err := pick(levels.Merge, opts.LevelID, func(l puzzle.MergeLevel) string { return l.ID })
		if err != nil {
			return false, err
		}
		return r.PlayMerge(ctx, sess.OpenMerge(level))
	case PuzzleRebase:
		level, err := pick(levels.Rebase, opts.LevelID, func(l puzzle.RebaseLevel) string { return l.ID })
		if err != nil {
			return false, err
		}
		return r.PlayRebase(ctx, sess.OpenRebase(level))
	case PuzzleCherryPick:
		level, err := pick(levels.CherryPick, opts.LevelID, func(l puzzle.CherryPickLevel) string { return l.ID })
		if err != nil {
			return false, err
		}
		return r.PlayCherryPick(ctx, sess.OpenCherryPick(level))
	}
	return false, fmt.Errorf("unknown puzzle %q (want %s, %s or %s)", opts.Kind, PuzzleMerge, PuzzleRebase, PuzzleCherryPick)
}

// RunBoss plays a boss encounter. The time limit is scaled by the difficulty setting.
func RunBoss(ctx context.Context, app *App, opts PuzzleOptions, timerOpts ...boss.TimerOption) (boss.Outcome, error) {
	levels, err := app.Engine.Levels()
	if err != nil {
		return boss.OutcomePending, err
	}
	level, err := pick(levels.Boss, opts.LevelID, func(l boss.Level) string { return l.ID })
	if err != nil {
		return boss.OutcomePending, err
	}
	if level.TimeLimit <= 0 {
		level.TimeLimit = boss.DefaultTimeLimit
	}
	level.TimeLimit = app.Settings.Get().Difficulty.ScaleSeconds(level.TimeLimit)

	sess := session.New(app.Engine, session.WithSessionLogger(app.Logger))
	defer sess.Close()
	enc, err := sess.StartBoss(level, boss.WithTimerOptions(timerOpts...))
	if err != nil {
		return boss.OutcomePending, err
	}
	app.Metrics.ObserveEncounter(enc)

	in, out := opts.streams()
	return app.levelRunner(opts, out, in).PlayBoss(ctx, enc)
}
