package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/gitquest/internal/logging"
	"github.com/aretw0/gitquest/internal/presentation/tui"
	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/aretw0/gitquest/pkg/runner"
	"github.com/aretw0/gitquest/pkg/session"
)

// DefaultSessionID is the save slot used when the player does not name one.
const DefaultSessionID = "default"

// IO are the streams of an interactive command. Nil fields default to stdin/stdout.
type IO struct {
	In  io.Reader
	Out io.Writer
}

func (s IO) streams() (io.Reader, io.Writer) {
	in, out := s.In, s.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return in, out
}

// PlayOptions configure `gitquest play`.
type PlayOptions struct {
	IO
	SessionID string
	// ActID starts that act. Zero resumes the saved session, or starts act 1.
	ActID int
	// Fresh discards the saved session first.
	Fresh bool
	// Headless skips the banner, styling, and cinematic pauses.
	Headless bool
}

// RunPlay resumes or starts a lesson session and plays it in the terminal.
func RunPlay(ctx context.Context, app *App, opts PlayOptions) error {
	in, out := opts.streams()
	id := opts.SessionID
	if id == "" {
		id = DefaultSessionID
	}
	logger := logging.ForSession(app.Logger, id)
	prefs := app.Settings.Get()

	if opts.Fresh {
		if err := app.Manager.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return err
		}
	}

	sess := session.New(app.Engine, session.WithID(id), session.WithSessionLogger(app.Logger))
	defer sess.Close()

	saved, err := app.Manager.Load(ctx, id)
	switch {
	case err == nil && (opts.ActID == 0 || opts.ActID == saved.ActID):
		sess.Resume(saved)
		logger.Info("session resumed", "act_id", saved.ActID, "step_id", saved.CurrentStepID)
		if !opts.Headless {
			fmt.Fprintf(out, ">>> Resuming act %d at '%s'.\n", saved.ActID, saved.CurrentStepID)
		}
	case err == nil || errors.Is(err, domain.ErrSessionNotFound):
		act := opts.ActID
		if act == 0 {
			act = 1
		}
		if err := sess.Begin(ctx, act, domain.StartOptions{HintsEnabled: prefs.Hints}); err != nil {
			return err
		}
		logger.Info("session created", "act_id", act)
	default:
		return err
	}

	runnerOpts := []runner.Option{
		runner.WithInput(in),
		runner.WithOutput(out),
		runner.WithLogger(logger),
		runner.WithStore(app.Store),
		runner.WithHeadless(opts.Headless),
		runner.WithAutoAdvance(prefs.AutoAdvance),
		runner.WithEffects(tui.NewTerminalEffects(out, prefs.SoundEnabled, logger)),
	}
	if !opts.Headless {
		tui.PrintBanner(out)
		render, err := tui.NewRenderer(prefs.Theme)
		if err != nil {
			logger.Warn("markdown renderer unavailable", "err", err)
		} else {
			runnerOpts = append(runnerOpts, runner.WithRenderer(render))
		}
		runnerOpts = append(runnerOpts, runner.WithFormatter(tui.NewLineFormatter(out)))
		if prefs.PlayerName != "" {
			fmt.Fprintf(out, "Welcome back, %s.\n", prefs.PlayerName)
		}
	}

	return runner.NewRunner(runnerOpts...).Run(ctx, sess)
}
