package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/gitquest/internal/presentation/graph"
	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/aretw0/gitquest/pkg/settings"
)

// ListSessions prints the saved session IDs.
func ListSessions(ctx context.Context, app *App, out io.Writer) error {
	ids, err := app.Manager.List(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No saved sessions found.")
		return nil
	}
	fmt.Fprintln(out, "Saved sessions:")
	for _, id := range ids {
		state, err := app.Manager.Load(ctx, id)
		if err != nil {
			fmt.Fprintf(out, "- %s (unreadable: %v)\n", id, err)
			continue
		}
		fmt.Fprintf(out, "- %s: act %d, %s at '%s'\n", id, state.ActID, state.Status, state.CurrentStepID)
	}
	return nil
}

// InspectSession prints the saved state as indented JSON.
func InspectSession(ctx context.Context, app *App, id string, out io.Writer) error {
	state, err := app.Manager.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("load session %q: %w", id, err)
	}
	return writeJSON(out, state)
}

// RemoveSessions deletes every listed session and reports each one.
func RemoveSessions(ctx context.Context, app *App, ids []string, out io.Writer) error {
	var errs []error
	for _, id := range ids {
		if err := app.Manager.Delete(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("remove %q: %w", id, err))
			continue
		}
		fmt.Fprintf(out, "Removed session '%s'\n", id)
	}
	return errors.Join(errs...)
}

// ShowSettings prints the current settings.
func ShowSettings(app *App, out io.Writer) error {
	return writeJSON(out, app.Settings.Get())
}

// SetSettings applies key=value pairs atomically: nothing is written if any pair is invalid.
func SetSettings(ctx context.Context, app *App, pairs map[string]string, out io.Writer) error {
	scratch := app.Settings.Get()
	var errs []error
	for k, v := range pairs {
		if err := scratch.Set(k, v); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if err := scratch.Validate(); err != nil {
		return err
	}
	next, err := app.Settings.Update(ctx, func(s *settings.Settings) { *s = scratch })
	if err != nil {
		return err
	}
	return writeJSON(out, next)
}

// ResetSettings restores the defaults.
func ResetSettings(ctx context.Context, app *App, out io.Writer) error {
	def, err := app.Settings.Reset(ctx)
	if err != nil {
		return err
	}
	return writeJSON(out, def)
}

// GraphOptions configure `gitquest graph`.
type GraphOptions struct {
	ActID int
	// SessionID overlays a saved session's progress when set.
	SessionID string
}

// RunGraph prints the Mermaid flowchart of an act.
func RunGraph(ctx context.Context, app *App, opts GraphOptions, out io.Writer) error {
	act, err := app.Engine.Act(opts.ActID)
	if err != nil {
		return err
	}
	var overlay *graph.Overlay
	if opts.SessionID != "" {
		state, err := app.Manager.Load(ctx, opts.SessionID)
		if err != nil {
			return fmt.Errorf("load session %q: %w", opts.SessionID, err)
		}
		if state.ActID == act.ID {
			overlay = graph.OverlayFor(state)
		}
	}
	_, err = fmt.Fprint(out, graph.GenerateMermaid(act, overlay))
	return err
}

// RunValidate loads every act and level of the configured content and reports
// each configuration defect.
func RunValidate(opts Options, out io.Writer) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}
	engine, err := NewEngine(cfg, cfg.NewLogger(opts.Debug), opts.Debug)
	if err != nil {
		return err
	}
	ids, err := engine.Acts()
	if err != nil {
		return err
	}
	if err := engine.Validate(); err != nil {
		var cfgErr *domain.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(out, "first defect: %v\n", cfgErr)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	fmt.Fprintf(out, "Content %q is valid! ✅ (%d acts)\n", engine.Name, len(ids))
	return nil
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
