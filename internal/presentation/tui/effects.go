package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/gitquest/internal/logging"
	"github.com/aretw0/gitquest/pkg/domain"
)

// TerminalEffects is the runner effect sink for text terminals. Sound events ring
// the bell when enabled. Visual events are only logged.
type TerminalEffects struct {
	w      io.Writer
	sound  bool
	logger *slog.Logger
}

// NewTerminalEffects creates a sink writing to w. logger may be nil.
func NewTerminalEffects(w io.Writer, soundEnabled bool, logger *slog.Logger) *TerminalEffects {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &TerminalEffects{w: w, sound: soundEnabled, logger: logger}
}

// Play implements runner.EffectSink.
func (t *TerminalEffects) Play(ctx context.Context, effect domain.Effect) error {
	if effect.VisualEvent != "" {
		t.logger.Debug("visual effect", "step_id", effect.StepID, "event", effect.VisualEvent)
	}
	if effect.SoundEvent == "" || !t.sound {
		return nil
	}
	t.logger.Debug("sound effect", "step_id", effect.StepID, "event", effect.SoundEvent)
	_, err := fmt.Fprint(t.w, "\a")
	return err
}
