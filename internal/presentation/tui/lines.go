package tui

import (
	"io"

	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/aretw0/gitquest/pkg/runner"
	"github.com/muesli/termenv"
)

// NewLineFormatter colors terminal log lines for the profile of w.
// Plain writers (pipes, files) get the same prefixes without escape codes.
func NewLineFormatter(w io.Writer) runner.LineFormatter {
	out := termenv.NewOutput(w)
	return func(l domain.TerminalLine) string {
		switch l.Kind {
		case domain.LineCommand:
			return out.String("$ " + l.Text).Bold().String()
		case domain.LineError:
			return out.String("✗ " + l.Text).Foreground(out.Color("#f87171")).String()
		case domain.LineSuccess:
			return out.String("✓ " + l.Text).Foreground(out.Color("#4ade80")).String()
		case domain.LineInfo:
			return out.String("ℹ " + l.Text).Foreground(out.Color("#60a5fa")).Italic().String()
		}
		return "  " + l.Text
	}
}
