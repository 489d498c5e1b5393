package tui_test

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/aretw0/gitquest/internal/presentation/tui"
	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/aretw0/gitquest/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// plain drops escape codes and collapses the padding glamour puts between words.
func plain(s string) string {
	return strings.Join(strings.Fields(ansi.ReplaceAllString(s, "")), " ")
}

func TestRenderer(t *testing.T) {
	for _, theme := range []settings.Theme{settings.ThemeAuto, settings.ThemeDark, settings.ThemeLight} {
		render, err := tui.NewRenderer(theme)
		require.NoError(t, err, theme)
		out, err := render("# Staging\n\nThe index holds your next commit.")
		require.NoError(t, err)
		text := plain(out)
		assert.Contains(t, text, "Staging")
		assert.Contains(t, text, "The index holds your next commit.")
	}
}

func TestLineFormatter_PlainWriter(t *testing.T) {
	var buf bytes.Buffer
	format := tui.NewLineFormatter(&buf)

	assert.Equal(t, "$ git init", format(domain.TerminalLine{Kind: domain.LineCommand, Text: "git init"}))
	assert.Equal(t, "✗ nope", format(domain.TerminalLine{Kind: domain.LineError, Text: "nope"}))
	assert.Equal(t, "✓ done", format(domain.TerminalLine{Kind: domain.LineSuccess, Text: "done"}))
	assert.Equal(t, "  On branch main", format(domain.TerminalLine{Kind: domain.LineOutput, Text: "On branch main"}))
}

func TestBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_| |")
	assert.NotContains(t, buf.String(), "\x1b[", "non-terminal writers get no escape codes")
}

func TestTerminalEffects(t *testing.T) {
	ctx := context.Background()
	sound := domain.Effect{StepID: "s", Effects: domain.Effects{SoundEvent: "chime"}}
	visual := domain.Effect{StepID: "s", Effects: domain.Effects{VisualEvent: "flash"}}

	var buf bytes.Buffer
	fx := tui.NewTerminalEffects(&buf, true, nil)
	require.NoError(t, fx.Play(ctx, sound))
	require.NoError(t, fx.Play(ctx, visual))
	assert.Equal(t, "\a", buf.String())

	buf.Reset()
	muted := tui.NewTerminalEffects(&buf, false, nil)
	require.NoError(t, muted.Play(ctx, sound))
	assert.Empty(t, buf.String())
}
