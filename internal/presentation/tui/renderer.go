package tui

import (
	"github.com/aretw0/gitquest/pkg/runner"
	"github.com/aretw0/gitquest/pkg/settings"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a markdown renderer for dialog and concept cards styled
// for theme. Auto detects the terminal background.
func NewRenderer(theme settings.Theme) (runner.ContentRenderer, error) {
	style := glamour.WithAutoStyle()
	switch theme {
	case settings.ThemeDark:
		style = glamour.WithStandardStyle("dark")
	case settings.ThemeLight:
		style = glamour.WithStandardStyle("light")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(80))
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}
