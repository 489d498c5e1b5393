package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/gitquest/internal/cli"
	"github.com/aretw0/gitquest/pkg/settings"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change player settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(_ *cli.SignalContext, app *cli.App) error {
			return cli.ShowSettings(app, os.Stdout)
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key>=<value>...",
	Short: "Change settings (keys: " + strings.Join(settings.Keys, ", ") + ")",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs := make(map[string]string, len(args))
		for _, arg := range args {
			k, v, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("expected key=value, got %q", arg)
			}
			pairs[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
		return withApp(cmd, func(sc *cli.SignalContext, app *cli.App) error {
			return cli.SetSettings(sc, app, pairs, os.Stdout)
		})
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(sc *cli.SignalContext, app *cli.App) error {
			return cli.ResetSettings(sc, app, os.Stdout)
		})
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
}
