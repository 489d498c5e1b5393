package main

import (
	"github.com/aretw0/gitquest/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves sessions, act graphs, and settings as a JSON API with server-sent diff
streams on /sessions/{id}/events and Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		return withApp(cmd, func(sc *cli.SignalContext, app *cli.App) error {
			return cli.RunServe(sc, app, addr)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
}
