package main

import (
	"os"

	"github.com/aretw0/gitquest/internal/cli"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export an act as a Mermaid flowchart",
	Long:  `Outputs a Mermaid diagram (graph TD) of the steps of an act. With --session the saved progress is highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		act, _ := cmd.Flags().GetInt("act")
		sessionID, _ := cmd.Flags().GetString("session")
		return withApp(cmd, func(sc *cli.SignalContext, app *cli.App) error {
			return cli.RunGraph(sc, app, cli.GraphOptions{ActID: act, SessionID: sessionID}, os.Stdout)
		})
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Int("act", 1, "Act to export")
	graphCmd.Flags().StringP("session", "s", "", "Overlay the progress of this session")
}
