package main

import (
	"github.com/aretw0/gitquest/internal/cli"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol server",
	Long: `Exposes lesson sessions as MCP tools so an agent can play or demo the story.

Supported transports:
- stdio (default): for local process integration.
- sse: Server-Sent Events over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		return withApp(cmd, func(sc *cli.SignalContext, app *cli.App) error {
			return cli.RunMCP(sc, app, transport, port)
		})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "", "Transport protocol: stdio or sse (default from config, stdio)")
	mcpCmd.Flags().Int("port", 0, "Port to listen on, sse only (default from config, 8081)")
}
