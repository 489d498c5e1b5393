package main

import (
	"fmt"
	"os"

	"github.com/aretw0/gitquest/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the story, resuming your saved session",
	Long: `Starts or resumes a lesson session. Progress is saved after every step, so
you can quit (exit, quit, :q or Ctrl+C) and pick up where you left off.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		act, _ := cmd.Flags().GetInt("act")
		fresh, _ := cmd.Flags().GetBool("fresh")
		headless, _ := cmd.Flags().GetBool("headless")
		if !cmd.Flags().Changed("headless") {
			headless = !term.IsTerminal(int(os.Stdin.Fd()))
		}

		return withApp(cmd, func(sc *cli.SignalContext, app *cli.App) error {
			err := cli.RunPlay(sc, app, cli.PlayOptions{
				SessionID: sessionID,
				ActID:     act,
				Fresh:     fresh,
				Headless:  headless,
			})
			if sc.Signal() == os.Interrupt {
				fmt.Println("\n>>> Interrupted. Progress saved.")
			}
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("session", "s", cli.DefaultSessionID, "Save slot to resume or create")
	playCmd.Flags().Int("act", 0, "Start this act instead of resuming")
	playCmd.Flags().Bool("fresh", false, "Discard the saved session first")
	playCmd.Flags().Bool("headless", false, "No banner, styling, or cinematic pauses (default when stdin is not a terminal)")
}
