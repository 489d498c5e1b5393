package main

import (
	"fmt"
	"os"

	"github.com/aretw0/gitquest/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gitquest",
	Short: "GitQuest teaches git through a story played in your terminal",
	Long: `GitQuest is an interactive git tutorial. Each act is a sequence of dialog,
terminal challenges, editor fixes, and concept cards, with merge puzzles and a
timed boss battle against the Merge Monster.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to gitquest.yaml (default ./gitquest.yaml when present)")
	flags.String("content", "", "Directory with acts/*.yaml and levels.yaml (default: built-in story)")
	flags.String("data-dir", "", "Directory for saved sessions and settings (default .gitquest)")
	flags.String("redis", "", "Redis address for sessions and settings instead of the data dir")
	flags.Bool("debug", false, "Log engine events to stderr")
}

func globalOptions(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	var opts cli.Options
	opts.ConfigPath, _ = flags.GetString("config")
	opts.ContentDir, _ = flags.GetString("content")
	opts.DataDir, _ = flags.GetString("data-dir")
	opts.RedisAddr, _ = flags.GetString("redis")
	opts.Debug, _ = flags.GetBool("debug")
	return opts
}

// withApp wires the application, runs fn under a signal-aware context, and closes the stores.
func withApp(cmd *cobra.Command, fn func(sc *cli.SignalContext, app *cli.App) error) error {
	sc := cli.NewSignalContext(cmd.Context())
	defer sc.Cancel()

	app, err := cli.Setup(sc, globalOptions(cmd))
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(sc, app)
}
