package main

import (
	"fmt"
	"os"

	"github.com/aretw0/gitquest/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var puzzleCmd = &cobra.Command{
	Use:       "puzzle <merge|rebase|cherry-pick> [level-id]",
	Short:     "Play a merge, rebase, or cherry-pick mini-game",
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{cli.PuzzleMerge, cli.PuzzleRebase, cli.PuzzleCherryPick},
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.PuzzleOptions{Kind: args[0], Headless: !term.IsTerminal(int(os.Stdin.Fd()))}
		if len(args) > 1 {
			opts.LevelID = args[1]
		}
		return withApp(cmd, func(sc *cli.SignalContext, app *cli.App) error {
			solved, err := cli.RunPuzzle(sc, app, opts)
			if err != nil {
				return err
			}
			if !solved {
				fmt.Println(">>> Puzzle left unsolved.")
			}
			return nil
		})
	},
}

var bossCmd = &cobra.Command{
	Use:   "boss [level-id]",
	Short: "Fight a boss: resolve every conflict before the clock runs out",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.PuzzleOptions{Headless: !term.IsTerminal(int(os.Stdin.Fd()))}
		if len(args) > 0 {
			opts.LevelID = args[0]
		}
		return withApp(cmd, func(sc *cli.SignalContext, app *cli.App) error {
			_, err := cli.RunBoss(sc, app, opts)
			return err
		})
	},
}

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List the puzzle and boss levels",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(_ *cli.SignalContext, app *cli.App) error {
			return cli.ListLevels(app, os.Stdout)
		})
	},
}

func init() {
	rootCmd.AddCommand(puzzleCmd)
	rootCmd.AddCommand(bossCmd)
	rootCmd.AddCommand(levelsCmd)
}
