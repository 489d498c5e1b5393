package main

import (
	"os"

	"github.com/aretw0/gitquest/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every act and level for configuration defects",
	Long: `Loads each act of the content directory (or the built-in story) and reports
dangling step references, unreachable steps, payload mismatches, invalid patterns,
and unsolvable puzzle levels.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunValidate(globalOptions(cmd), os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
