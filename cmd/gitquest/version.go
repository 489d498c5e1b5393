package main

import (
	"fmt"

	"github.com/aretw0/gitquest"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gitquest",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gitquest version %s\n", gitquest.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
