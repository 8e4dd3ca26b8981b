package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lucasew/mdpipe/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the version",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
