package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/mana-tomb/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "manatomb %s\n", version.GetVersion())
		if rev := version.Revision(); rev != "" {
			fmt.Fprintf(out, "revision %s\n", rev)
		}
	},
}
