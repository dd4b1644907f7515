package main

import (
	"github.com/spf13/cobra"

	clilib "github.com/aussiebroadwan/svcauth/internal/cli"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version, commit hash, and build date of svcauth.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if versionJSON {
			clilib.PrintVersionJSON(cmd.OutOrStdout(), version, commit, date)
		} else {
			clilib.PrintVersion(cmd.OutOrStdout(), version, commit, date)
		}
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Output version information as JSON")
}
