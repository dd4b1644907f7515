package main

import (
	"github.com/spf13/cobra"

	clilib "github.com/aussiebroadwan/svcauth/internal/cli"
	"github.com/aussiebroadwan/svcauth/pkg/clockx"
	"github.com/aussiebroadwan/svcauth/pkg/slogx"
	"github.com/aussiebroadwan/svcauth/pkg/tokenstore"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig   string
	flagProfile  string
	flagLogLevel string
	flagNoCache  bool
)

var rootCmd = &cobra.Command{
	Use:   "svcauth",
	Short: "Service account tokens for machine-to-machine calls",
	Long: `svcauth turns a service account key into bearer tokens.

Profiles in the config file name a key file and how its tokens are
obtained: signed locally with the key, or exchanged at the issuer's
token endpoint. Exchanged tokens can be kept in a SQLite or Redis
store so repeated invocations reuse them until they near expiry.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger := slogx.New(slogx.Config{
			Service: "svcauth",
			Version: version,
			Env:     "cli",
			Level:   flagLogLevel,
			Format:  "text",
			Writer:  cmd.ErrOrStderr(),
		})
		cmd.SetContext(slogx.WithContext(cmd.Context(), logger))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to the config file")
	rootCmd.PersistentFlags().StringVarP(&flagProfile, "profile", "p", "", "Profile name (defaults to $"+clilib.EnvProfile+")")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the token store for this invocation")

	rootCmd.AddCommand(accessTokenCmd)
	rootCmd.AddCommand(identityTokenCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveProfile loads the config file and picks the profile for this run.
func resolveProfile() (string, clilib.Profile, error) {
	file, err := clilib.LoadFile(flagConfig)
	if err != nil {
		return "", clilib.Profile{}, err
	}
	return file.Resolve(flagProfile)
}

// openStore opens the profile's token store, or nothing when the profile
// has none or --no-cache is set.
func openStore(p clilib.Profile) (tokenstore.Store, error) {
	if flagNoCache {
		return nil, nil
	}
	return clilib.OpenStore(p.Store, clockx.System())
}
