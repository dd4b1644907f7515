package main

import (
	"time"

	"github.com/spf13/cobra"

	clilib "github.com/aussiebroadwan/svcauth/internal/cli"
)

var (
	accessAudience string
	accessScopes   []string
)

var accessTokenCmd = &cobra.Command{
	Use:   "access-token",
	Short: "Print a bearer token for calling a service",
	Long: `Obtain an access token for the selected profile and print it to stdout.

Profiles without scopes sign the token locally, so --audience names the
service the token is for. Scoped profiles exchange a signed assertion at
the token endpoint and --audience is not used.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, profile, err := resolveProfile()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("scopes") {
			profile.Scopes = accessScopes
		}
		if !profile.RemoteMode() && accessAudience == "" {
			return clilib.NewError("an --audience is required when tokens are signed locally", clilib.ExitConfigError)
		}

		creds, err := clilib.BuildCredentials(profile)
		if err != nil {
			return err
		}

		st, err := openStore(profile)
		if err != nil {
			return err
		}
		if st != nil {
			defer st.Close()
		}

		tok, err := clilib.FetchAccessToken(cmd.Context(), creds, profile.RemoteMode(), accessAudience, clilib.FetchOptions{
			Store:  st,
			Key:    clilib.StoreKey(name, "access", profile.Scopes, accessAudience),
			Window: time.Duration(profile.ExpiryWindow),
		})
		if err != nil {
			return clilib.Errorf(clilib.ExitExchangeError, "fetch access token: %v", err)
		}

		clilib.PrintToken(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	accessTokenCmd.Flags().StringVarP(&accessAudience, "audience", "a", "", "Target service URI for locally signed tokens")
	accessTokenCmd.Flags().StringSliceVar(&accessScopes, "scopes", nil, "Override the profile's scopes")
}
