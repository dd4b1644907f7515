package main

import (
	"time"

	"github.com/spf13/cobra"

	clilib "github.com/aussiebroadwan/svcauth/internal/cli"
)

var identityAudience string

var identityTokenCmd = &cobra.Command{
	Use:   "identity-token",
	Short: "Print an identity token for an audience",
	Long: `Obtain an identity token for the selected profile and print it to stdout.

Identity tokens always come from the token endpoint, so the profile
needs a token_url (or a key file that carries one).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, profile, err := resolveProfile()
		if err != nil {
			return err
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

		tok, err := clilib.FetchIdentityToken(cmd.Context(), creds, identityAudience, clilib.FetchOptions{
			Store:  st,
			Key:    clilib.StoreKey(name, "identity", nil, identityAudience),
			Window: time.Duration(profile.ExpiryWindow),
		})
		if err != nil {
			return clilib.Errorf(clilib.ExitExchangeError, "fetch identity token: %v", err)
		}

		clilib.PrintToken(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	identityTokenCmd.Flags().StringVarP(&identityAudience, "audience", "a", "", "Audience the token asserts identity to")
	_ = identityTokenCmd.MarkFlagRequired("audience")
}
