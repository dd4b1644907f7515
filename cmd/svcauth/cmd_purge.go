package main

import (
	"fmt"

	"github.com/spf13/cobra"

	clilib "github.com/aussiebroadwan/svcauth/internal/cli"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove expired tokens from the profile's store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, profile, err := resolveProfile()
		if err != nil {
			return err
		}
		if profile.Store == "" {
			return clilib.NewError("the selected profile has no token store", clilib.ExitConfigError)
		}

		st, err := clilib.OpenStore(profile.Store, nil)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.PurgeExpired(cmd.Context())
		if err != nil {
			return clilib.Errorf(clilib.ExitStoreError, "purge expired tokens: %v", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired token(s)\n", n)
		return nil
	},
}
