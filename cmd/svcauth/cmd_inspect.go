package main

import (
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	clilib "github.com/aussiebroadwan/svcauth/internal/cli"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [token]",
	Short: "Decode a token without verifying it",
	Long: `Decode a JWT and print its header, claims, and remaining validity.

The token comes from the argument, or from stdin when no argument is
given. The signature is not checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var token string
		if len(args) == 1 {
			token = args[0]
		} else {
			data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 1<<20))
			if err != nil {
				return clilib.Errorf(clilib.ExitGeneralError, "read token from stdin: %v", err)
			}
			token = strings.TrimSpace(string(data))
		}
		if token == "" {
			return clilib.NewError("no token given", clilib.ExitGeneralError)
		}

		return clilib.Inspect(cmd.OutOrStdout(), token, time.Now())
	},
}
