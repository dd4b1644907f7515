package main

import (
	"os"

	clilib "github.com/aussiebroadwan/svcauth/internal/cli"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(int(clilib.PrintError(os.Stderr, err)))
	}
}
