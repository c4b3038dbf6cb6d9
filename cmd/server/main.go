// Package main implements the entry point for the image-recognition mock API.
// The binary serves the HTTP API by default and carries a few operator
// subcommands: database migrations, API key hashing and token minting.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newRootCommand assembles the command tree. Running the root command
// without a subcommand starts the server.
func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "irmock-api",
		Short: "Mock image-recognition task API",
		Long: `irmock-api simulates an image-recognition backend: clients submit
images against predefined tasks and poll for results that complete after a
configurable delay.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to a config file (default: ./config.yaml if present)")

	root.AddCommand(
		newServeCommand(&configPath),
		newMigrateCommand(&configPath),
		newKeygenCommand(),
		newTokenCommand(&configPath),
	)
	return root
}
