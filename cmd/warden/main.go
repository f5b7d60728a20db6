package main

import (
	"os"

	"github.com/grovetools/warden/cli"
	"github.com/grovetools/warden/cmd"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"warden",
		"Track external coding-agent sessions across groves",
	)

	// Add subcommands
	rootCmd.AddCommand(cmd.NewHookCmd())
	rootCmd.AddCommand(cmd.NewReconcileCmd())
	rootCmd.AddCommand(cmd.NewSessionsCmd())
	rootCmd.AddCommand(cmd.NewStatusCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
