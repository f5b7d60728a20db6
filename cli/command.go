// Package cli holds the shared cobra conventions of the warden commands:
// standard persistent flags and flag-aware logger construction.
package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/grovetools/warden/logging"
)

// NewStandardCommand creates a new command with standard warden flags
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Standard flags for all warden commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to warden.yml config file")

	return cmd
}

// AddFilterFlags registers the session filtering flags shared by the query
// commands.
func AddFilterFlags(fs *pflag.FlagSet) {
	fs.String("grove", "", "Only sessions attributed to this grove id")
	fs.String("workspace", "", "Only sessions under this workspace path")
	fs.Bool("running", false, "Only sessions whose process is alive")
}

// GetLogger creates a logger based on command flags
func GetLogger(cmd *cobra.Command) *logrus.Logger {
	entry := logging.NewLogger("warden-cli")
	logger := entry.Logger

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

// GetConfigPath returns the --config flag value, or "" for the default.
func GetConfigPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}
