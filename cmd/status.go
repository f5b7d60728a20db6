package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovetools/warden/cli"
)

// NewStatusCmd creates the `status` command, the aggregate counts consumed
// by status-indicator UIs.
func NewStatusCmd() *cobra.Command {
	cmd := cli.NewStandardCommand(
		"status",
		"Show aggregate session counts",
	)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}

		counts, err := rt.store.StatusCounts()
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			data, err := json.MarshalIndent(counts, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "active %d, idle %d, attention %d\n",
			counts.Active, counts.Idle, counts.Attention)
		return nil
	}
	return cmd
}
