package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovetools/warden/cli"
	"github.com/grovetools/warden/pkg/reconcile"
)

// NewReconcileCmd creates the `reconcile` command.
func NewReconcileCmd() *cobra.Command {
	cmd := cli.NewStandardCommand(
		"reconcile",
		"Re-derive session truth from agent logs and the process table",
	)
	cmd.Long = `Run one reconciliation pass: scan every available agent's logs, check
process liveness, attach grove and worktree identity, merge the result into
the session registry, and prune stale terminal records.

With --watch, keep reconciling on an interval and whenever an agent log
directory changes.`

	cmd.Flags().Bool("watch", false, "Keep reconciling until interrupted")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		opts := reconcile.Options{StaleThreshold: rt.cfg.StaleThreshold()}

		watch, _ := cmd.Flags().GetBool("watch")
		if watch {
			cli.GetLogger(cmd).WithField("interval", rt.cfg.PollInterval()).
				Info("Reconciling until interrupted")
			runner := reconcile.NewRunner(rt.store, rt.adapters, rt.groves, rt.cfg.PollInterval())
			runner.Options = opts
			runner.WatchPaths = rt.watchPaths()
			return runner.Run(cmd.Context())
		}

		stats := reconcile.Run(cmd.Context(), rt.store, rt.adapters, rt.groves, opts)

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			data, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "added %d, updated %d, removed %d\n",
				stats.Added, stats.Updated, stats.Removed)
			for _, e := range stats.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", e)
			}
		}

		if len(stats.Errors) > 0 {
			return fmt.Errorf("reconciliation finished with %d error(s)", len(stats.Errors))
		}
		return nil
	}
	return cmd
}
