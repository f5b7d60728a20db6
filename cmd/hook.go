package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovetools/warden/cli"
	"github.com/grovetools/warden/pkg/hooks"
	"github.com/grovetools/warden/pkg/models"
)

// NewHookCmd creates the `hook` command group, the entry points agent
// lifecycle hooks call into.
func NewHookCmd() *cobra.Command {
	cmd := cli.NewStandardCommand(
		"hook",
		"Record an agent lifecycle transition",
	)
	cmd.Long = `Record an explicit session transition pushed by an agent hook.

These transitions are authoritative: they override the log-derived
classification until the next reconciliation pass observes the process
directly.`

	cmd.AddCommand(newHookStartCmd())
	cmd.AddCommand(newHookIdleCmd())
	cmd.AddCommand(newHookAttentionCmd())
	cmd.AddCommand(newHookEndCmd())
	return cmd
}

func newHookStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <session-id>",
		Short: "Record that a session started",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().String("cwd", "", "Absolute working directory of the session (required)")
	cmd.Flags().String("agent", string(models.AgentClaude), "Agent type that owns the session")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		cwd, _ := cmd.Flags().GetString("cwd")
		agentType, _ := cmd.Flags().GetString("agent")

		handler := hooks.New(rt.store, rt.groves)
		return emitResult(cmd, handler.OnSessionStart(args[0], models.AgentType(agentType), cwd))
	}
	return cmd
}

func newHookIdleCmd() *cobra.Command {
	return newTransitionCmd("idle", "Record that a session went idle",
		func(h *hooks.Handler, id string) hooks.Result { return h.OnSessionIdle(id) })
}

func newHookAttentionCmd() *cobra.Command {
	return newTransitionCmd("attention", "Record that a session needs attention",
		func(h *hooks.Handler, id string) hooks.Result { return h.OnSessionAttention(id) })
}

func newHookEndCmd() *cobra.Command {
	return newTransitionCmd("end", "Record that a session ended",
		func(h *hooks.Handler, id string) hooks.Result { return h.OnSessionEnd(id) })
}

func newTransitionCmd(use, short string, apply func(*hooks.Handler, string) hooks.Result) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <session-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		return emitResult(cmd, apply(hooks.New(rt.store, rt.groves), args[0]))
	}
	return cmd
}

func emitResult(cmd *cobra.Command, res hooks.Result) error {
	fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	if !res.OK {
		return fmt.Errorf("%s", res.Message)
	}
	return nil
}
