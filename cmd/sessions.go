package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/grovetools/warden/cli"
	"github.com/grovetools/warden/pkg/models"
)

// NewSessionsCmd creates the `sessions` command.
func NewSessionsCmd() *cobra.Command {
	cmd := cli.NewStandardCommand(
		"sessions",
		"List tracked agent sessions",
	)
	cli.AddFilterFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}

		groveID, _ := cmd.Flags().GetString("grove")
		workspacePath, _ := cmd.Flags().GetString("workspace")
		runningOnly, _ := cmd.Flags().GetBool("running")

		var sessions []models.AgentSession
		switch {
		case groveID != "":
			sessions, err = rt.store.GetSessionsByGrove(groveID)
		case workspacePath != "":
			sessions, err = rt.store.GetSessionsByWorkspace(workspacePath)
		case runningOnly:
			sessions, err = rt.store.AllRunning()
		default:
			var doc *models.SessionDocument
			doc, err = rt.store.Read()
			if doc != nil {
				sessions = doc.Sessions
			}
		}
		if err != nil {
			return err
		}
		if runningOnly && (groveID != "" || workspacePath != "") {
			filtered := sessions[:0]
			for _, s := range sessions {
				if s.IsRunning {
					filtered = append(filtered, s)
				}
			}
			sessions = filtered
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			data, err := json.MarshalIndent(sessions, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SESSION\tAGENT\tGROVE\tSTATUS\tRUNNING\tLAST UPDATE")
		for _, s := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n",
				s.SessionID, s.AgentType, s.GroveID, s.Status, s.IsRunning,
				s.LastUpdate.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	}
	return cmd
}
