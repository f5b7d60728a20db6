// Package testutil provides fixture helpers shared by warden's tests:
// transcript builders, a scripted process table, and grove directory
// scaffolding.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/grovetools/warden/pkg/workspace"
)

// Event is one transcript line under construction.
type Event map[string]interface{}

// IdentityEvent returns the transcript line that seeds a session's identity.
func IdentityEvent(sessionID, cwd string, ts time.Time) Event {
	return Event{
		"sessionId": sessionID,
		"cwd":       cwd,
		"timestamp": ts.Format(time.RFC3339),
	}
}

// TypedEvent returns a transcript line carrying only a type and timestamp.
func TypedEvent(eventType string, ts time.Time) Event {
	return Event{
		"type":      eventType,
		"timestamp": ts.Format(time.RFC3339),
	}
}

// WriteTranscript writes a session log under root/projects/project and
// returns its path. Events marshal one per line; a raw string event is
// written verbatim, which lets tests inject malformed lines.
func WriteTranscript(t *testing.T, root, project, sessionID string, events []interface{}) string {
	t.Helper()

	dir := filepath.Join(root, "projects", project)
	require.NoError(t, os.MkdirAll(dir, 0755))

	path := filepath.Join(dir, sessionID+".jsonl")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	for _, ev := range events {
		switch v := ev.(type) {
		case string:
			_, err = fmt.Fprintln(f, v)
		default:
			var data []byte
			data, err = json.Marshal(v)
			require.NoError(t, err)
			_, err = fmt.Fprintln(f, string(data))
		}
		require.NoError(t, err)
	}
	return path
}

// FakeProcessTable is a command.Executor whose pgrep queries are answered
// from a fixed set of "running" session ids instead of the real process
// table.
type FakeProcessTable struct {
	Running map[string]bool
}

// NewFakeProcessTable builds a process table containing the given ids.
func NewFakeProcessTable(ids ...string) *FakeProcessTable {
	running := make(map[string]bool, len(ids))
	for _, id := range ids {
		running[id] = true
	}
	return &FakeProcessTable{Running: running}
}

func (f *FakeProcessTable) answer(name string, args ...string) *exec.Cmd {
	if name == "pgrep" && len(args) > 0 && f.Running[args[len(args)-1]] {
		return exec.Command("true")
	}
	return exec.Command("false")
}

// Command implements command.Executor.
func (f *FakeProcessTable) Command(name string, args ...string) *exec.Cmd {
	return f.answer(name, args...)
}

// CommandContext implements command.Executor.
func (f *FakeProcessTable) CommandContext(_ context.Context, name string, args ...string) *exec.Cmd {
	return f.answer(name, args...)
}

// SingleGrove returns a directory with one grove rooted at path, with a main
// worktree at the root and a feature worktree under .grove-worktrees.
func SingleGrove(id, path string) []workspace.Grove {
	return []workspace.Grove{
		{
			ID:   id,
			Name: id,
			Path: path,
			Worktrees: []workspace.Worktree{
				{Path: path, Repo: id, IsMain: true},
				{Path: filepath.Join(path, ".grove-worktrees", "feature"), Repo: id, Branch: "feature"},
			},
		},
	}
}
