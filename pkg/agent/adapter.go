// Package agent defines the per-agent-type detection strategy. An adapter
// knows how to find an agent's on-disk event logs, parse them into session
// records, and decide whether each session's process is still alive.
package agent

import (
	"context"

	"github.com/grovetools/warden/pkg/models"
)

// Adapter discovers sessions for one agent type.
//
// Detection is point-in-time: results may be stale between calls, and
// absence is a valid outcome, never an error. VerifySession and
// SessionStatus always reflect current on-disk/process truth, never cached
// state.
type Adapter interface {
	// Name identifies the agent type this adapter owns.
	Name() models.AgentType

	// IsAvailable reports whether the agent's data directory exists on this
	// machine at all.
	IsAvailable() bool

	// DetectSessions scans the agent's logs and process state and returns
	// one candidate session per discovered run, with grove and worktree
	// identity left unresolved.
	DetectSessions(ctx context.Context) ([]models.AgentSession, error)

	// VerifySession re-detects and returns the session with the given id,
	// or nil when it no longer exists.
	VerifySession(ctx context.Context, sessionID string) (*models.AgentSession, error)

	// SessionStatus re-detects and returns the current classification of
	// the session, or "" when it is unknown.
	SessionStatus(ctx context.Context, sessionID string) (models.Status, error)
}
