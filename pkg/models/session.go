// Package models defines the data types shared across the warden session
// registry: the agent session record, its status machine, and the persisted
// document envelope.
package models

import "time"

// AgentType identifies which adapter produced and owns a session record.
type AgentType string

const (
	// AgentClaude is the built-in adapter for Claude Code transcripts.
	AgentClaude AgentType = "claude"
)

// Status is the classification of a session at the last observation.
type Status string

const (
	StatusActive    Status = "active"
	StatusIdle      Status = "idle"
	StatusAttention Status = "attention"
	StatusFinished  Status = "finished"
	StatusClosed    Status = "closed"
)

// IsTerminal reports whether the status describes a session that is no
// longer running.
func (s Status) IsTerminal() bool {
	return s == StatusFinished || s == StatusClosed
}

// IsLive reports whether the status describes an in-flight session.
func (s Status) IsLive() bool {
	return s == StatusActive || s == StatusIdle || s == StatusAttention
}

// Metadata holds informational session attributes (branch, first-seen
// timestamp, last log activity). It never drives status logic.
type Metadata map[string]interface{}

// GetString returns the string value for key, or "" if absent or not a string.
func (m Metadata) GetString(key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// Merge overlays other onto a copy of m and returns the result.
func (m Metadata) Merge(other Metadata) Metadata {
	if len(other) == 0 {
		return m
	}
	merged := make(Metadata, len(m)+len(other))
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// AgentSession is one observed or recorded run of an external coding agent.
type AgentSession struct {
	// SessionID is assigned by the agent tool itself and is the primary key.
	SessionID string    `json:"session_id"`
	AgentType AgentType `json:"agent_type"`

	// GroveID is empty until the session's working directory has been
	// resolved to a known grove. A session may legitimately never resolve.
	GroveID       string `json:"grove_id,omitempty"`
	WorkspacePath string `json:"workspace_path,omitempty"`
	WorktreePath  string `json:"worktree_path,omitempty"`

	Status Status `json:"status"`

	// IsRunning is derived from OS process inspection, independently of the
	// log heuristic, and is authoritative for forcing terminal states.
	IsRunning bool `json:"is_running"`

	LastUpdate time.Time `json:"last_update"`
	Metadata   Metadata  `json:"metadata,omitempty"`
}

// Normalize enforces the liveness invariant: a session that is not running
// may not carry a live status. Closed sessions stay closed; everything else
// collapses to finished.
func (s *AgentSession) Normalize() {
	if !s.IsRunning && s.Status.IsLive() {
		s.Status = StatusFinished
	}
}

// DocumentVersion tags the persisted document layout.
const DocumentVersion = "1"

// SessionDocument is the unit of durable storage: the full set of session
// records plus a version tag. It is read in full, mutated, and written in
// full.
type SessionDocument struct {
	Sessions    []AgentSession `json:"sessions"`
	Version     string         `json:"version"`
	LastUpdated time.Time      `json:"last_updated"`
}

// NewSessionDocument returns an empty document at the current version.
func NewSessionDocument() *SessionDocument {
	return &SessionDocument{Version: DocumentVersion}
}

// Find returns a pointer to the session with the given id, or nil.
func (d *SessionDocument) Find(sessionID string) *AgentSession {
	for i := range d.Sessions {
		if d.Sessions[i].SessionID == sessionID {
			return &d.Sessions[i]
		}
	}
	return nil
}
