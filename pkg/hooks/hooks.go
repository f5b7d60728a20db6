// Package hooks applies explicit lifecycle transitions pushed by agent
// hooks. These writes are authoritative: a later detection pass may only
// override them when its own liveness check disagrees.
package hooks

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/warden/errors"
	"github.com/grovetools/warden/logging"
	"github.com/grovetools/warden/pkg/models"
	"github.com/grovetools/warden/pkg/store"
	"github.com/grovetools/warden/pkg/workspace"
)

// Result reports a hook invocation's outcome with a human-readable message
// suitable for the calling hook to display.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Handler writes single-session transitions directly into the store,
// bypassing the adapters.
type Handler struct {
	store  *store.Store
	groves []workspace.Grove
	logger *logrus.Entry
}

// New creates a Handler over the given store and grove directory. The grove
// list may be empty; sessions then record no grove identity.
func New(st *store.Store, groves []workspace.Grove) *Handler {
	return &Handler{
		store:  st,
		groves: groves,
		logger: logging.NewLogger("hooks"),
	}
}

// OnSessionStart creates or resets the record for a newly started session.
// Grove and worktree identity are resolved at call time from the session's
// working directory.
func (h *Handler) OnSessionStart(sessionID string, agentType models.AgentType, cwd string) Result {
	if sessionID == "" {
		return Result{Message: errors.HookInvalidArgs("session id is required").Error()}
	}
	if agentType == "" {
		return Result{Message: errors.HookInvalidArgs("agent type is required").Error()}
	}
	if cwd == "" || !filepath.IsAbs(cwd) {
		return Result{Message: errors.HookInvalidArgs(
			fmt.Sprintf("working directory must be an absolute path, got %q", cwd)).Error()}
	}

	sess := models.AgentSession{
		SessionID:     sessionID,
		AgentType:     agentType,
		WorkspacePath: cwd,
		Status:        models.StatusActive,
		IsRunning:     true,
		Metadata: models.Metadata{
			"first_seen": time.Now().Format(time.RFC3339),
		},
	}

	if grove := workspace.FindGroveForPath(cwd, h.groves); grove != nil {
		sess.GroveID = grove.ID
		if wt := workspace.FindWorktreeForPath(cwd, grove); wt != nil {
			sess.WorktreePath = wt.Path
		}
	}

	if err := h.store.AddSession(sess); err != nil {
		h.logger.WithError(err).WithField("session_id", sessionID).Error("Failed to record session start")
		return Result{Message: fmt.Sprintf("failed to record session start: %v", err)}
	}

	h.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"grove":      sess.GroveID,
		"cwd":        cwd,
	}).Info("Session started")
	return Result{OK: true, Message: fmt.Sprintf("session %s started", sessionID)}
}

// OnSessionIdle marks a session as idle without touching its liveness.
func (h *Handler) OnSessionIdle(sessionID string) Result {
	return h.setStatus(sessionID, models.StatusIdle)
}

// OnSessionAttention marks a session as waiting for human input without
// touching its liveness.
func (h *Handler) OnSessionAttention(sessionID string) Result {
	return h.setStatus(sessionID, models.StatusAttention)
}

// OnSessionEnd closes a session and records its process as gone.
func (h *Handler) OnSessionEnd(sessionID string) Result {
	if sessionID == "" {
		return Result{Message: errors.HookInvalidArgs("session id is required").Error()}
	}

	status := models.StatusClosed
	running := false
	sess, err := h.store.UpdateSession(sessionID, store.SessionPatch{
		Status:    &status,
		IsRunning: &running,
	})
	if err != nil {
		h.logger.WithError(err).WithField("session_id", sessionID).Error("Failed to record session end")
		return Result{Message: fmt.Sprintf("failed to record session end: %v", err)}
	}
	if sess == nil {
		return Result{Message: fmt.Sprintf("unknown session %s", sessionID)}
	}

	h.logger.WithField("session_id", sessionID).Info("Session ended")
	return Result{OK: true, Message: fmt.Sprintf("session %s closed", sessionID)}
}

func (h *Handler) setStatus(sessionID string, status models.Status) Result {
	if sessionID == "" {
		return Result{Message: errors.HookInvalidArgs("session id is required").Error()}
	}

	sess, err := h.store.UpdateSession(sessionID, store.SessionPatch{Status: &status})
	if err != nil {
		h.logger.WithError(err).WithField("session_id", sessionID).Error("Failed to record session transition")
		return Result{Message: fmt.Sprintf("failed to record transition: %v", err)}
	}
	if sess == nil {
		return Result{Message: fmt.Sprintf("unknown session %s", sessionID)}
	}

	h.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"status":     status,
	}).Debug("Session transition")
	return Result{OK: true, Message: fmt.Sprintf("session %s is %s", sessionID, status)}
}
