// Package reconcile re-derives session truth from agent logs and process
// state and merges it into the persistent registry. It is the only place
// where adapters, the matcher, and the store meet.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/warden/logging"
	"github.com/grovetools/warden/pkg/agent"
	"github.com/grovetools/warden/pkg/models"
	"github.com/grovetools/warden/pkg/store"
	"github.com/grovetools/warden/pkg/workspace"
)

// Stats summarizes one reconciliation pass for display.
type Stats struct {
	Added   int      `json:"added"`
	Updated int      `json:"updated"`
	Removed int      `json:"removed"`
	Errors  []string `json:"errors,omitempty"`
}

// Options tunes a reconciliation pass.
type Options struct {
	// StaleThreshold is the retention window for terminal records. Zero
	// means the store default.
	StaleThreshold time.Duration
}

// Run performs one full pass: detect sessions via every adapter, attach
// grove/worktree identity, merge into the store, then sweep stale records.
// A failing adapter is reported in Stats.Errors without aborting the others.
func Run(ctx context.Context, st *store.Store, adapters []agent.Adapter, groves []workspace.Grove, opts Options) Stats {
	logger := logging.NewLogger("reconcile").WithField("pass", uuid.NewString()[:8])

	var stats Stats
	var detected []models.AgentSession

	for _, ad := range adapters {
		if !ad.IsAvailable() {
			logger.WithField("agent", ad.Name()).Debug("Adapter not available, skipping")
			continue
		}
		sessions, err := ad.DetectSessions(ctx)
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", ad.Name(), err))
			logger.WithError(err).WithField("agent", ad.Name()).Warn("Session detection failed")
			continue
		}
		detected = append(detected, sessions...)
	}

	for i := range detected {
		sess := &detected[i]
		if grove := workspace.FindGroveForPath(sess.WorkspacePath, groves); grove != nil {
			sess.GroveID = grove.ID
			if wt := workspace.FindWorktreeForPath(sess.WorkspacePath, grove); wt != nil {
				sess.WorktreePath = wt.Path
			}
		}
	}

	if len(detected) > 0 {
		_, err := st.Update(func(doc *models.SessionDocument) error {
			for _, sess := range detected {
				existing := doc.Find(sess.SessionID)
				merged := merge(existing, sess)
				if existing == nil {
					doc.Sessions = append(doc.Sessions, merged)
					stats.Added++
				} else {
					*existing = merged
					stats.Updated++
				}
			}
			return nil
		})
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("store: %v", err))
			logger.WithError(err).Error("Failed to merge detected sessions")
		}
	}

	removed, err := st.CleanupStale(opts.StaleThreshold)
	if err != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("cleanup: %v", err))
	}
	stats.Removed += removed

	logger.WithFields(logrus.Fields{
		"added":   stats.Added,
		"updated": stats.Updated,
		"removed": stats.Removed,
		"errors":  len(stats.Errors),
	}).Info("Reconciliation pass complete")
	return stats
}

// merge folds a freshly detected session over the stored record, honoring
// the precedence rules between the two writers: liveness always wins, and
// beyond that the newer write (by timestamp) does.
func merge(existing *models.AgentSession, detected models.AgentSession) models.AgentSession {
	merged := detected
	if merged.LastUpdate.IsZero() {
		merged.LastUpdate = time.Now()
	}

	if existing != nil {
		merged.Metadata = existing.Metadata.Merge(detected.Metadata)

		hookNewer := existing.LastUpdate.After(merged.LastUpdate)
		switch {
		case hookNewer && detected.IsRunning:
			// An explicit transition is newer than anything in the log and
			// liveness does not contradict it; keep the hook's word.
			merged.Status = existing.Status
			merged.IsRunning = existing.IsRunning
			merged.LastUpdate = existing.LastUpdate
		case hookNewer:
			// The process is gone; the hook's status only survives as
			// closed, everything else collapses below.
			merged.LastUpdate = existing.LastUpdate
			if existing.Status == models.StatusClosed {
				merged.Status = models.StatusClosed
			}
		case !detected.IsRunning && existing.Status == models.StatusClosed:
			// An explicitly closed session never reopens as finished.
			merged.Status = models.StatusClosed
		}
	}

	merged.Normalize()
	return merged
}
