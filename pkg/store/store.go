// Package store persists the warden session registry as a single versioned
// JSON document with read-modify-write update semantics. Every mutation
// rewrites the whole document; the store is not append-only.
//
// Two independent writers touch the same document: the reconciliation driver
// and the hook handlers, possibly from separate processes. Update therefore
// serializes through an in-process mutex plus a cross-process lock file, so
// a concurrent hook transition cannot be silently lost to a detection pass.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/warden/errors"
	"github.com/grovetools/warden/logging"
	"github.com/grovetools/warden/pkg/models"
)

// DefaultStaleThreshold is how old a terminal session record may grow before
// the cleanup sweep removes it.
const DefaultStaleThreshold = 60 * time.Minute

const defaultLockTimeout = 5 * time.Second

// Store owns one persisted session document. Construct one per invocation
// from a configured path; there is no process-wide singleton.
type Store struct {
	path        string
	mu          sync.Mutex
	lockTimeout time.Duration
	logger      *logrus.Entry
}

// New creates a Store backed by the JSON document at path. The file is not
// created until the first write.
func New(path string) *Store {
	return &Store{
		path:        path,
		lockTimeout: defaultLockTimeout,
		logger:      logging.NewLogger("store"),
	}
}

// Path returns the document path this store is bound to.
func (s *Store) Path() string {
	return s.path
}

// Read loads the full document. A missing file yields an empty document. A
// corrupt file also yields an empty document so that a damaged store heals
// on the next write instead of wedging every caller.
func (s *Store) Read() (*models.SessionDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.NewSessionDocument(), nil
		}
		return nil, errors.StoreReadFailed(s.path, err)
	}

	var doc models.SessionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.WithError(err).WithField("path", s.path).
			Warn("Session store is corrupt, starting from an empty document")
		return models.NewSessionDocument(), nil
	}
	if doc.Version == "" {
		doc.Version = models.DocumentVersion
	}
	return &doc, nil
}

// Write persists the full document with pretty-printed indentation, going
// through a temp file and rename so readers never observe a partial write.
func (s *Store) Write(doc *models.SessionDocument) error {
	if doc.Version == "" {
		doc.Version = models.DocumentVersion
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.StoreWriteFailed(s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.StoreWriteFailed(s.path, err)
	}

	tmp, err := os.CreateTemp(dir, ".sessions-*.json")
	if err != nil {
		return errors.StoreWriteFailed(s.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.StoreWriteFailed(s.path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.StoreWriteFailed(s.path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return errors.StoreWriteFailed(s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return errors.StoreWriteFailed(s.path, err)
	}
	return nil
}

// withLock runs fn over the current document under both the in-process
// mutex and the cross-process lock file, persisting only when fn reports a
// change.
func (s *Store) withLock(fn func(doc *models.SessionDocument) (bool, error)) (*models.SessionDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	release, err := acquireLock(s.path+".lock", s.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	doc, err := s.Read()
	if err != nil {
		return nil, err
	}

	changed, err := fn(doc)
	if err != nil {
		return nil, err
	}
	if !changed {
		return doc, nil
	}

	doc.LastUpdated = time.Now()
	if err := s.Write(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Update applies mutate atomically: exclusive access is held for the whole
// read-mutate-write cycle and the result is always persisted.
func (s *Store) Update(mutate func(doc *models.SessionDocument) error) (*models.SessionDocument, error) {
	return s.withLock(func(doc *models.SessionDocument) (bool, error) {
		if err := mutate(doc); err != nil {
			return false, err
		}
		return true, nil
	})
}

// AddSession upserts by session id: an existing record with the same id is
// replaced, never duplicated. A supplied LastUpdate is honored; a zero one
// is stamped with the current time.
func (s *Store) AddSession(sess models.AgentSession) error {
	if sess.LastUpdate.IsZero() {
		sess.LastUpdate = time.Now()
	}
	sess.Normalize()

	_, err := s.Update(func(doc *models.SessionDocument) error {
		if existing := doc.Find(sess.SessionID); existing != nil {
			*existing = sess
			return nil
		}
		doc.Sessions = append(doc.Sessions, sess)
		return nil
	})
	return err
}

// SessionPatch is a partial update of a session record. Nil fields are left
// untouched; Metadata entries are merged over the existing ones.
type SessionPatch struct {
	Status        *models.Status
	IsRunning     *bool
	GroveID       *string
	WorkspacePath *string
	WorktreePath  *string
	Metadata      models.Metadata
}

// UpdateSession applies a partial patch and refreshes LastUpdate. An absent
// id is a caller-visible miss: the result is (nil, nil) and the store is
// left untouched.
func (s *Store) UpdateSession(sessionID string, patch SessionPatch) (*models.AgentSession, error) {
	var updated *models.AgentSession

	_, err := s.withLock(func(doc *models.SessionDocument) (bool, error) {
		sess := doc.Find(sessionID)
		if sess == nil {
			return false, nil
		}

		if patch.Status != nil {
			sess.Status = *patch.Status
		}
		if patch.IsRunning != nil {
			sess.IsRunning = *patch.IsRunning
		}
		if patch.GroveID != nil {
			sess.GroveID = *patch.GroveID
		}
		if patch.WorkspacePath != nil {
			sess.WorkspacePath = *patch.WorkspacePath
		}
		if patch.WorktreePath != nil {
			sess.WorktreePath = *patch.WorktreePath
		}
		if len(patch.Metadata) > 0 {
			sess.Metadata = sess.Metadata.Merge(patch.Metadata)
		}
		sess.LastUpdate = time.Now()
		sess.Normalize()

		copied := *sess
		updated = &copied
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveSession deletes a record by id, reporting whether it existed.
func (s *Store) RemoveSession(sessionID string) (bool, error) {
	removed := false
	_, err := s.withLock(func(doc *models.SessionDocument) (bool, error) {
		for i := range doc.Sessions {
			if doc.Sessions[i].SessionID == sessionID {
				doc.Sessions = append(doc.Sessions[:i], doc.Sessions[i+1:]...)
				removed = true
				return true, nil
			}
		}
		return false, nil
	})
	return removed, err
}

// GetSession returns the record for id, or nil when unknown.
func (s *Store) GetSession(sessionID string) (*models.AgentSession, error) {
	doc, err := s.Read()
	if err != nil {
		return nil, err
	}
	if sess := doc.Find(sessionID); sess != nil {
		copied := *sess
		return &copied, nil
	}
	return nil, nil
}

// GetSessionsByGrove returns all sessions attributed to a grove.
func (s *Store) GetSessionsByGrove(groveID string) ([]models.AgentSession, error) {
	doc, err := s.Read()
	if err != nil {
		return nil, err
	}
	var out []models.AgentSession
	for _, sess := range doc.Sessions {
		if sess.GroveID == groveID {
			out = append(out, sess)
		}
	}
	return out, nil
}

// GetSessionsByWorkspace returns all sessions whose working directory
// resolved to the given workspace path.
func (s *Store) GetSessionsByWorkspace(workspacePath string) ([]models.AgentSession, error) {
	doc, err := s.Read()
	if err != nil {
		return nil, err
	}
	var out []models.AgentSession
	for _, sess := range doc.Sessions {
		if sess.WorkspacePath == workspacePath {
			out = append(out, sess)
		}
	}
	return out, nil
}

// AllRunning returns every session whose process was alive at the last
// observation.
func (s *Store) AllRunning() ([]models.AgentSession, error) {
	doc, err := s.Read()
	if err != nil {
		return nil, err
	}
	var out []models.AgentSession
	for _, sess := range doc.Sessions {
		if sess.IsRunning {
			out = append(out, sess)
		}
	}
	return out, nil
}

// Counts aggregates the live-status classification across the registry.
type Counts struct {
	Active    int `json:"active"`
	Idle      int `json:"idle"`
	Attention int `json:"attention"`
}

// StatusCounts returns the number of active, idle, and attention sessions.
func (s *Store) StatusCounts() (Counts, error) {
	doc, err := s.Read()
	if err != nil {
		return Counts{}, err
	}
	var c Counts
	for _, sess := range doc.Sessions {
		switch sess.Status {
		case models.StatusActive:
			c.Active++
		case models.StatusIdle:
			c.Idle++
		case models.StatusAttention:
			c.Attention++
		}
	}
	return c, nil
}

// CleanupStale removes records whose age exceeds threshold, except for
// still-running non-closed sessions, which are retained indefinitely. The
// document is persisted only when something was actually removed. Passing a
// zero threshold applies DefaultStaleThreshold.
func (s *Store) CleanupStale(threshold time.Duration) (int, error) {
	if threshold <= 0 {
		threshold = DefaultStaleThreshold
	}
	cutoff := time.Now().Add(-threshold)
	removed := 0

	_, err := s.withLock(func(doc *models.SessionDocument) (bool, error) {
		kept := doc.Sessions[:0]
		for _, sess := range doc.Sessions {
			retained := sess.IsRunning && sess.Status != models.StatusClosed
			if sess.LastUpdate.Before(cutoff) && !retained {
				removed++
				continue
			}
			kept = append(kept, sess)
		}
		doc.Sessions = kept
		return removed > 0, nil
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.WithField("removed", removed).Debug("Pruned stale session records")
	}
	return removed, nil
}

// BuildIndex projects the current document into the in-memory lookup
// structures. The index is derived state, never persisted, never the source
// of truth.
func (s *Store) BuildIndex() (*Index, error) {
	doc, err := s.Read()
	if err != nil {
		return nil, err
	}
	return NewIndex(doc), nil
}
