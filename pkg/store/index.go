package store

import "github.com/grovetools/warden/pkg/models"

// Index is a derived, in-memory projection of a session document into three
// lookup structures. Rebuild it on demand; it is never written back.
type Index struct {
	ByID        map[string]*models.AgentSession
	ByGrove     map[string][]*models.AgentSession
	ByWorkspace map[string][]*models.AgentSession
}

// NewIndex builds an index over copies of the document's sessions, so later
// document mutations do not alias into it.
func NewIndex(doc *models.SessionDocument) *Index {
	idx := &Index{
		ByID:        make(map[string]*models.AgentSession, len(doc.Sessions)),
		ByGrove:     make(map[string][]*models.AgentSession),
		ByWorkspace: make(map[string][]*models.AgentSession),
	}

	for _, sess := range doc.Sessions {
		copied := sess
		idx.ByID[copied.SessionID] = &copied
		if copied.GroveID != "" {
			idx.ByGrove[copied.GroveID] = append(idx.ByGrove[copied.GroveID], &copied)
		}
		if copied.WorkspacePath != "" {
			idx.ByWorkspace[copied.WorkspacePath] = append(idx.ByWorkspace[copied.WorkspacePath], &copied)
		}
	}
	return idx
}
