package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/warden/pkg/models"
)

func TestNewIndex(t *testing.T) {
	doc := models.NewSessionDocument()
	doc.Sessions = []models.AgentSession{
		{SessionID: "s1", GroveID: "g1", WorkspacePath: "/ws/a", Status: models.StatusActive, IsRunning: true},
		{SessionID: "s2", GroveID: "g1", WorkspacePath: "/ws/b", Status: models.StatusIdle, IsRunning: true},
		{SessionID: "s3", Status: models.StatusFinished},
	}

	idx := NewIndex(doc)

	assert.Len(t, idx.ByID, 3)
	assert.Len(t, idx.ByGrove["g1"], 2)
	assert.Len(t, idx.ByWorkspace["/ws/a"], 1)

	// Sessions without grove or workspace identity are only reachable by id.
	require.Contains(t, idx.ByID, "s3")
	assert.NotContains(t, idx.ByGrove, "")
	assert.NotContains(t, idx.ByWorkspace, "")
}

func TestIndex_DoesNotAliasDocument(t *testing.T) {
	doc := models.NewSessionDocument()
	doc.Sessions = []models.AgentSession{
		{SessionID: "s1", Status: models.StatusActive, IsRunning: true},
	}

	idx := NewIndex(doc)
	doc.Sessions[0].Status = models.StatusClosed

	assert.Equal(t, models.StatusActive, idx.ByID["s1"].Status)
}

func TestStoreBuildIndex(t *testing.T) {
	t.Setenv("WARDEN_HOME", t.TempDir())
	s := New(filepath.Join(t.TempDir(), "sessions.json"))
	require.NoError(t, s.AddSession(models.AgentSession{
		SessionID: "s1", GroveID: "g1", WorkspacePath: "/ws/a",
		Status: models.StatusActive, IsRunning: true,
	}))

	idx, err := s.BuildIndex()
	require.NoError(t, err)
	require.Contains(t, idx.ByID, "s1")
	assert.Equal(t, "g1", idx.ByID["s1"].GroveID)
}
