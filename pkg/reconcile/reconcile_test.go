package reconcile

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/warden/pkg/agent"
	"github.com/grovetools/warden/pkg/models"
	"github.com/grovetools/warden/pkg/store"
	"github.com/grovetools/warden/pkg/workspace"
	"github.com/grovetools/warden/testutil"
)

// fakeAdapter returns a scripted detection result.
type fakeAdapter struct {
	name      models.AgentType
	available bool
	sessions  []models.AgentSession
	err       error
}

func (f *fakeAdapter) Name() models.AgentType { return f.name }
func (f *fakeAdapter) IsAvailable() bool      { return f.available }

func (f *fakeAdapter) DetectSessions(context.Context) ([]models.AgentSession, error) {
	return f.sessions, f.err
}

func (f *fakeAdapter) VerifySession(ctx context.Context, id string) (*models.AgentSession, error) {
	sessions, err := f.DetectSessions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].SessionID == id {
			return &sessions[i], nil
		}
	}
	return nil, nil
}

func (f *fakeAdapter) SessionStatus(ctx context.Context, id string) (models.Status, error) {
	sess, err := f.VerifySession(ctx, id)
	if err != nil || sess == nil {
		return "", err
	}
	return sess.Status, nil
}

var _ agent.Adapter = (*fakeAdapter)(nil)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	t.Setenv("WARDEN_HOME", t.TempDir())
	return store.New(filepath.Join(t.TempDir(), "sessions.json"))
}

func detected(id, ws string, status models.Status, running bool, lastUpdate time.Time) models.AgentSession {
	return models.AgentSession{
		SessionID:     id,
		AgentType:     models.AgentClaude,
		WorkspacePath: ws,
		Status:        status,
		IsRunning:     running,
		LastUpdate:    lastUpdate,
	}
}

func TestRun_AddsAndMatches(t *testing.T) {
	st := newTestStore(t)
	groves := testutil.SingleGrove("app", "/home/u/app")
	ad := &fakeAdapter{name: models.AgentClaude, available: true, sessions: []models.AgentSession{
		detected("s1", "/home/u/app/.grove-worktrees/feature/pkg", models.StatusActive, true, time.Now()),
		detected("s2", "/elsewhere", models.StatusIdle, true, time.Now()),
	}}

	stats := Run(context.Background(), st, []agent.Adapter{ad}, groves, Options{})
	assert.Equal(t, 2, stats.Added)
	assert.Zero(t, stats.Updated)
	assert.Empty(t, stats.Errors)

	s1, err := st.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, "app", s1.GroveID)
	assert.Equal(t, "/home/u/app/.grove-worktrees/feature", s1.WorktreePath)

	s2, err := st.GetSession("s2")
	require.NoError(t, err)
	assert.Empty(t, s2.GroveID)
}

func TestRun_CountsUpdates(t *testing.T) {
	st := newTestStore(t)
	ad := &fakeAdapter{name: models.AgentClaude, available: true, sessions: []models.AgentSession{
		detected("s1", "/ws/a", models.StatusActive, true, time.Now()),
	}}

	stats := Run(context.Background(), st, []agent.Adapter{ad}, nil, Options{})
	assert.Equal(t, 1, stats.Added)

	stats = Run(context.Background(), st, []agent.Adapter{ad}, nil, Options{})
	assert.Zero(t, stats.Added)
	assert.Equal(t, 1, stats.Updated)
}

func TestRun_AdapterFailureIsIsolated(t *testing.T) {
	st := newTestStore(t)
	broken := &fakeAdapter{name: "broken", available: true, err: fmt.Errorf("scan exploded")}
	healthy := &fakeAdapter{name: models.AgentClaude, available: true, sessions: []models.AgentSession{
		detected("s1", "/ws/a", models.StatusActive, true, time.Now()),
	}}
	skipped := &fakeAdapter{name: "absent", available: false, err: fmt.Errorf("never called")}

	stats := Run(context.Background(), st, []agent.Adapter{broken, healthy, skipped}, nil, Options{})
	assert.Equal(t, 1, stats.Added)
	require.Len(t, stats.Errors, 1)
	assert.Contains(t, stats.Errors[0], "broken")
}

func TestRun_SweepsStaleRecords(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.AddSession(models.AgentSession{
		SessionID:  "ancient",
		Status:     models.StatusClosed,
		LastUpdate: time.Now().Add(-2 * time.Hour),
	}))

	stats := Run(context.Background(), st, nil, nil, Options{StaleThreshold: time.Hour})
	assert.Equal(t, 1, stats.Removed)

	sess, err := st.GetSession("ancient")
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestRun_HookTransitionOutlivesDetection(t *testing.T) {
	st := newTestStore(t)

	// A hook marked the session attention just now; the log's last activity
	// is older. While the process lives, the newer explicit transition wins.
	require.NoError(t, st.AddSession(models.AgentSession{
		SessionID: "s1", Status: models.StatusAttention, IsRunning: true,
	}))
	ad := &fakeAdapter{name: models.AgentClaude, available: true, sessions: []models.AgentSession{
		detected("s1", "/ws/a", models.StatusActive, true, time.Now().Add(-10*time.Minute)),
	}}

	Run(context.Background(), st, []agent.Adapter{ad}, nil, Options{})

	sess, err := st.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAttention, sess.Status)
	assert.True(t, sess.IsRunning)
	// Detection still attaches fresh workspace identity.
	assert.Equal(t, "/ws/a", sess.WorkspacePath)
}

func TestRun_LivenessBeatsHookTransition(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.AddSession(models.AgentSession{
		SessionID: "s1", Status: models.StatusAttention, IsRunning: true,
	}))
	// The detection pass found the process gone; the old hook status loses.
	ad := &fakeAdapter{name: models.AgentClaude, available: true, sessions: []models.AgentSession{
		detected("s1", "/ws/a", models.StatusFinished, false, time.Now().Add(-10*time.Minute)),
	}}

	Run(context.Background(), st, []agent.Adapter{ad}, nil, Options{})

	sess, err := st.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, sess.Status)
	assert.False(t, sess.IsRunning)
}

func TestRun_ClosedSessionStaysClosed(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.AddSession(models.AgentSession{
		SessionID: "s1", Status: models.StatusClosed, IsRunning: false,
	}))

	// Even a stale process-table match cannot reopen an explicitly closed
	// session while the hook's write is the newer one.
	ad := &fakeAdapter{name: models.AgentClaude, available: true, sessions: []models.AgentSession{
		detected("s1", "/ws/a", models.StatusActive, true, time.Now().Add(-10*time.Minute)),
	}}
	Run(context.Background(), st, []agent.Adapter{ad}, nil, Options{})

	sess, err := st.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, sess.Status)
	assert.False(t, sess.IsRunning)

	// And when the process is gone, closed still does not become finished.
	ad.sessions = []models.AgentSession{
		detected("s1", "/ws/a", models.StatusFinished, false, time.Now().Add(time.Minute)),
	}
	Run(context.Background(), st, []agent.Adapter{ad}, nil, Options{})

	sess, err = st.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, sess.Status)
}

func TestMerge_FreshDetectionWins(t *testing.T) {
	existing := &models.AgentSession{
		SessionID:  "s1",
		Status:     models.StatusIdle,
		IsRunning:  true,
		LastUpdate: time.Now().Add(-time.Hour),
		Metadata:   models.Metadata{"branch": "main"},
	}
	incoming := detected("s1", "/ws/a", models.StatusActive, true, time.Now())
	incoming.Metadata = models.Metadata{"last_activity": "now"}

	merged := merge(existing, incoming)
	assert.Equal(t, models.StatusActive, merged.Status)
	// Metadata from both writers survives the merge.
	assert.Equal(t, "main", merged.Metadata.GetString("branch"))
	assert.Equal(t, "now", merged.Metadata.GetString("last_activity"))
}

func TestRunner_StopsOnContextCancel(t *testing.T) {
	st := newTestStore(t)
	runner := NewRunner(st, nil, []workspace.Grove{}, 50*time.Millisecond)
	runner.PassTimeout = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	err := runner.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
