package store

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/warden/errors"
	"github.com/grovetools/warden/pkg/models"
)

// deadPID is far beyond the kernel's pid range, so it can never name a live
// process.
const deadPID = 1 << 30

func seedLock(t *testing.T, path string, pid int) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(pid)), 0644))
}

func TestUpdate_BreaksDeadOwnerLock(t *testing.T) {
	t.Setenv("WARDEN_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "sessions.json")
	seedLock(t, path+".lock", deadPID)

	st := New(path)
	_, err := st.Update(func(doc *models.SessionDocument) error {
		doc.Sessions = append(doc.Sessions, models.AgentSession{SessionID: "s1"})
		return nil
	})
	require.NoError(t, err, "a dead owner's lock must be broken, not waited out")

	sess, err := st.GetSession("s1")
	require.NoError(t, err)
	assert.NotNil(t, sess)

	_, err = os.Stat(path + ".lock")
	assert.True(t, os.IsNotExist(err), "lock file must be gone after release")
}

func TestUpdate_TimesOutOnLiveOwnerLock(t *testing.T) {
	t.Setenv("WARDEN_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "sessions.json")
	// This test process is the live owner.
	seedLock(t, path+".lock", os.Getpid())

	st := New(path)
	st.lockTimeout = 100 * time.Millisecond
	_, err := st.Update(func(doc *models.SessionDocument) error {
		doc.Sessions = append(doc.Sessions, models.AgentSession{SessionID: "s1"})
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeStoreLocked))

	// The losing contender must not have touched the holder's lock.
	owner, ok := readLockOwner(path + ".lock")
	require.True(t, ok)
	assert.Equal(t, os.Getpid(), owner)
}

func TestAcquireLock_StaleBreakAdmitsOneHolderAtATime(t *testing.T) {
	lock := filepath.Join(t.TempDir(), "sessions.json.lock")

	for i := 0; i < 10; i++ {
		seedLock(t, lock, deadPID)

		var held atomic.Int32
		var wg sync.WaitGroup
		for c := 0; c < 4; c++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				release, err := acquireLock(lock, 5*time.Second)
				if err != nil {
					t.Error(err)
					return
				}
				if held.Add(1) > 1 {
					t.Error("two contenders held the lock at once")
				}
				time.Sleep(time.Millisecond)
				held.Add(-1)
				release()
			}()
		}
		wg.Wait()
	}
}

func TestReleaseLock_LeavesForeignLockAlone(t *testing.T) {
	lock := filepath.Join(t.TempDir(), "sessions.json.lock")

	release, err := acquireLock(lock, time.Second)
	require.NoError(t, err)

	// Simulate the lock having been broken and re-taken by another process
	// before this holder gets around to releasing.
	seedLock(t, lock, deadPID+1)
	release()

	owner, ok := readLockOwner(lock)
	require.True(t, ok, "release must not remove a lock it no longer owns")
	assert.Equal(t, deadPID+1, owner)
}

func TestAcquireLock_ClearsAbandonedBreakGuard(t *testing.T) {
	lock := filepath.Join(t.TempDir(), "sessions.json.lock")
	seedLock(t, lock, deadPID)

	// A crashed breaker left its guard behind, long enough ago to age out.
	guard := lock + ".break"
	require.NoError(t, os.WriteFile(guard, nil, 0644))
	old := time.Now().Add(-2 * breakGuardTTL)
	require.NoError(t, os.Chtimes(guard, old, old))

	release, err := acquireLock(lock, 5*time.Second)
	require.NoError(t, err, "an abandoned guard must not wedge the lock forever")
	release()
}
