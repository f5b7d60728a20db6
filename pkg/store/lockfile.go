package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/grovetools/warden/errors"
	"github.com/grovetools/warden/pkg/process"
)

const (
	lockRetryInterval = 25 * time.Millisecond

	// breakGuardTTL is how long an abandoned break guard may linger before
	// contenders clear it. The guarded critical section is a read and an
	// unlink, so a guard this old belongs to a crashed breaker.
	breakGuardTTL = time.Second
)

// acquireLock takes an exclusive cross-process lock by creating a pid-stamped
// sidecar file with O_EXCL. Locks held by dead processes are broken and
// retried. On success the returned release func removes the lock file.
func acquireLock(path string, timeout time.Duration) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	deadline := time.Now().Add(timeout)
	holder := 0

	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			_, werr := f.WriteString(strconv.Itoa(os.Getpid()))
			if cerr := f.Close(); werr == nil {
				werr = cerr
			}
			if werr != nil {
				_ = os.Remove(path)
				return nil, fmt.Errorf("failed to write lock file: %w", werr)
			}
			return func() { releaseLock(path) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		// Somebody holds the lock. If its owner is dead, the lock is stale
		// and safe to break.
		if pid, ok := readLockOwner(path); ok {
			holder = pid
			if !process.IsProcessAlive(pid) && breakStaleLock(path, pid) {
				continue
			}
		}

		if time.Now().After(deadline) {
			return nil, errors.StoreLocked(path, holder)
		}
		time.Sleep(lockRetryInterval)
	}
}

func readLockOwner(path string) (int, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return 0, false
	}
	return pid, true
}

// breakStaleLock removes a dead owner's lock file. Removal is serialized
// through a guard file so that of several contenders racing to break the
// same stale lock, exactly one removes it — the unguarded version let a
// slow contender unlink the fresh lock a faster one had just created. The
// owner is re-read under the guard: only the observed dead pid is removed,
// never a lock re-taken in the meantime.
func breakStaleLock(path string, stalePID int) bool {
	guard := path + ".break"
	g, err := os.OpenFile(guard, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		// Another contender is breaking it right now, or a crashed breaker
		// left its guard behind; clear an aged-out guard and retry later.
		if info, serr := os.Stat(guard); serr == nil && time.Since(info.ModTime()) > breakGuardTTL {
			_ = os.Remove(guard)
		}
		return false
	}
	_ = g.Close()
	defer os.Remove(guard)

	if pid, ok := readLockOwner(path); ok && pid == stalePID && !process.IsProcessAlive(pid) {
		_ = os.Remove(path)
		return true
	}
	return false
}

// releaseLock removes the lock file only while it still records this
// process's pid, so a lock wrongly attributed to us and re-taken by another
// process is never pulled out from under its new owner.
func releaseLock(path string) {
	if pid, ok := readLockOwner(path); ok && pid == os.Getpid() {
		_ = os.Remove(path)
	}
}
