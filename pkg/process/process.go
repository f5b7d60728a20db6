// Package process answers liveness questions about OS processes: whether a
// known PID is alive, and whether any process command line mentions a given
// session id.
package process

import (
	"context"
	"os"
	"syscall"

	"github.com/grovetools/warden/command"
)

// IsProcessAlive checks if a process with the given PID is still running.
// It uses a signal-sending method that is cross-platform for Unix-like systems (macOS, Linux).
func IsProcessAlive(pid int) bool {
	// PID 0 or less is invalid.
	if pid <= 0 {
		return false
	}

	// Find the process. This doesn't fail on Unix if the process doesn't exist.
	process, err := os.FindProcess(pid)
	if err != nil {
		return false // Should not happen on Unix-like systems.
	}

	// On Unix, sending signal 0 to a process checks for its existence without actually sending a signal.
	// If the process exists and we have permission, err will be nil.
	// If the process exists but we don't have permission, err will be EPERM, but it's still alive.
	// If the process does not exist, err will be ESRCH.
	err = process.Signal(syscall.Signal(0))

	// err == nil means process is alive and we have permission.
	// os.IsPermission(err) means process is alive but we don't have permission (e.g., owned by root).
	return err == nil || os.IsPermission(err)
}

// CommandRunning reports whether any process on the system has a command
// line containing substr, using `pgrep -f`. This is a heuristic match, not a
// PID-exact check: it can produce rare false positives (another process
// quoting the same string) and false negatives (a renamed command line).
//
// Any failure to query the process table is reported as not running, so
// classification fails toward finished rather than toward active.
func CommandRunning(ctx context.Context, exec command.Executor, substr string) bool {
	if substr == "" {
		return false
	}
	cmd := exec.CommandContext(ctx, "pgrep", "-f", substr)
	// pgrep exits 0 when at least one process matched, 1 when none did, and
	// >1 on error. Only a clean zero counts as running.
	return cmd.Run() == nil
}
