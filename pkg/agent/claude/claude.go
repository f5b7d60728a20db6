// Package claude detects Claude Code sessions by scanning the transcript
// files the agent writes under its private data directory
// (~/.claude/projects/<encoded-project>/<session-id>.jsonl).
package claude

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/warden/command"
	"github.com/grovetools/warden/errors"
	"github.com/grovetools/warden/logging"
	"github.com/grovetools/warden/pkg/models"
	"github.com/grovetools/warden/pkg/paths"
	"github.com/grovetools/warden/pkg/process"
)

// statusWindow is how many trailing events the status heuristic inspects.
const statusWindow = 10

// Transcript lines can carry whole tool results; give the scanner room.
const maxLineBytes = 4 * 1024 * 1024

// Adapter detects Claude Code sessions.
type Adapter struct {
	root   string
	exec   command.Executor
	logger *logrus.Entry
}

// New creates an adapter rooted at the agent's default data directory.
func New() *Adapter {
	return NewWithRoot(paths.ClaudeRoot(), &command.RealExecutor{})
}

// NewWithRoot creates an adapter with an explicit data directory and command
// executor, for configuration overrides and tests.
func NewWithRoot(root string, exec command.Executor) *Adapter {
	return &Adapter{
		root:   root,
		exec:   exec,
		logger: logging.NewLogger("claude-adapter"),
	}
}

// Name returns the agent type this adapter owns.
func (a *Adapter) Name() models.AgentType {
	return models.AgentClaude
}

// IsAvailable reports whether the agent has ever written logs on this machine.
func (a *Adapter) IsAvailable() bool {
	info, err := os.Stat(a.projectsDir())
	return err == nil && info.IsDir()
}

func (a *Adapter) projectsDir() string {
	return filepath.Join(a.root, "projects")
}

// DetectSessions scans every per-project log directory and emits one session
// per parseable transcript. Unreadable directories and files are skipped; a
// single bad log never aborts the whole scan.
func (a *Adapter) DetectSessions(ctx context.Context) ([]models.AgentSession, error) {
	projectsDir := a.projectsDir()
	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.AdapterScanFailed(string(a.Name()), err)
	}

	var sessions []models.AgentSession
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		projectDir := filepath.Join(projectsDir, entry.Name())

		files, err := os.ReadDir(projectDir)
		if err != nil {
			continue
		}
		for _, file := range files {
			if file.IsDir() || !isSessionLog(file.Name()) {
				continue
			}
			sess := a.parseTranscript(ctx, filepath.Join(projectDir, file.Name()))
			if sess != nil {
				sessions = append(sessions, *sess)
			}
		}
	}
	return sessions, nil
}

// isSessionLog filters out the agent's internal files: session transcripts
// are named by the session UUID with a .jsonl extension.
func isSessionLog(name string) bool {
	if !strings.HasSuffix(name, ".jsonl") {
		return false
	}
	return !strings.HasPrefix(name, ".") && !strings.HasPrefix(name, "agent-")
}

// VerifySession re-runs detection and returns the session with the given id,
// or nil when no transcript for it exists anymore.
func (a *Adapter) VerifySession(ctx context.Context, sessionID string) (*models.AgentSession, error) {
	sessions, err := a.DetectSessions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].SessionID == sessionID {
			return &sessions[i], nil
		}
	}
	return nil, nil
}

// SessionStatus re-runs detection and returns the session's current
// classification, or "" when the session is unknown.
func (a *Adapter) SessionStatus(ctx context.Context, sessionID string) (models.Status, error) {
	sess, err := a.VerifySession(ctx, sessionID)
	if err != nil || sess == nil {
		return "", err
	}
	return sess.Status, nil
}

// transcriptEvent is the subset of a Claude transcript line warden cares
// about. Unknown fields are ignored.
type transcriptEvent struct {
	SessionID string `json:"sessionId"`
	Cwd       string `json:"cwd"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	GitBranch string `json:"gitBranch"`
}

// parseTranscript reads one session log. The first event carrying both a
// session id and a working directory seeds the session's identity; the last
// timestamped event sets its final activity. Malformed lines are skipped.
// Returns nil when the file never establishes an identity.
func (a *Adapter) parseTranscript(ctx context.Context, path string) *models.AgentSession {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var (
		sessionID    string
		cwd          string
		branch       string
		firstSeen    time.Time
		lastActivity time.Time
		tail         []transcriptEvent
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var ev transcriptEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}

		if sessionID == "" && ev.SessionID != "" && ev.Cwd != "" {
			sessionID = ev.SessionID
			cwd = ev.Cwd
			branch = ev.GitBranch
			if ts, ok := parseTimestamp(ev.Timestamp); ok {
				firstSeen = ts
			}
		}
		if ts, ok := parseTimestamp(ev.Timestamp); ok {
			lastActivity = ts
		}

		tail = append(tail, ev)
		if len(tail) > statusWindow {
			tail = tail[1:]
		}
	}
	// A scanner error here means a truncated or oversized tail; whatever was
	// parsed so far still counts.

	if sessionID == "" {
		return nil
	}

	running := process.CommandRunning(ctx, a.exec, sessionID)

	status := classifyTail(tail)
	if !running {
		// Liveness overrides the log heuristic.
		status = models.StatusFinished
	}

	metadata := models.Metadata{}
	if branch != "" {
		metadata["branch"] = branch
	}
	if !firstSeen.IsZero() {
		metadata["first_seen"] = firstSeen.Format(time.RFC3339)
	}
	if !lastActivity.IsZero() {
		metadata["last_activity"] = lastActivity.Format(time.RFC3339)
	}
	metadata["transcript_path"] = path

	return &models.AgentSession{
		SessionID:     sessionID,
		AgentType:     models.AgentClaude,
		WorkspacePath: cwd,
		Status:        status,
		IsRunning:     running,
		LastUpdate:    lastActivity,
		Metadata:      metadata,
	}
}

// classifyTail maps the most recent classifiable event in the trailing
// window to a status: agent/user traffic means active, a notification means
// the session is waiting on a human, and nothing recognizable means idle.
func classifyTail(tail []transcriptEvent) models.Status {
	for i := len(tail) - 1; i >= 0; i-- {
		switch tail[i].Type {
		case "assistant", "user", "tool_use", "tool_result":
			return models.StatusActive
		case "notification":
			return models.StatusAttention
		}
	}
	return models.StatusIdle
}

func parseTimestamp(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
