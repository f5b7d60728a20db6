// Package paths provides XDG-compliant path resolution for warden.
//
// Resolution order:
// 1. WARDEN_HOME (portable root) → $WARDEN_HOME/{config,state,cache}
// 2. GROVE_HOME (shared grove ecosystem root) → $GROVE_HOME/{config,state,cache}
// 3. XDG env vars → $XDG_*_HOME/warden
// 4. Platform defaults → ~/.config/warden, ~/.local/state/warden, etc.
package paths

import (
	"os"
	"path/filepath"
)

func portableRoot() string {
	if home := os.Getenv("WARDEN_HOME"); home != "" {
		return home
	}
	return os.Getenv("GROVE_HOME")
}

// getConfigHome returns the base config home directory.
func getConfigHome() string {
	if root := portableRoot(); root != "" {
		return filepath.Join(root, "config")
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config")
	}
	return ""
}

// getStateHome returns the base state home directory.
func getStateHome() string {
	if root := portableRoot(); root != "" {
		return filepath.Join(root, "state")
	}
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return xdgStateHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "state")
	}
	return ""
}

// getCacheHome returns the base cache home directory.
func getCacheHome() string {
	if root := portableRoot(); root != "" {
		return filepath.Join(root, "cache")
	}
	if xdgCacheHome := os.Getenv("XDG_CACHE_HOME"); xdgCacheHome != "" {
		return xdgCacheHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".cache")
	}
	return ""
}

// ConfigDir returns the warden configuration directory.
// Used for config files like warden.yml and groves.yml.
func ConfigDir() string {
	base := getConfigHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "warden")
}

// StateDir returns the warden state directory.
// Used for the session document and logs.
func StateDir() string {
	base := getStateHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "warden")
}

// CacheDir returns the warden cache directory.
func CacheDir() string {
	base := getCacheHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "warden")
}

// SessionsFile returns the default path of the persisted session document.
func SessionsFile() string {
	state := StateDir()
	if state == "" {
		return ""
	}
	return filepath.Join(state, "sessions.json")
}

// DefaultConfigFile returns the default path of warden.yml.
func DefaultConfigFile() string {
	cfg := ConfigDir()
	if cfg == "" {
		return ""
	}
	return filepath.Join(cfg, "warden.yml")
}

// DefaultGrovesFile returns the default path of the grove directory file.
func DefaultGrovesFile() string {
	cfg := ConfigDir()
	if cfg == "" {
		return ""
	}
	return filepath.Join(cfg, "groves.yml")
}

// ClaudeRoot returns the private data directory of the Claude Code agent.
func ClaudeRoot() string {
	if root := os.Getenv("CLAUDE_CONFIG_DIR"); root != "" {
		return root
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".claude")
	}
	return ""
}

// EnsureDirs creates all warden directories if they don't exist.
func EnsureDirs() error {
	dirs := []string{
		ConfigDir(),
		StateDir(),
		CacheDir(),
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
