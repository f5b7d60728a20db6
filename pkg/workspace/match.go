package workspace

import (
	"path/filepath"
	"sort"
	"strings"
)

// pathContains reports whether query is root itself or lies anywhere under
// root. Both sides are compared with a trailing separator so that a sibling
// whose name shares a prefix (/repo-foo vs /repo) never matches.
func pathContains(root, query string) bool {
	if root == "" || query == "" {
		return false
	}
	rootNorm := withTrailingSep(filepath.Clean(root))
	queryNorm := withTrailingSep(filepath.Clean(query))
	return strings.HasPrefix(queryNorm, rootNorm)
}

func withTrailingSep(p string) string {
	sep := string(filepath.Separator)
	if strings.HasSuffix(p, sep) {
		return p
	}
	return p + sep
}

// FindGroveForPath resolves an absolute working-directory path to the grove
// that encloses it. The match is depth-independent: a path several levels
// inside a grove still resolves. When groves nest, the most specific
// (longest) matching root wins.
func FindGroveForPath(path string, groves []Grove) *Grove {
	if path == "" {
		return nil
	}

	// Longest root first so nested groves resolve deterministically.
	candidates := make([]*Grove, 0, len(groves))
	for i := range groves {
		candidates = append(candidates, &groves[i])
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i].Path) > len(candidates[j].Path)
	})

	for _, g := range candidates {
		if pathContains(g.Path, path) {
			return g
		}
	}
	return nil
}

// FindWorktreeForPath resolves a path to the specific worktree of a grove it
// falls inside, or nil when it only touches the grove root. The same
// longest-prefix rule applies, so a worktree with a focused project sub-path
// beats its parent checkout.
func FindWorktreeForPath(path string, grove *Grove) *Worktree {
	if grove == nil || path == "" {
		return nil
	}

	candidates := make([]*Worktree, 0, len(grove.Worktrees))
	for i := range grove.Worktrees {
		candidates = append(candidates, &grove.Worktrees[i])
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i].Path) > len(candidates[j].Path)
	})

	for _, wt := range candidates {
		if pathContains(wt.Path, path) {
			return wt
		}
	}
	return nil
}
