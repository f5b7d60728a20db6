package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindGroveForPath(t *testing.T) {
	groves := []Grove{
		{ID: "grove", Name: "grove", Path: "/home/u/grove"},
		{ID: "other", Name: "other", Path: "/home/u/other"},
	}

	tests := []struct {
		name     string
		path     string
		expected string // grove id, "" for no match
	}{
		{
			name:     "exact grove root",
			path:     "/home/u/grove",
			expected: "grove",
		},
		{
			name:     "deeply nested path",
			path:     "/home/u/grove/sub/deep",
			expected: "grove",
		},
		{
			name:     "sibling with shared name prefix does not match",
			path:     "/home/u/grove-extra",
			expected: "",
		},
		{
			name:     "nested file-like path under sibling prefix",
			path:     "/home/u/grove-extra/src",
			expected: "",
		},
		{
			name:     "unrelated path",
			path:     "/tmp/elsewhere",
			expected: "",
		},
		{
			name:     "empty path",
			path:     "",
			expected: "",
		},
		{
			name:     "trailing separator on query",
			path:     "/home/u/grove/",
			expected: "grove",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindGroveForPath(tt.path, groves)
			if tt.expected == "" {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, tt.expected, got.ID)
			}
		})
	}
}

func TestFindGroveForPath_NestedGrovesPickMostSpecific(t *testing.T) {
	// Enumeration order deliberately lists the shallow grove first; the
	// deeper root must still win.
	groves := []Grove{
		{ID: "outer", Path: "/home/u/mono"},
		{ID: "inner", Path: "/home/u/mono/services/api"},
	}

	got := FindGroveForPath("/home/u/mono/services/api/handlers", groves)
	require.NotNil(t, got)
	assert.Equal(t, "inner", got.ID)

	got = FindGroveForPath("/home/u/mono/docs", groves)
	require.NotNil(t, got)
	assert.Equal(t, "outer", got.ID)
}

func TestFindWorktreeForPath(t *testing.T) {
	grove := &Grove{
		ID:   "app",
		Path: "/home/u/app",
		Worktrees: []Worktree{
			{Path: "/home/u/app", Repo: "app", IsMain: true},
			{Path: "/home/u/app/.grove-worktrees/feature", Repo: "app", Branch: "feature"},
		},
	}

	// Inside the feature worktree, the deep path resolves to it even though
	// the main checkout's path is also a prefix.
	wt := FindWorktreeForPath("/home/u/app/.grove-worktrees/feature/pkg/store", grove)
	require.NotNil(t, wt)
	assert.Equal(t, "feature", wt.Branch)

	// At the grove root, the main worktree matches.
	wt = FindWorktreeForPath("/home/u/app/cmd", grove)
	require.NotNil(t, wt)
	assert.True(t, wt.IsMain)

	// Outside the grove, no worktree matches.
	assert.Nil(t, FindWorktreeForPath("/home/u/elsewhere", grove))
	assert.Nil(t, FindWorktreeForPath("/home/u/app/x", nil))
}
