package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	grovesFile := filepath.Join(dir, "groves.yml")

	content := `groves:
  - name: app
    path: /home/u/app
    worktrees:
      - path: /home/u/app
        repo: app
        is_main: true
      - path: /home/u/app/.grove-worktrees/feature
        repo: app
        branch: feature
  - id: custom-id
    name: tools
    path: /home/u/tools/
`
	require.NoError(t, os.WriteFile(grovesFile, []byte(content), 0644))

	d, err := LoadDirectory(grovesFile)
	require.NoError(t, err)
	require.Len(t, d.Groves, 2)

	// ID falls back to the name when omitted.
	assert.Equal(t, "app", d.Groves[0].ID)
	assert.Equal(t, "custom-id", d.Groves[1].ID)

	// Paths are cleaned on load.
	assert.Equal(t, "/home/u/tools", d.Groves[1].Path)

	require.NotNil(t, d.GroveByID("custom-id"))
	assert.Nil(t, d.GroveByID("nope"))
}

func TestLoadDirectory_MissingFile(t *testing.T) {
	d, err := LoadDirectory(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Empty(t, d.Groves)
}

func TestLoadDirectory_Malformed(t *testing.T) {
	dir := t.TempDir()
	grovesFile := filepath.Join(dir, "groves.yml")
	require.NoError(t, os.WriteFile(grovesFile, []byte("groves: [not: valid"), 0644))

	_, err := LoadDirectory(grovesFile)
	assert.Error(t, err)
}
