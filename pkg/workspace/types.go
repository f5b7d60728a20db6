// Package workspace models the grove directory consumed by warden: the set
// of known groves (workspaces) and their worktrees, plus the path matching
// used to attribute an agent session to the grove it runs inside.
package workspace

// Worktree is a checked-out working copy of a repository associated with one
// grove. For monorepos, ProjectDir points at the sub-path the worktree
// focuses on.
type Worktree struct {
	Path       string `json:"path" yaml:"path"`
	Repo       string `json:"repo" yaml:"repo"`
	Branch     string `json:"branch,omitempty" yaml:"branch,omitempty"`
	ProjectDir string `json:"project_dir,omitempty" yaml:"project_dir,omitempty"`
	IsMain     bool   `json:"is_main,omitempty" yaml:"is_main,omitempty"`
}

// Grove is a named collection of one or more worktrees representing one unit
// of work.
type Grove struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Path      string     `json:"path" yaml:"path"`
	Worktrees []Worktree `json:"worktrees,omitempty" yaml:"worktrees,omitempty"`
}
