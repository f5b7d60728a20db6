package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Directory is the read-only view of all registered groves. It is supplied
// by the grove registration tooling; warden only reads it.
type Directory struct {
	Groves []Grove `yaml:"groves"`
}

// LoadDirectory reads a groves.yml file. A missing file yields an empty
// directory, since a machine with no registered groves is a valid state.
func LoadDirectory(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Directory{}, nil
		}
		return nil, fmt.Errorf("read groves file: %w", err)
	}

	var dir Directory
	if err := yaml.Unmarshal(data, &dir); err != nil {
		return nil, fmt.Errorf("parse groves file: %w", err)
	}

	for i := range dir.Groves {
		g := &dir.Groves[i]
		if g.Path != "" {
			g.Path = filepath.Clean(g.Path)
		}
		if g.ID == "" {
			g.ID = g.Name
		}
		for j := range g.Worktrees {
			if g.Worktrees[j].Path != "" {
				g.Worktrees[j].Path = filepath.Clean(g.Worktrees[j].Path)
			}
		}
	}

	return &dir, nil
}

// GroveByID returns the grove with the given id, or nil.
func (d *Directory) GroveByID(id string) *Grove {
	for i := range d.Groves {
		if d.Groves[i].ID == id {
			return &d.Groves[i]
		}
	}
	return nil
}
