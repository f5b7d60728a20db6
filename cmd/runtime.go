// Package cmd implements the warden CLI subcommands.
package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/grovetools/warden/cli"
	"github.com/grovetools/warden/command"
	"github.com/grovetools/warden/config"
	"github.com/grovetools/warden/pkg/agent"
	"github.com/grovetools/warden/pkg/agent/claude"
	"github.com/grovetools/warden/pkg/store"
	"github.com/grovetools/warden/pkg/workspace"
)

// runtime bundles the per-invocation collaborators every subcommand needs.
// Each CLI call constructs a fresh one from configuration; nothing is a
// process-wide singleton.
type runtime struct {
	cfg      *config.Config
	store    *store.Store
	groves   []workspace.Grove
	adapters []agent.Adapter
}

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.Load(cli.GetConfigPath(cmd))
	if err != nil {
		return nil, err
	}

	dir, err := workspace.LoadDirectory(cfg.GrovesFile)
	if err != nil {
		return nil, fmt.Errorf("load grove directory: %w", err)
	}

	return &runtime{
		cfg:    cfg,
		store:  store.New(cfg.StorePath),
		groves: dir.Groves,
		adapters: []agent.Adapter{
			claude.NewWithRoot(cfg.ClaudeRoot, &command.RealExecutor{}),
		},
	}, nil
}

// watchPaths returns the agent log roots worth watching in --watch mode.
func (r *runtime) watchPaths() []string {
	return []string{filepath.Join(r.cfg.ClaudeRoot, "projects")}
}
