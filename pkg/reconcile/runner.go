package reconcile

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/warden/logging"
	"github.com/grovetools/warden/pkg/agent"
	"github.com/grovetools/warden/pkg/store"
	"github.com/grovetools/warden/pkg/workspace"
)

const debounceDelay = 500 * time.Millisecond

// Runner re-runs reconciliation inside a long-lived process: on a fixed
// ticker, and early whenever a watched log directory changes. Passes are
// serialized; a pass that overruns its deadline fails alone without
// stopping the loop.
type Runner struct {
	Store    *store.Store
	Adapters []agent.Adapter
	Groves   []workspace.Grove
	Options  Options

	// Interval is the polling cadence. PassTimeout bounds one pass; zero
	// means no deadline.
	Interval    time.Duration
	PassTimeout time.Duration

	// WatchPaths are directories whose changes trigger an early pass
	// (typically the agents' log roots).
	WatchPaths []string

	logger *logrus.Entry
}

// NewRunner creates a Runner with the given cadence.
func NewRunner(st *store.Store, adapters []agent.Adapter, groves []workspace.Grove, interval time.Duration) *Runner {
	return &Runner{
		Store:    st,
		Adapters: adapters,
		Groves:   groves,
		Interval: interval,
		logger:   logging.NewLogger("reconcile-runner"),
	}
}

// Run blocks until ctx is canceled, reconciling on every tick and shortly
// after every filesystem event on the watched paths.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	// Nil channels when the watcher is unavailable; their select cases then
	// simply never fire and the loop degrades to pure polling.
	var watchEvents <-chan fsnotify.Event
	var watchErrors <-chan error
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		r.logger.WithError(err).Warn("Filesystem watching unavailable, falling back to polling only")
	} else {
		defer watcher.Close()
		for _, p := range r.WatchPaths {
			if err := watcher.Add(p); err != nil {
				r.logger.WithError(err).WithField("path", p).Debug("Cannot watch path")
			}
		}
		watchEvents = watcher.Events
		watchErrors = watcher.Errors
	}

	// Debounce bursts of log writes into one pass.
	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}

	r.pass(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.pass(ctx)
		case _, ok := <-watchEvents:
			if !ok {
				watchEvents, watchErrors = nil, nil
				continue
			}
			debounce.Reset(debounceDelay)
		case <-debounce.C:
			r.pass(ctx)
		case werr, ok := <-watchErrors:
			if !ok {
				watchEvents, watchErrors = nil, nil
				continue
			}
			r.logger.WithError(werr).Debug("Watcher error")
		}
	}
}

func (r *Runner) pass(ctx context.Context) {
	if r.PassTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.PassTimeout)
		defer cancel()
	}
	stats := Run(ctx, r.Store, r.Adapters, r.Groves, r.Options)
	if len(stats.Errors) > 0 {
		r.logger.WithField("errors", stats.Errors).Warn("Reconciliation pass had errors")
	}
}
