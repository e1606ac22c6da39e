package authorize

import (
	"context"
	"log/slog"
	"sync/atomic"

	psqlwatcher "github.com/IguteChung/casbin-psql-watcher"
	casbin "github.com/casbin/casbin/v2"
)

// policyLoadHealthy tracks the health state of Casbin policy loading.
// When policy reload fails, this is set to false to trigger health check failures.
var policyLoadHealthy atomic.Bool

func init() {
	policyLoadHealthy.Store(true)
}

// IsPolicyHealthy returns false if the last policy reload attempt failed.
func IsPolicyHealthy() bool {
	return policyLoadHealthy.Load()
}

// CleanupFunc is a function that cleans up resources.
type CleanupFunc func(ctx context.Context)

type EnforcerOptions struct {
	// DSN is the libpq connection string the watcher listens on.
	DSN string
	// Channel is the LISTEN/NOTIFY channel. Empty disables the watcher.
	Channel string
}

// NewEnforcer creates a DistributedEnforcer backed by the pgx adapter and,
// when a channel is configured, the PostgreSQL watcher.
func NewEnforcer(ctx context.Context, db PolicyDB, opts EnforcerOptions) (*casbin.DistributedEnforcer, CleanupFunc, error) {
	m, err := NewModel()
	if err != nil {
		return nil, nil, err
	}

	a, err := NewAdapter(ctx, db)
	if err != nil {
		return nil, nil, err
	}

	e, err := casbin.NewDistributedEnforcer(m, a)
	if err != nil {
		return nil, nil, err
	}
	e.EnableAutoSave(true)
	e.EnableEnforce(true)

	if opts.Channel == "" || opts.DSN == "" {
		return e, func(context.Context) {}, nil
	}

	w, err := psqlwatcher.NewWatcherWithConnString(ctx, opts.DSN, psqlwatcher.Option{
		Channel: opts.Channel,
	})
	if err != nil {
		return nil, nil, err
	}

	err = w.SetUpdateCallback(func(msg string) {
		slog.Debug("casbin policy update received", "message", msg)
		if err := e.LoadPolicy(); err != nil {
			slog.Error("failed to reload policy after watcher notification", "error", err)
			policyLoadHealthy.Store(false)
		} else {
			policyLoadHealthy.Store(true)
		}
	})
	if err != nil {
		return nil, nil, err
	}

	if err := e.SetWatcher(w); err != nil {
		return nil, nil, err
	}

	cleanup := func(ctx context.Context) {
		slog.Info("closing casbin policy watcher")
		w.Close()
	}

	return e, cleanup, nil
}
