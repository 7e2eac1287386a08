// Package scheduler runs the refresh sweep on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher is the synchronous sweep the scheduler triggers.
type Refresher interface {
	RefreshEvents(ctx context.Context) (int, error)
}

// RefreshScheduler calls Refresher.RefreshEvents on a standard five-field cron spec.
// A scheduler built from an empty spec is disabled and all its methods are no-ops.
type RefreshScheduler struct {
	cron      *cron.Cron
	entry     cron.EntryID
	refresher Refresher
	logger    *slog.Logger
	runs      atomic.Int64
}

func NewRefreshScheduler(spec string, refresher Refresher, logger *slog.Logger) (*RefreshScheduler, error) {
	s := &RefreshScheduler{refresher: refresher, logger: logger}
	if spec == "" {
		return s, nil
	}
	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	id, err := c.AddFunc(spec, func() { s.RunOnce(context.Background()) })
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	s.cron = c
	s.entry = id
	return s, nil
}

// Enabled reports whether a schedule was configured.
func (s *RefreshScheduler) Enabled() bool { return s.cron != nil }

func (s *RefreshScheduler) Start() {
	if s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("refresh scheduler started")
}

// Stop stops scheduling and returns a context that is done once a running sweep has finished.
func (s *RefreshScheduler) Stop() context.Context {
	if s.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return s.cron.Stop()
}

// Next returns the next planned run, or the zero time when disabled or not started.
func (s *RefreshScheduler) Next() time.Time {
	if s.cron == nil {
		return time.Time{}
	}
	return s.cron.Entry(s.entry).Next
}

// Runs returns how many sweeps have been triggered.
func (s *RefreshScheduler) Runs() int64 { return s.runs.Load() }

// RunOnce performs a single sweep and logs its outcome.
func (s *RefreshScheduler) RunOnce(ctx context.Context) {
	s.runs.Add(1)
	moved, err := s.refresher.RefreshEvents(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled refresh failed", "moved", moved, "err", err)
		return
	}
	s.logger.DebugContext(ctx, "scheduled refresh done", "moved", moved)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
