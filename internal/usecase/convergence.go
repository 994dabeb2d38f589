package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/user/course-harvester/internal/entity"
	"github.com/user/course-harvester/internal/repository"
	"github.com/user/course-harvester/pkg/metrics"
	"go.uber.org/zap"
)

const defaultPollInterval = 500 * time.Millisecond

// ConvergenceOptions bounds how long WaitForIdle may block. Zero values of MaxPolls and
// Timeout mean no limit.
type ConvergenceOptions struct {
	Interval    time.Duration
	StablePolls int
	MaxPolls    int
	Timeout     time.Duration
}

// ConvergenceDetector waits for the download directory to stop changing.
type ConvergenceDetector struct {
	source repository.SnapshotSource
	opts   ConvergenceOptions
	logger *zap.Logger
	sleep  func(context.Context, time.Duration) error
	onPoll func(polls int, snap entity.DownloadSnapshot)
}

// NewConvergenceDetector creates a detector polling source.
func NewConvergenceDetector(source repository.SnapshotSource, opts ConvergenceOptions, logger *zap.Logger) *ConvergenceDetector {
	if opts.Interval <= 0 {
		opts.Interval = defaultPollInterval
	}
	if opts.StablePolls < 1 {
		opts.StablePolls = 1
	}
	return &ConvergenceDetector{
		source: source,
		opts:   opts,
		logger: logger.Named("convergence"),
		sleep:  sleepContext,
	}
}

// WaitForIdle blocks until StablePolls consecutive snapshot pairs are identical. The first
// snapshot has nothing to compare against, so at least two polls are always taken.
func (d *ConvergenceDetector) WaitForIdle(ctx context.Context) error {
	pollCtx := ctx
	if d.opts.Timeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, d.opts.Timeout)
		defer cancel()
	}
	// A deadline is ours only when the caller's context is still live.
	budgetSpent := func(err error) error {
		if d.opts.Timeout > 0 && pollCtx.Err() != nil && ctx.Err() == nil {
			return fmt.Errorf("%w within %s: %w", ErrNotConverged, d.opts.Timeout, err)
		}
		return err
	}

	var (
		last   entity.DownloadSnapshot
		seen   bool
		stable int
	)
	for polls := 1; ; polls++ {
		current, err := d.source.Snapshot(pollCtx)
		if err != nil {
			return budgetSpent(fmt.Errorf("snapshot download directory: %w", err))
		}
		metrics.ConvergencePollsTotal.Inc()
		metrics.DownloadDirBytes.Set(float64(current.TotalBytes()))
		if d.onPoll != nil {
			d.onPoll(polls, current)
		}

		if seen && last.Equal(current) {
			stable++
		} else {
			stable = 0
		}
		last, seen = current, true

		d.logger.Debug("Polled download directory",
			zap.Int("poll", polls),
			zap.Int("files", len(current)),
			zap.Int64("bytes", current.TotalBytes()),
			zap.Int("stable", stable),
		)
		if stable >= d.opts.StablePolls {
			d.logger.Info("Downloads settled", zap.Int("polls", polls), zap.Int("files", len(current)))
			return nil
		}
		if d.opts.MaxPolls > 0 && polls >= d.opts.MaxPolls {
			return fmt.Errorf("%w after %d polls", ErrNotConverged, polls)
		}

		if err := d.sleep(pollCtx, d.opts.Interval); err != nil {
			return budgetSpent(err)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
