package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"soundstake.io/soundstake/internal/pkg/logger"
)

const (
	// DefaultSweepAfter is how long an event may stay undistributed before
	// the sweep picks it up.
	DefaultSweepAfter = 10 * time.Minute

	sweepBatchSize = 100
)

// RevenueSweepArgs is the periodic scan for undistributed revenue events.
type RevenueSweepArgs struct{}

// Kind returns the job kind identifier.
func (RevenueSweepArgs) Kind() string { return "revenue_sweep" }

// InsertOpts allows one sweep per queue at a time.
func (RevenueSweepArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       river.QueueDefault,
		MaxAttempts: 1,
		UniqueOpts: river.UniqueOpts{
			ByPeriod: time.Minute,
			ByQueue:  true,
			ByArgs:   true,
		},
	}
}

// PendingRevenueLister finds events that are still unprocessed.
type PendingRevenueLister interface {
	PendingRevenueIDs(ctx context.Context, olderThan time.Duration, limit int) ([]string, error)
}

// RevenueSweepWorker enqueues a fan-out for each stale event.
type RevenueSweepWorker struct {
	river.WorkerDefaults[RevenueSweepArgs]
	payouts    PendingRevenueLister
	enqueuer   *Enqueuer
	sweepAfter time.Duration
}

// NewRevenueSweepWorker creates the worker. Non-positive sweepAfter falls back
// to DefaultSweepAfter.
func NewRevenueSweepWorker(payouts PendingRevenueLister, enqueuer *Enqueuer, sweepAfter time.Duration) *RevenueSweepWorker {
	if sweepAfter <= 0 {
		sweepAfter = DefaultSweepAfter
	}
	return &RevenueSweepWorker{payouts: payouts, enqueuer: enqueuer, sweepAfter: sweepAfter}
}

// Work lists stale events and enqueues them. Fan-out jobs are unique by args,
// so an event already waiting in the queue is not duplicated.
func (w *RevenueSweepWorker) Work(ctx context.Context, _ *river.Job[RevenueSweepArgs]) error {
	if w == nil || w.payouts == nil || w.enqueuer == nil {
		return fmt.Errorf("revenue sweep worker is not initialized")
	}

	ids, err := w.payouts.PendingRevenueIDs(ctx, w.sweepAfter, sweepBatchSize)
	if err != nil {
		return fmt.Errorf("list pending revenue: %w", err)
	}
	enqueued := 0
	for _, id := range ids {
		if err := w.enqueuer.EnqueueFanOut(ctx, id); err != nil {
			logger.Warn("Revenue sweep failed to enqueue fan-out",
				zap.String("revenue_id", id),
				zap.Error(err),
			)
			continue
		}
		enqueued++
	}
	if len(ids) > 0 {
		logger.Info("Revenue sweep completed",
			zap.Int("pending", len(ids)),
			zap.Int("enqueued", enqueued),
		)
	}
	if enqueued < len(ids) {
		return fmt.Errorf("revenue sweep enqueued %d of %d events", enqueued, len(ids))
	}
	return nil
}
