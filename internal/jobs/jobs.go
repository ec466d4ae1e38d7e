// Package jobs holds the River background jobs: revenue fan-out retries, the
// unprocessed-revenue sweep, stale unlock transfer reconciliation and inbox
// retention cleanup.
//
// Import Path: soundstake.io/soundstake/internal/jobs
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
)

const (
	// QueuePayouts carries revenue distribution work so a burst of fan-outs
	// cannot starve maintenance jobs on the default queue.
	QueuePayouts = "payouts"
)

// InsertFunc inserts one job. It matches the shape of river.Client.Insert
// minus the result.
type InsertFunc func(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) error

// Enqueuer hands fan-out retries to River.
type Enqueuer struct {
	insert InsertFunc
}

// NewEnqueuer wraps a River client.
func NewEnqueuer(client *river.Client[pgx.Tx]) *Enqueuer {
	if client == nil {
		return &Enqueuer{}
	}
	return NewEnqueuerFunc(func(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) error {
		_, err := client.Insert(ctx, args, opts)
		return err
	})
}

// NewEnqueuerFunc builds an Enqueuer from a bare insert function.
func NewEnqueuerFunc(fn InsertFunc) *Enqueuer {
	return &Enqueuer{insert: fn}
}

// EnqueueFanOut schedules a revenue_fanout job for revenueID.
func (e *Enqueuer) EnqueueFanOut(ctx context.Context, revenueID string) error {
	if e == nil || e.insert == nil {
		return fmt.Errorf("job enqueuer is not initialized")
	}
	if revenueID == "" {
		return fmt.Errorf("revenue id is required")
	}
	if err := e.insert(ctx, RevenueFanOutArgs{RevenueID: revenueID}, nil); err != nil {
		return fmt.Errorf("enqueue revenue fan-out %s: %w", revenueID, err)
	}
	return nil
}

// PeriodicSchedule holds the intervals of the periodic jobs.
type PeriodicSchedule struct {
	RevenueSweep      time.Duration
	UnlockReconcile   time.Duration
	NotificationPurge time.Duration
}

// PeriodicJobs builds the periodic job set. A non-positive interval disables
// that job.
func PeriodicJobs(s PeriodicSchedule) []*river.PeriodicJob {
	var out []*river.PeriodicJob
	add := func(every time.Duration, args river.JobArgs) {
		if every <= 0 {
			return
		}
		out = append(out, river.NewPeriodicJob(
			river.PeriodicInterval(every),
			func() (river.JobArgs, *river.InsertOpts) { return args, nil },
			&river.PeriodicJobOpts{RunOnStart: true},
		))
	}
	add(s.RevenueSweep, RevenueSweepArgs{})
	add(s.UnlockReconcile, UnlockTransferReconcileArgs{})
	add(s.NotificationPurge, NotificationCleanupArgs{})
	return out
}
