package jobs

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	apperrors "soundstake.io/soundstake/internal/pkg/errors"
	"soundstake.io/soundstake/internal/pkg/logger"
	"soundstake.io/soundstake/internal/usecase"
)

// RevenueFanOutArgs retries the distribution of one revenue event.
type RevenueFanOutArgs struct {
	RevenueID string `json:"revenue_id"`
}

// Kind returns the job kind identifier.
func (RevenueFanOutArgs) Kind() string { return "revenue_fanout" }

// InsertOpts keeps at most one live job per revenue event.
func (RevenueFanOutArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       QueuePayouts,
		MaxAttempts: 10,
		UniqueOpts: river.UniqueOpts{
			ByArgs:  true,
			ByQueue: true,
		},
	}
}

// FanOutRunner distributes a revenue event.
type FanOutRunner interface {
	FanOut(ctx context.Context, revenueID string) (*usecase.FanOutResult, error)
}

// RevenueFanOutWorker runs a queued fan-out. Already-distributed events
// complete the job; unknown events cancel it; everything else is retried.
type RevenueFanOutWorker struct {
	river.WorkerDefaults[RevenueFanOutArgs]
	payouts FanOutRunner
}

// NewRevenueFanOutWorker creates the worker.
func NewRevenueFanOutWorker(payouts FanOutRunner) *RevenueFanOutWorker {
	return &RevenueFanOutWorker{payouts: payouts}
}

// Work distributes the event named by the job args.
func (w *RevenueFanOutWorker) Work(ctx context.Context, job *river.Job[RevenueFanOutArgs]) error {
	if w == nil || w.payouts == nil {
		return fmt.Errorf("revenue fan-out worker is not initialized")
	}
	if job == nil || job.Args.RevenueID == "" {
		return river.JobCancel(fmt.Errorf("revenue fan-out job without revenue id"))
	}
	id := job.Args.RevenueID
	attempt := 0
	if job.JobRow != nil {
		attempt = job.Attempt
	}

	res, err := w.payouts.FanOut(ctx, id)
	switch {
	case err == nil:
		logger.Info("Revenue fan-out job completed",
			zap.String("revenue_id", id),
			zap.Int("payouts", len(res.Payouts)),
			zap.Int("attempt", attempt),
		)
		return nil
	case apperrors.HasCode(err, apperrors.CodeRevenueAlreadyProcessed):
		logger.Info("Revenue already distributed, nothing to do", zap.String("revenue_id", id))
		return nil
	case apperrors.HasCode(err, apperrors.CodeRevenueNotFound):
		return river.JobCancel(err)
	default:
		logger.Warn("Revenue fan-out attempt failed",
			zap.String("revenue_id", id),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return err
	}
}
