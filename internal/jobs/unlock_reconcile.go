package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"soundstake.io/soundstake/internal/pkg/logger"
)

// UnlockTransferReconcileArgs settles unlock requests stuck in transferring.
type UnlockTransferReconcileArgs struct{}

// Kind returns the job kind identifier.
func (UnlockTransferReconcileArgs) Kind() string { return "unlock_transfer_reconcile" }

// InsertOpts allows one reconciliation per minute.
func (UnlockTransferReconcileArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       river.QueueDefault,
		MaxAttempts: 3,
		UniqueOpts: river.UniqueOpts{
			ByPeriod: time.Minute,
			ByQueue:  true,
			ByArgs:   true,
		},
	}
}

// TransferReconciler re-drives stale transfers to a terminal state.
type TransferReconciler interface {
	ReconcileStaleTransfers(ctx context.Context) (int, error)
}

// UnlockTransferReconcileWorker runs the reconciliation pass.
type UnlockTransferReconcileWorker struct {
	river.WorkerDefaults[UnlockTransferReconcileArgs]
	unlock TransferReconciler
}

// NewUnlockTransferReconcileWorker creates the worker.
func NewUnlockTransferReconcileWorker(unlock TransferReconciler) *UnlockTransferReconcileWorker {
	return &UnlockTransferReconcileWorker{unlock: unlock}
}

// Work reconciles one batch of stale transfers.
func (w *UnlockTransferReconcileWorker) Work(ctx context.Context, _ *river.Job[UnlockTransferReconcileArgs]) error {
	if w == nil || w.unlock == nil {
		return fmt.Errorf("unlock reconcile worker is not initialized")
	}
	settled, err := w.unlock.ReconcileStaleTransfers(ctx)
	if err != nil {
		return fmt.Errorf("reconcile stale transfers: %w", err)
	}
	if settled > 0 {
		logger.Info("Stale unlock transfers reconciled", zap.Int("settled", settled))
	}
	return nil
}
