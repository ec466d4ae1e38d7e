package jobs

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/riverqueue/river"

	apperrors "soundstake.io/soundstake/internal/pkg/errors"
	"soundstake.io/soundstake/internal/pkg/logger"
	"soundstake.io/soundstake/internal/usecase"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "json"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type recordingInserter struct {
	mu   sync.Mutex
	args []river.JobArgs
	err  error
}

func (r *recordingInserter) insert(_ context.Context, args river.JobArgs, _ *river.InsertOpts) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.args = append(r.args, args)
	return nil
}

func TestEnqueueFanOut(t *testing.T) {
	t.Parallel()

	rec := &recordingInserter{}
	e := NewEnqueuerFunc(rec.insert)
	if err := e.EnqueueFanOut(context.Background(), "rev-1"); err != nil {
		t.Fatalf("EnqueueFanOut() error = %v", err)
	}
	if len(rec.args) != 1 {
		t.Fatalf("inserted %d jobs, want 1", len(rec.args))
	}
	got, ok := rec.args[0].(RevenueFanOutArgs)
	if !ok || got.RevenueID != "rev-1" {
		t.Fatalf("inserted %#v, want RevenueFanOutArgs{rev-1}", rec.args[0])
	}

	if err := e.EnqueueFanOut(context.Background(), ""); err == nil {
		t.Fatal("EnqueueFanOut(\"\") error = nil, want error")
	}

	var nilEnqueuer *Enqueuer
	if err := nilEnqueuer.EnqueueFanOut(context.Background(), "rev-1"); err == nil {
		t.Fatal("nil Enqueuer error = nil, want error")
	}
}

func TestRevenueFanOutArgsInsertOpts(t *testing.T) {
	t.Parallel()

	args := RevenueFanOutArgs{RevenueID: "rev-1"}
	if got := args.Kind(); got != "revenue_fanout" {
		t.Fatalf("Kind() = %q, want revenue_fanout", got)
	}
	opts := args.InsertOpts()
	if opts.Queue != QueuePayouts {
		t.Fatalf("Queue = %q, want %q", opts.Queue, QueuePayouts)
	}
	if opts.MaxAttempts < 2 {
		t.Fatalf("MaxAttempts = %d, want retries", opts.MaxAttempts)
	}
	if !opts.UniqueOpts.ByArgs {
		t.Fatal("UniqueOpts.ByArgs = false, want true")
	}
}

type fakeFanOut struct {
	err   error
	calls []string
}

func (f *fakeFanOut) FanOut(_ context.Context, revenueID string) (*usecase.FanOutResult, error) {
	f.calls = append(f.calls, revenueID)
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.FanOutResult{RevenueID: revenueID}, nil
}

func TestRevenueFanOutWorkerWork(t *testing.T) {
	t.Parallel()

	transient := errors.New("connection reset")
	tests := []struct {
		name       string
		err        error
		wantErr    bool
		wantCancel bool
	}{
		{name: "distributed", err: nil},
		{
			name: "already processed completes",
			err:  apperrors.Conflict(apperrors.CodeRevenueAlreadyProcessed, "already distributed"),
		},
		{
			name:       "unknown event cancels",
			err:        apperrors.NotFound(apperrors.CodeRevenueNotFound, "revenue event rev-1 not found"),
			wantErr:    true,
			wantCancel: true,
		},
		{name: "transient error retries", err: transient, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeFanOut{err: tt.err}
			w := NewRevenueFanOutWorker(fake)
			err := w.Work(context.Background(), &river.Job[RevenueFanOutArgs]{Args: RevenueFanOutArgs{RevenueID: "rev-1"}})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Work() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(fake.calls) != 1 || fake.calls[0] != "rev-1" {
				t.Fatalf("FanOut calls = %v, want [rev-1]", fake.calls)
			}
			if tt.wantCancel && !strings.Contains(err.Error(), apperrors.CodeRevenueNotFound) {
				t.Fatalf("Work() error = %v, want cancellation carrying %s", err, apperrors.CodeRevenueNotFound)
			}
			if tt.err == transient && !errors.Is(err, transient) {
				t.Fatalf("Work() error = %v, want the transient error returned for retry", err)
			}
		})
	}
}

func TestRevenueFanOutWorkerWork_Uninitialized(t *testing.T) {
	t.Parallel()

	var w *RevenueFanOutWorker
	err := w.Work(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("Work() error = %v, want contains %q", err, "not initialized")
	}
}

type fakePending struct {
	ids       []string
	olderThan time.Duration
	limit     int
}

func (f *fakePending) PendingRevenueIDs(_ context.Context, olderThan time.Duration, limit int) ([]string, error) {
	f.olderThan = olderThan
	f.limit = limit
	return f.ids, nil
}

func TestRevenueSweepWorkerWork(t *testing.T) {
	t.Parallel()

	pending := &fakePending{ids: []string{"rev-1", "rev-2"}}
	rec := &recordingInserter{}
	w := NewRevenueSweepWorker(pending, NewEnqueuerFunc(rec.insert), 0)

	if err := w.Work(context.Background(), nil); err != nil {
		t.Fatalf("Work() error = %v", err)
	}
	if pending.olderThan != DefaultSweepAfter {
		t.Fatalf("olderThan = %s, want %s", pending.olderThan, DefaultSweepAfter)
	}
	if pending.limit != sweepBatchSize {
		t.Fatalf("limit = %d, want %d", pending.limit, sweepBatchSize)
	}
	if len(rec.args) != 2 {
		t.Fatalf("enqueued %d jobs, want 2", len(rec.args))
	}
	for i, id := range pending.ids {
		if got := rec.args[i].(RevenueFanOutArgs).RevenueID; got != id {
			t.Fatalf("job %d revenue = %q, want %q", i, got, id)
		}
	}
}

func TestRevenueSweepWorkerWork_EnqueueFailure(t *testing.T) {
	t.Parallel()

	pending := &fakePending{ids: []string{"rev-1"}}
	rec := &recordingInserter{err: errors.New("queue unavailable")}
	w := NewRevenueSweepWorker(pending, NewEnqueuerFunc(rec.insert), time.Minute)

	err := w.Work(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "enqueued 0 of 1") {
		t.Fatalf("Work() error = %v, want partial enqueue error", err)
	}
}

type fakeReconciler struct {
	settled int
	err     error
	calls   int
}

func (f *fakeReconciler) ReconcileStaleTransfers(context.Context) (int, error) {
	f.calls++
	return f.settled, f.err
}

func TestUnlockTransferReconcileWorkerWork(t *testing.T) {
	t.Parallel()

	t.Run("settles a batch", func(t *testing.T) {
		r := &fakeReconciler{settled: 2}
		if err := NewUnlockTransferReconcileWorker(r).Work(context.Background(), nil); err != nil {
			t.Fatalf("Work() error = %v", err)
		}
		if r.calls != 1 {
			t.Fatalf("calls = %d, want 1", r.calls)
		}
	})

	t.Run("propagates failure", func(t *testing.T) {
		cause := errors.New("db down")
		r := &fakeReconciler{err: cause}
		err := NewUnlockTransferReconcileWorker(r).Work(context.Background(), nil)
		if !errors.Is(err, cause) {
			t.Fatalf("Work() error = %v, want %v", err, cause)
		}
	})

	t.Run("uninitialized", func(t *testing.T) {
		err := (&UnlockTransferReconcileWorker{}).Work(context.Background(), nil)
		if err == nil || !strings.Contains(err.Error(), "not initialized") {
			t.Fatalf("Work() error = %v, want contains %q", err, "not initialized")
		}
	})
}

func TestPeriodicJobs(t *testing.T) {
	t.Parallel()

	all := PeriodicJobs(PeriodicSchedule{
		RevenueSweep:      time.Minute,
		UnlockReconcile:   5 * time.Minute,
		NotificationPurge: 24 * time.Hour,
	})
	if len(all) != 3 {
		t.Fatalf("PeriodicJobs() = %d jobs, want 3", len(all))
	}

	some := PeriodicJobs(PeriodicSchedule{UnlockReconcile: time.Minute})
	if len(some) != 1 {
		t.Fatalf("PeriodicJobs() with one interval = %d jobs, want 1", len(some))
	}
}
