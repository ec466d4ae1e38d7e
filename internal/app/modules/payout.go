package modules

import (
	"context"

	"github.com/riverqueue/river"

	"soundstake.io/soundstake/internal/api/handlers"
	"soundstake.io/soundstake/internal/jobs"
	"soundstake.io/soundstake/internal/usecase"
)

// PayoutModule wires revenue distribution and its retry workers.
type PayoutModule struct {
	infra   *Infrastructure
	payouts *usecase.PayoutUseCase
}

// NewPayoutModule creates the payout module. Failed fan-outs are retried
// through the shared enqueuer.
func NewPayoutModule(infra *Infrastructure) *PayoutModule {
	payouts := usecase.NewPayoutUseCase(infra.Store)
	payouts.SetEnqueuer(infra.Enqueuer)
	payouts.SetNotifier(infra.Notifier)
	payouts.SetEventDispatcher(infra.Events)
	return &PayoutModule{infra: infra, payouts: payouts}
}

func (m *PayoutModule) Name() string { return "payout" }

func (m *PayoutModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil {
		return
	}
	deps.Payouts = m.payouts
}

func (m *PayoutModule) RegisterWorkers(workers *river.Workers) {
	if workers == nil || m == nil || m.infra == nil {
		return
	}
	river.AddWorker(workers, jobs.NewRevenueFanOutWorker(m.payouts))
	river.AddWorker(workers, jobs.NewRevenueSweepWorker(m.payouts, m.infra.Enqueuer, m.infra.Config.Payouts.SweepAfter))
}

func (m *PayoutModule) Shutdown(context.Context) error { return nil }
