package modules

import (
	"context"

	"github.com/riverqueue/river"
	"github.com/shopspring/decimal"

	"soundstake.io/soundstake/internal/api/handlers"
	"soundstake.io/soundstake/internal/governance/unlock"
	"soundstake.io/soundstake/internal/jobs"
)

// UnlockModule wires the milestone unlock protocol and transfer reconciliation.
type UnlockModule struct {
	protocol *unlock.Protocol
}

// NewUnlockModule creates the unlock module.
func NewUnlockModule(infra *Infrastructure) *UnlockModule {
	cfg := infra.Config
	protocol := unlock.NewProtocol(infra.Store, infra.Payments, infra.Files, unlock.Config{
		MinFundingPercent:  decimal.NewFromFloat(cfg.Unlock.MinFundingPercent),
		TransferTimeout:    cfg.Payments.TransferTimeout,
		TransferStaleAfter: cfg.Unlock.TransferStaleAfter,
	})
	protocol.SetNotifier(infra.Notifier)
	protocol.SetEventDispatcher(infra.Events)
	return &UnlockModule{protocol: protocol}
}

func (m *UnlockModule) Name() string { return "unlock" }

func (m *UnlockModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil {
		return
	}
	deps.Unlock = m.protocol
}

func (m *UnlockModule) RegisterWorkers(workers *river.Workers) {
	if workers == nil || m == nil {
		return
	}
	river.AddWorker(workers, jobs.NewUnlockTransferReconcileWorker(m.protocol))
}

func (m *UnlockModule) Shutdown(context.Context) error { return nil }
