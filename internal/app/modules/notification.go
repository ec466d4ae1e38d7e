package modules

import (
	"context"

	"github.com/riverqueue/river"

	"soundstake.io/soundstake/internal/api/handlers"
	"soundstake.io/soundstake/internal/jobs"
)

// NotificationModule owns inbox retention. Notifications themselves are
// written by the triggers shared through Infrastructure.
type NotificationModule struct {
	infra *Infrastructure
}

func NewNotificationModule(infra *Infrastructure) *NotificationModule {
	return &NotificationModule{infra: infra}
}

func (m *NotificationModule) Name() string { return "notification" }

func (m *NotificationModule) ContributeServerDeps(_ *handlers.ServerDeps) {}

func (m *NotificationModule) RegisterWorkers(workers *river.Workers) {
	if workers == nil || m == nil || m.infra == nil {
		return
	}
	river.AddWorker(workers, jobs.NewNotificationCleanupWorker(m.infra.Store, m.infra.Config.River.NotificationRetention))
}

func (m *NotificationModule) Shutdown(context.Context) error { return nil }
