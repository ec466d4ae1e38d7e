// Package app is the composition root. Bootstrap only orchestrates; each
// module owns its own wiring.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/riverqueue/river"

	"soundstake.io/soundstake/internal/api/handlers"
	"soundstake.io/soundstake/internal/app/modules"
	"soundstake.io/soundstake/internal/config"
	"soundstake.io/soundstake/internal/infrastructure"
	"soundstake.io/soundstake/internal/jobs"
	"soundstake.io/soundstake/internal/pkg/worker"
	"soundstake.io/soundstake/internal/provider"
)

// Application holds composed application dependencies.
type Application struct {
	Config  *config.Config
	Router  *gin.Engine
	DB      *infrastructure.DatabaseClients
	Pools   *worker.Pools
	Health  *provider.HealthChecker
	Modules []modules.Module

	infra *modules.Infrastructure
}

// Bootstrap initializes all dependencies using module-oriented manual DI.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	infra, err := modules.NewInfrastructure(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init infrastructure: %w", err)
	}

	allModules := []modules.Module{
		modules.NewCampaignModule(infra),
		modules.NewPayoutModule(infra),
		modules.NewUnlockModule(infra),
		modules.NewNotificationModule(infra),
	}

	workers := river.NewWorkers()
	for _, mod := range allModules {
		mod.RegisterWorkers(workers)
	}
	if err := infra.InitRiver(workers, jobs.PeriodicJobs(periodicSchedule(cfg))); err != nil {
		infra.Close()
		return nil, fmt.Errorf("init river workers: %w", err)
	}

	server := handlers.NewServer(modules.NewServerDeps(cfg, infra, allModules))

	return &Application{
		Config:  cfg,
		Router:  newRouter(cfg, server, modules.NewJWTConfig(cfg)),
		DB:      infra.DB,
		Pools:   infra.Pools,
		Health:  infra.HealthCheck,
		Modules: allModules,
		infra:   infra,
	}, nil
}

// periodicSchedule maps config intervals onto River periodic jobs. Notification
// retention is swept daily.
func periodicSchedule(cfg *config.Config) jobs.PeriodicSchedule {
	return jobs.PeriodicSchedule{
		RevenueSweep:      cfg.Payouts.SweepInterval,
		UnlockReconcile:   cfg.Unlock.ReconcileInterval,
		NotificationPurge: notificationPurgeInterval,
	}
}
