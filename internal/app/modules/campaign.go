package modules

import (
	"context"

	"github.com/riverqueue/river"

	"soundstake.io/soundstake/internal/api/handlers"
	"soundstake.io/soundstake/internal/service"
	"soundstake.io/soundstake/internal/usecase"
)

// CampaignModule wires campaign creation, review and the money-in use cases.
type CampaignModule struct {
	campaigns     *usecase.CampaignUseCase
	contributions *usecase.ContributionUseCase
	investments   *usecase.InvestmentUseCase
}

// NewCampaignModule creates the campaign module. Streaming lookups for ROI
// projection run on the lookup pool.
func NewCampaignModule(infra *Infrastructure) *CampaignModule {
	cfg := infra.Config
	roi := service.NewROIProjectionEngine(infra.RateTables)
	aggregator := service.NewPerformanceAggregator(infra.Streaming, infra.RateTables, infra.Pools.Lookup, cfg.Streaming.LookupTimeout)

	campaigns := usecase.NewCampaignUseCase(
		infra.Store,
		infra.Entitlement,
		infra.Verifier,
		aggregator,
		roi,
		infra.Payments,
	).WithAutoActivate(cfg.Campaigns.AutoActivate)
	campaigns.SetNotifier(infra.Notifier)
	campaigns.SetEventDispatcher(infra.Events)

	contributions := usecase.NewContributionUseCase(infra.Store)
	contributions.SetEventDispatcher(infra.Events)

	investments := usecase.NewInvestmentUseCase(infra.Store, roi)
	investments.SetEventDispatcher(infra.Events)

	return &CampaignModule{
		campaigns:     campaigns,
		contributions: contributions,
		investments:   investments,
	}
}

func (m *CampaignModule) Name() string { return "campaign" }

func (m *CampaignModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil {
		return
	}
	deps.Campaigns = m.campaigns
	deps.Contributions = m.contributions
	deps.Investments = m.investments
}

func (m *CampaignModule) RegisterWorkers(_ *river.Workers) {}

func (m *CampaignModule) Shutdown(context.Context) error { return nil }
