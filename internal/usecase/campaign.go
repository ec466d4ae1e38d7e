// Package usecase provides application use cases.
//
// Use cases are reusable across HTTP, CLI and background jobs. Transactions
// are owned here; audit, notifications and domain events follow the commit.
//
// Import Path: soundstake.io/soundstake/internal/usecase
package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"soundstake.io/soundstake/internal/domain"
	"soundstake.io/soundstake/internal/governance/audit"
	"soundstake.io/soundstake/internal/notification"
	apperrors "soundstake.io/soundstake/internal/pkg/errors"
	"soundstake.io/soundstake/internal/pkg/logger"
	"soundstake.io/soundstake/internal/provider"
	"soundstake.io/soundstake/internal/repository"
	"soundstake.io/soundstake/internal/service"
)

// MilestoneInput describes one funding tranche of a new campaign.
type MilestoneInput struct {
	Name        string          `json:"name" validate:"required,max=120"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Description string          `json:"description" validate:"max=2000"`
	Order       int             `json:"order" validate:"gte=1"`
}

// CreateCampaignInput is an artist's campaign submission.
type CreateCampaignInput struct {
	Title       string           `json:"title" validate:"required,max=200"`
	SongTitle   string           `json:"song_title" validate:"required,max=200"`
	ArtistName  string           `json:"artist_name" validate:"required,max=200"`
	Genre       string           `json:"genre" validate:"required,max=50"`
	Duration    string           `json:"duration" validate:"required,oneof=6_months 1_year 2_years 5_years lifetime"`
	FundingGoal decimal.Decimal  `json:"funding_goal" validate:"gt=0"`
	Links       domain.SongLinks `json:"links"`
	Milestones  []MilestoneInput `json:"milestones" validate:"required,min=1,dive"`
}

// CampaignView is a campaign with its live funding numbers.
type CampaignView struct {
	*domain.Campaign
	Funding domain.FundingStats `json:"funding"`
}

// CampaignUseCase owns the campaign lifecycle: creation with ROI projection,
// admin review and artist payout destinations.
type CampaignUseCase struct {
	store       repository.Store
	entitlement provider.SubscriptionEntitlement
	verifier    provider.MetadataVerifier
	aggregator  *service.PerformanceAggregator
	roi         *service.ROIProjectionEngine
	payments    provider.PaymentGateway

	autoActivate bool

	auditLogger *audit.Logger
	notifier    *notification.Triggers
	events      *domain.EventDispatcher
	now         func() time.Time
}

// NewCampaignUseCase creates a new CampaignUseCase.
func NewCampaignUseCase(
	store repository.Store,
	entitlement provider.SubscriptionEntitlement,
	verifier provider.MetadataVerifier,
	aggregator *service.PerformanceAggregator,
	roi *service.ROIProjectionEngine,
	payments provider.PaymentGateway,
) *CampaignUseCase {
	return &CampaignUseCase{
		store:       store,
		entitlement: entitlement,
		verifier:    verifier,
		aggregator:  aggregator,
		roi:         roi,
		payments:    payments,
		auditLogger: audit.NewLogger(store),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithAutoActivate lists verified campaigns immediately instead of waiting for review.
func (uc *CampaignUseCase) WithAutoActivate(on bool) *CampaignUseCase {
	uc.autoActivate = on
	return uc
}

// SetNotifier configures the notification trigger service.
func (uc *CampaignUseCase) SetNotifier(n *notification.Triggers) { uc.notifier = n }

// SetEventDispatcher configures where domain events go after commit.
func (uc *CampaignUseCase) SetEventDispatcher(d *domain.EventDispatcher) { uc.events = d }

// CreateCampaign validates, verifies and prices a new campaign, then stores it.
func (uc *CampaignUseCase) CreateCampaign(ctx context.Context, artistID string, in CreateCampaignInput) (*domain.Campaign, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	milestones, err := buildMilestones(in.Milestones, in.FundingGoal)
	if err != nil {
		return nil, err
	}

	entitled, err := uc.entitlement.HasActiveEntitlement(ctx, artistID)
	if err != nil {
		return nil, apperrors.External(apperrors.CodeLookupFailed, "could not check subscription", true, err)
	}
	if !entitled {
		return nil, apperrors.Forbidden(apperrors.CodeEntitlementRequired,
			"an active artist subscription is required to create campaigns")
	}

	summary, err := uc.verifier.Verify(ctx, in.Links)
	if err != nil {
		return nil, apperrors.External(apperrors.CodeLookupFailed, "song metadata verification failed", true, err)
	}
	summary, err = service.AssessVerification(summary)
	if err != nil {
		return nil, err
	}

	snapshot, err := uc.aggregator.Aggregate(ctx, artistID)
	if err != nil {
		return nil, fmt.Errorf("aggregate performance: %w", err)
	}
	duration := domain.CampaignDuration(in.Duration)
	projection := uc.roi.CalculateAutomaticROI(domain.CampaignInputs{
		Genre:       in.Genre,
		Duration:    duration,
		FundingGoal: in.FundingGoal,
	}, snapshot, summary)
	expectedROI := projection.ExpectedROIPercentage

	status := domain.CampaignStatusDraft
	if uc.autoActivate && summary.IsVerified {
		status = domain.CampaignStatusActive
	}

	now := uc.now()
	campaign := &domain.Campaign{
		ID:                    newID(),
		ArtistID:              artistID,
		Title:                 strings.TrimSpace(in.Title),
		SongTitle:             strings.TrimSpace(in.SongTitle),
		ArtistName:            strings.TrimSpace(in.ArtistName),
		Genre:                 strings.TrimSpace(in.Genre),
		Duration:              duration,
		FundingGoal:           in.FundingGoal,
		ExpectedROIPercentage: &expectedROI,
		AutomaticROI:          &projection,
		Verification:          &summary,
		Status:                status,
		IsActive:              status == domain.CampaignStatusActive,
		Milestones:            milestones,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := campaign.CheckMilestoneInvariant(); err != nil {
		return nil, apperrors.Invariant(err.Error())
	}
	if err := uc.store.CreateCampaign(ctx, campaign); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}

	_ = uc.auditLogger.LogCampaignAction(ctx, "created", campaign.ID, artistID, map[string]interface{}{
		"status":       string(campaign.Status),
		"funding_goal": campaign.FundingGoal.String(),
		"expected_roi": expectedROI.String(),
		"verified":     summary.IsVerified,
	})
	uc.events.Emit(ctx, domain.EventCampaignCreated, domain.AggregateCampaign, campaign.ID, artistID,
		campaignPayload(campaign, ""))

	logger.Info("Campaign created",
		zap.String("campaign_id", campaign.ID),
		zap.String("actor", artistID),
		zap.String("status", string(campaign.Status)),
		zap.String("expected_roi", expectedROI.String()),
		zap.Bool("roi_fallback", projection.IsFallback),
	)
	return campaign, nil
}

// ReviewCampaign moves a draft campaign to active or rejected.
func (uc *CampaignUseCase) ReviewCampaign(ctx context.Context, adminID, campaignID, action, reason string) (*domain.Campaign, error) {
	decision, err := domain.ParseDecision(action)
	if err != nil {
		return nil, apperrors.Validation(apperrors.CodeInvalidDecision,
			fmt.Sprintf("action must be approve or reject, got %q", action))
	}
	to := domain.CampaignStatusActive
	eventType := domain.EventCampaignApproved
	if decision == domain.DecisionReject {
		to = domain.CampaignStatusRejected
		eventType = domain.EventCampaignRejected
	}

	ok, err := uc.store.UpdateCampaignStatus(ctx, campaignID, domain.CampaignStatusDraft, to)
	if err != nil {
		return nil, fmt.Errorf("review campaign: %w", err)
	}
	if !ok {
		if _, err := uc.store.GetCampaign(ctx, campaignID); errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrCampaignNotFound(campaignID)
		}
		return nil, apperrors.Conflict(apperrors.CodeCampaignNotDraft, "only draft campaigns can be reviewed")
	}

	campaign, err := uc.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("reload campaign: %w", err)
	}

	_ = uc.auditLogger.LogCampaignAction(ctx, string(to), campaign.ID, adminID, map[string]interface{}{
		"reason": reason,
	})
	uc.notifier.OnCampaignReviewed(ctx, campaign, adminID)
	uc.events.Emit(ctx, eventType, domain.AggregateCampaign, campaign.ID, adminID, campaignPayload(campaign, adminID))

	logger.Info("Campaign reviewed",
		zap.String("campaign_id", campaign.ID),
		zap.String("status", string(campaign.Status)),
		zap.String("actor", adminID),
	)
	return campaign, nil
}

// GetCampaign returns a campaign with its live funding stats.
func (uc *CampaignUseCase) GetCampaign(ctx context.Context, campaignID string) (*CampaignView, error) {
	campaign, err := loadCampaign(ctx, uc.store, campaignID)
	if err != nil {
		return nil, err
	}
	return uc.view(ctx, campaign)
}

// GetFundingStats returns the live funding view.
func (uc *CampaignUseCase) GetFundingStats(ctx context.Context, campaignID string) (domain.FundingStats, error) {
	campaign, err := loadCampaign(ctx, uc.store, campaignID)
	if err != nil {
		return domain.FundingStats{}, err
	}
	stats, err := service.NewFundingLedger(uc.store).Stats(ctx, campaign)
	if err != nil {
		return domain.FundingStats{}, err
	}
	stats.FundingPercentage = stats.FundingPercentage.Round(2)
	return stats, nil
}

// ListArtistCampaigns lists an artist's campaigns, newest first.
func (uc *CampaignUseCase) ListArtistCampaigns(ctx context.Context, artistID string) ([]*CampaignView, error) {
	campaigns, err := uc.store.ListCampaignsByArtist(ctx, artistID)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	views := make([]*CampaignView, 0, len(campaigns))
	for _, c := range campaigns {
		v, err := uc.view(ctx, c)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// ConnectPayoutDestination records the account milestone transfers go to.
func (uc *CampaignUseCase) ConnectPayoutDestination(ctx context.Context, artistID, accountRef string) (*domain.PayoutDestination, error) {
	accountRef = strings.TrimSpace(accountRef)
	if accountRef == "" {
		return nil, apperrors.Validation(apperrors.CodeValidationFailed, "account_ref is required")
	}
	entitled, err := uc.entitlement.HasActiveEntitlement(ctx, artistID)
	if err != nil {
		return nil, apperrors.External(apperrors.CodeLookupFailed, "could not check subscription", true, err)
	}
	if !entitled {
		return nil, apperrors.Forbidden(apperrors.CodeEntitlementRequired,
			"an active artist subscription is required to receive payouts")
	}

	verified, err := uc.payments.VerifyDestination(ctx, accountRef)
	if err != nil {
		return nil, apperrors.External(apperrors.CodeLookupFailed, "could not verify payout destination", true, err)
	}
	dest := &domain.PayoutDestination{
		ArtistID:    artistID,
		AccountRef:  accountRef,
		Verified:    verified,
		ConnectedAt: uc.now(),
	}
	if err := uc.store.UpsertPayoutDestination(ctx, dest); err != nil {
		return nil, fmt.Errorf("save payout destination: %w", err)
	}

	logger.Info("Payout destination connected",
		zap.String("actor", artistID),
		zap.Bool("verified", verified),
	)
	return dest, nil
}

func (uc *CampaignUseCase) view(ctx context.Context, c *domain.Campaign) (*CampaignView, error) {
	stats, err := service.NewFundingLedger(uc.store).Stats(ctx, c)
	if err != nil {
		return nil, err
	}
	stats.FundingPercentage = stats.FundingPercentage.Round(2)
	return &CampaignView{Campaign: c, Funding: stats}, nil
}

// buildMilestones checks order uniqueness and the sum invariant, then sorts by order.
func buildMilestones(in []MilestoneInput, goal decimal.Decimal) ([]domain.Milestone, error) {
	seen := make(map[int]struct{}, len(in))
	sum := decimal.Zero
	out := make([]domain.Milestone, 0, len(in))
	for _, m := range in {
		if _, dup := seen[m.Order]; dup {
			return nil, apperrors.Validation(apperrors.CodeValidationFailed,
				fmt.Sprintf("milestone order %d is used more than once", m.Order))
		}
		seen[m.Order] = struct{}{}
		sum = sum.Add(m.Amount)
		out = append(out, domain.Milestone{
			ID:          newID(),
			Name:        strings.TrimSpace(m.Name),
			Amount:      m.Amount,
			Description: m.Description,
			Order:       m.Order,
			Status:      domain.MilestoneStatusPending,
		})
	}
	if !sum.Equal(goal) {
		return nil, apperrors.Validation(apperrors.CodeMilestoneSumMismatch,
			fmt.Sprintf("milestone amounts add up to %s but the funding goal is %s", sum, goal)).
			WithParams(map[string]interface{}{
				"milestone_sum": sum.String(),
				"funding_goal":  goal.String(),
			})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func loadCampaign(ctx context.Context, q repository.CampaignStore, campaignID string) (*domain.Campaign, error) {
	c, err := q.GetCampaign(ctx, campaignID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrCampaignNotFound(campaignID)
		}
		return nil, fmt.Errorf("load campaign: %w", err)
	}
	return c, nil
}

func campaignPayload(c *domain.Campaign, reviewer string) domain.CampaignPayload {
	p := domain.CampaignPayload{
		CampaignID:  c.ID,
		ArtistID:    c.ArtistID,
		Status:      c.Status,
		FundingGoal: c.FundingGoal.String(),
		Reviewer:    reviewer,
	}
	if c.ExpectedROIPercentage != nil {
		p.ExpectedROI = c.ExpectedROIPercentage.String()
	}
	return p
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
