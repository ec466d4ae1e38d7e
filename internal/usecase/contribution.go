package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"soundstake.io/soundstake/internal/domain"
	"soundstake.io/soundstake/internal/governance/audit"
	apperrors "soundstake.io/soundstake/internal/pkg/errors"
	"soundstake.io/soundstake/internal/pkg/logger"
	"soundstake.io/soundstake/internal/repository"
	"soundstake.io/soundstake/internal/service"
)

// ContributionInput is a captured payment reported by the payment flow.
type ContributionInput struct {
	InvestorID      string
	CampaignID      string
	Amount          decimal.Decimal
	TransactionID   string
	PaymentIntentID string
}

// ContributionUseCase records money coming into campaigns.
type ContributionUseCase struct {
	store       repository.Store
	auditLogger *audit.Logger
	events      *domain.EventDispatcher
	now         func() time.Time
}

// NewContributionUseCase creates a new ContributionUseCase.
func NewContributionUseCase(store repository.Store) *ContributionUseCase {
	return &ContributionUseCase{
		store:       store,
		auditLogger: audit.NewLogger(store),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetEventDispatcher configures where domain events go after commit.
func (uc *ContributionUseCase) SetEventDispatcher(d *domain.EventDispatcher) { uc.events = d }

// RecordContribution stores a successful payment. The campaign row is locked
// for the duration so concurrent contributions cannot overshoot the goal.
func (uc *ContributionUseCase) RecordContribution(ctx context.Context, in ContributionInput) (*domain.Contribution, error) {
	var recorded *domain.Contribution
	err := uc.store.InTx(ctx, func(tx repository.Tx) error {
		c, _, err := recordContributionTx(ctx, tx, in, uc.now())
		recorded = c
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.events.Emit(ctx, domain.EventContributionRecorded, domain.AggregateCampaign, recorded.CampaignID, recorded.InvestorID,
		domain.MoneyInPayload{
			CampaignID:     recorded.CampaignID,
			InvestorID:     recorded.InvestorID,
			ContributionID: recorded.ID,
			Amount:         recorded.Amount.StringFixed(2),
		})
	logger.Info("Contribution recorded",
		zap.String("campaign_id", recorded.CampaignID),
		zap.String("contribution_id", recorded.ID),
		zap.String("actor", recorded.InvestorID),
		logger.Money("amount", recorded.Amount),
	)
	return recorded, nil
}

// ReconcileContribution applies a payment-provider status correction. Flipping
// a failed payment to success is subject to the same funding cap as a new one.
func (uc *ContributionUseCase) ReconcileContribution(ctx context.Context, paymentIntentID, status string) (*domain.Contribution, error) {
	to := domain.ContributionStatus(strings.ToLower(strings.TrimSpace(status)))
	if to != domain.ContributionStatusSuccess && to != domain.ContributionStatusFailed {
		return nil, apperrors.Validation(apperrors.CodeValidationFailed,
			fmt.Sprintf("status must be success or failed, got %q", status))
	}
	if paymentIntentID == "" {
		return nil, apperrors.Validation(apperrors.CodeValidationFailed, "payment_intent_id is required")
	}

	var updated *domain.Contribution
	err := uc.store.InTx(ctx, func(tx repository.Tx) error {
		c, err := tx.UpdateContributionStatus(ctx, paymentIntentID, to)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NotFound(apperrors.CodeContributionNotFound,
					fmt.Sprintf("no contribution for payment intent %s", paymentIntentID))
			}
			return fmt.Errorf("update contribution: %w", err)
		}
		updated = c
		if to != domain.ContributionStatusSuccess {
			return nil
		}

		campaign, err := tx.LockCampaign(ctx, c.CampaignID)
		if err != nil {
			return fmt.Errorf("lock campaign: %w", err)
		}
		raised, err := service.NewFundingLedger(tx).TotalRaised(ctx, c.CampaignID)
		if err != nil {
			return err
		}
		if raised.GreaterThan(campaign.FundingGoal) {
			return apperrors.Conflict(apperrors.CodeContributionExceedsGoal,
				"confirming this payment would exceed the funding goal").
				WithParams(map[string]interface{}{"payment_intent_id": paymentIntentID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = uc.auditLogger.LogAction(ctx, "contribution.reconciled", "contribution", updated.ID, "payments-webhook",
		map[string]interface{}{
			"payment_intent_id": paymentIntentID,
			"status":            string(to),
		})
	logger.Info("Contribution reconciled",
		zap.String("campaign_id", updated.CampaignID),
		zap.String("contribution_id", updated.ID),
		zap.String("status", string(to)),
	)
	return updated, nil
}

// recordContributionTx runs the capped insert inside tx. It returns the locked
// campaign so callers can derive more records in the same transaction.
func recordContributionTx(ctx context.Context, tx repository.Tx, in ContributionInput, now time.Time) (*domain.Contribution, *domain.Campaign, error) {
	campaign, err := tx.LockCampaign(ctx, in.CampaignID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.ErrCampaignNotFound(in.CampaignID)
		}
		return nil, nil, fmt.Errorf("lock campaign: %w", err)
	}
	if campaign.Status != domain.CampaignStatusActive || !campaign.IsActive {
		return nil, nil, apperrors.Conflict(apperrors.CodeCampaignNotActive,
			"contributions are only accepted for active campaigns")
	}

	stats, err := service.NewFundingLedger(tx).Stats(ctx, campaign)
	if err != nil {
		return nil, nil, err
	}
	if err := service.CheckContribution(stats, in.Amount); err != nil {
		return nil, nil, err
	}

	expected := decimal.Zero
	if campaign.ExpectedROIPercentage != nil {
		expected = service.InvestorReturnFromROI(in.Amount, *campaign.ExpectedROIPercentage).ProjectedProfit
	}
	c := &domain.Contribution{
		ID:              newID(),
		InvestorID:      in.InvestorID,
		CampaignID:      campaign.ID,
		Amount:          in.Amount,
		Status:          domain.ContributionStatusSuccess,
		TransactionID:   in.TransactionID,
		PaymentIntentID: in.PaymentIntentID,
		ExpectedReturn:  expected,
		TransactionDate: now,
		CreatedAt:       now,
	}
	if err := tx.InsertContribution(ctx, c); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, nil, apperrors.Conflict(apperrors.CodeDuplicateContribution,
				fmt.Sprintf("payment %s was already recorded", in.PaymentIntentID))
		}
		return nil, nil, fmt.Errorf("insert contribution: %w", err)
	}
	return c, campaign, nil
}
