package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"soundstake.io/soundstake/internal/domain"
	apperrors "soundstake.io/soundstake/internal/pkg/errors"
	"soundstake.io/soundstake/internal/pkg/logger"
	"soundstake.io/soundstake/internal/repository"
	"soundstake.io/soundstake/internal/service"
)

// InvestmentUseCase turns contributions into ownership stakes.
type InvestmentUseCase struct {
	store  repository.Store
	roi    *service.ROIProjectionEngine
	events *domain.EventDispatcher
	now    func() time.Time
}

// NewInvestmentUseCase creates a new InvestmentUseCase.
func NewInvestmentUseCase(store repository.Store, roi *service.ROIProjectionEngine) *InvestmentUseCase {
	return &InvestmentUseCase{
		store: store,
		roi:   roi,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetEventDispatcher configures where domain events go after commit.
func (uc *InvestmentUseCase) SetEventDispatcher(d *domain.EventDispatcher) { uc.events = d }

// CreateInvestment records the payment and the stake it buys in one transaction.
func (uc *InvestmentUseCase) CreateInvestment(ctx context.Context, investorID, campaignID string, amount decimal.Decimal, paymentRef string) (*domain.Investment, error) {
	now := uc.now()
	var inv *domain.Investment
	err := uc.store.InTx(ctx, func(tx repository.Tx) error {
		contribution, campaign, err := recordContributionTx(ctx, tx, ContributionInput{
			InvestorID:      investorID,
			CampaignID:      campaignID,
			Amount:          amount,
			TransactionID:   paymentRef,
			PaymentIntentID: paymentRef,
		}, now)
		if err != nil {
			return err
		}

		months := uc.roi.Tables().Months(campaign.Duration)
		inv = &domain.Investment{
			ID:                  newID(),
			CampaignID:          campaign.ID,
			InvestorID:          investorID,
			ArtistID:            campaign.ArtistID,
			ContributionID:      contribution.ID,
			Amount:              amount,
			OwnershipPercentage: service.OwnershipPercentage(amount, campaign.FundingGoal),
			ExpectedReturn:      expectedReturn(campaign, amount, months),
			ActualReturn:        decimal.Zero,
			Status:              domain.InvestmentStatusActive,
			MaturityDate:        now.AddDate(0, months, 0),
			CreatedAt:           now,
		}
		if err := tx.InsertInvestment(ctx, inv); err != nil {
			return fmt.Errorf("insert investment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.events.Emit(ctx, domain.EventInvestmentCreated, domain.AggregateInvestment, inv.ID, investorID,
		domain.MoneyInPayload{
			CampaignID:     inv.CampaignID,
			InvestorID:     investorID,
			ContributionID: inv.ContributionID,
			InvestmentID:   inv.ID,
			Amount:         amount.StringFixed(2),
		})
	logger.Info("Investment created",
		zap.String("campaign_id", inv.CampaignID),
		zap.String("investment_id", inv.ID),
		zap.String("actor", investorID),
		zap.String("ownership", inv.OwnershipPercentage.String()),
	)
	return inv, nil
}

// PreviewInvestment projects what amount would return, from the campaign's ROI snapshot.
func (uc *InvestmentUseCase) PreviewInvestment(ctx context.Context, campaignID string, amount decimal.Decimal) (domain.InvestorROIPreview, error) {
	if !amount.IsPositive() {
		return domain.InvestorROIPreview{}, apperrors.Validation(apperrors.CodeValidationFailed, "amount must be positive")
	}
	campaign, err := loadCampaign(ctx, uc.store, campaignID)
	if err != nil {
		return domain.InvestorROIPreview{}, err
	}

	investorShare := decimal.Zero
	confidence := 0
	if campaign.AutomaticROI != nil {
		investorShare = campaign.AutomaticROI.Split.InvestorShare
		confidence = campaign.AutomaticROI.Confidence
	}
	return uc.roi.CalculateInvestorAutomaticROI(amount, campaign.FundingGoal, investorShare, confidence), nil
}

func expectedReturn(c *domain.Campaign, amount decimal.Decimal, months int) decimal.Decimal {
	if c.ExpectedROIPercentage != nil {
		return service.InvestorReturnFromROI(amount, *c.ExpectedROIPercentage).TotalReturn
	}
	return service.FallbackExpectedReturn(amount, months)
}
