package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"soundstake.io/soundstake/internal/domain"
	apperrors "soundstake.io/soundstake/internal/pkg/errors"
)

// ContributionSummer is the repository aggregate the ledger reads from.
type ContributionSummer interface {
	SumSuccessfulContributions(ctx context.Context, campaignID string) (decimal.Decimal, error)
}

// FundingLedger is the single source of funding totals. Nothing else sums contributions.
type FundingLedger struct {
	q ContributionSummer
}

// NewFundingLedger creates a ledger reading through q.
func NewFundingLedger(q ContributionSummer) *FundingLedger {
	return &FundingLedger{q: q}
}

// WithTx returns a ledger reading inside the given transaction.
func (l *FundingLedger) WithTx(q ContributionSummer) *FundingLedger {
	return &FundingLedger{q: q}
}

// TotalRaised sums successful contributions only.
func (l *FundingLedger) TotalRaised(ctx context.Context, campaignID string) (decimal.Decimal, error) {
	total, err := l.q.SumSuccessfulContributions(ctx, campaignID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum contributions for campaign %s: %w", campaignID, err)
	}
	return total, nil
}

// Stats returns the live funding view of a campaign.
func (l *FundingLedger) Stats(ctx context.Context, campaign *domain.Campaign) (domain.FundingStats, error) {
	raised, err := l.TotalRaised(ctx, campaign.ID)
	if err != nil {
		return domain.FundingStats{}, err
	}
	return domain.NewFundingStats(campaign.ID, raised, campaign.FundingGoal), nil
}

// FundingPercentage is raised/goal*100, unclamped.
func FundingPercentage(raised, goal decimal.Decimal) decimal.Decimal {
	return domain.Percentage(raised, goal)
}

// RemainingCapacity is max(0, goal-raised).
func RemainingCapacity(raised, goal decimal.Decimal) decimal.Decimal {
	return domain.NewFundingStats("", raised, goal).Remaining
}

// CheckContribution rejects amounts that would push the campaign past its goal.
func CheckContribution(stats domain.FundingStats, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.Validation(apperrors.CodeValidationFailed, "contribution amount must be positive")
	}
	if stats.TotalRaised.GreaterThanOrEqual(stats.FundingGoal) {
		return apperrors.Conflict(apperrors.CodeFundingGoalReached, "campaign has already reached its funding goal").
			WithParams(map[string]interface{}{"funding_goal": stats.FundingGoal.String()})
	}
	if stats.TotalRaised.Add(amount).GreaterThan(stats.FundingGoal) {
		return apperrors.Conflict(apperrors.CodeContributionExceedsGoal,
			fmt.Sprintf("contribution exceeds remaining funding capacity of %s", stats.Remaining)).
			WithParams(map[string]interface{}{"remaining": stats.Remaining.String()})
	}
	return nil
}

// OwnershipPercentage is amount/goal*100 rounded to 2 dp.
func OwnershipPercentage(amount, goal decimal.Decimal) decimal.Decimal {
	return domain.Round2(domain.Percentage(amount, goal))
}
