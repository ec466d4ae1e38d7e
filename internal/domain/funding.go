package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContributionStatus tracks payment capture outcome.
type ContributionStatus string

const (
	ContributionStatusSuccess ContributionStatus = "success"
	ContributionStatusFailed  ContributionStatus = "failed"
)

// Contribution is a captured payment toward a campaign. Only successful rows count.
type Contribution struct {
	ID              string             `json:"id"`
	InvestorID      string             `json:"investor_id"`
	CampaignID      string             `json:"campaign_id"`
	Amount          decimal.Decimal    `json:"amount"`
	Status          ContributionStatus `json:"status"`
	TransactionID   string             `json:"transaction_id,omitempty"`
	PaymentIntentID string             `json:"payment_intent_id,omitempty"`
	ExpectedReturn  decimal.Decimal    `json:"expected_return"`
	TransactionDate time.Time          `json:"transaction_date"`
	CreatedAt       time.Time          `json:"created_at"`
}

// FundingStats is the live funding view of a campaign.
type FundingStats struct {
	CampaignID  string          `json:"campaign_id"`
	TotalRaised decimal.Decimal `json:"total_raised"`
	FundingGoal decimal.Decimal `json:"funding_goal"`
	// FundingPercentage is unclamped and unrounded; the unlock protocol compares against it.
	FundingPercentage decimal.Decimal `json:"funding_percentage"`
	Remaining         decimal.Decimal `json:"remaining"`
}

// NewFundingStats derives the funding view from a raised total and goal.
func NewFundingStats(campaignID string, raised, goal decimal.Decimal) FundingStats {
	remaining := goal.Sub(raised)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return FundingStats{
		CampaignID:        campaignID,
		TotalRaised:       raised,
		FundingGoal:       goal,
		FundingPercentage: Percentage(raised, goal),
		Remaining:         remaining,
	}
}

// DisplayPercentage rounds to 2 dp and clamps to 100 for progress bars.
func (s FundingStats) DisplayPercentage() decimal.Decimal {
	p := s.FundingPercentage.Round(2)
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}
