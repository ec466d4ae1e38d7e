package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentStatus is the lifecycle of an investor's stake.
type InvestmentStatus string

const (
	InvestmentStatusActive    InvestmentStatus = "active"
	InvestmentStatusCompleted InvestmentStatus = "completed"
	InvestmentStatusCancelled InvestmentStatus = "cancelled"
)

// Investment is an investor's ownership stake in a campaign.
type Investment struct {
	ID                  string           `json:"id"`
	CampaignID          string           `json:"campaign_id"`
	InvestorID          string           `json:"investor_id"`
	ArtistID            string           `json:"artist_id"`
	ContributionID      string           `json:"contribution_id,omitempty"`
	Amount              decimal.Decimal  `json:"amount"`
	OwnershipPercentage decimal.Decimal  `json:"ownership_percentage"`
	ExpectedReturn      decimal.Decimal  `json:"expected_return"`
	ActualReturn        decimal.Decimal  `json:"actual_return"`
	Status              InvestmentStatus `json:"status"`
	MaturityDate        time.Time        `json:"maturity_date"`
	CreatedAt           time.Time        `json:"created_at"`
}

// RevenueEvent is confirmed income for a campaign awaiting distribution.
type RevenueEvent struct {
	ID          string          `json:"id"`
	CampaignID  string          `json:"campaign_id"`
	Source      string          `json:"source"`
	Amount      decimal.Decimal `json:"amount"`
	StreamCount int64           `json:"stream_count"`
	Country     string          `json:"country"`
	PayoutRate  decimal.Decimal `json:"payout_rate"`
	IsProcessed bool            `json:"is_processed"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Payout is the immutable record of one investor's share of one revenue event.
type Payout struct {
	ID             string          `json:"id"`
	InvestmentID   string          `json:"investment_id"`
	InvestorID     string          `json:"investor_id"`
	CampaignID     string          `json:"campaign_id"`
	RevenueID      string          `json:"revenue_id"`
	Amount         decimal.Decimal `json:"amount"`
	OwnershipShare decimal.Decimal `json:"ownership_share"`
	CreatedAt      time.Time       `json:"created_at"`
}

// PayoutFor computes one investment's share of a revenue amount.
func PayoutFor(revenue decimal.Decimal, inv Investment) decimal.Decimal {
	return ShareOf(revenue, inv.OwnershipPercentage)
}
