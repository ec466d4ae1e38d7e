package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CampaignInputs are the campaign attributes the ROI engine depends on.
type CampaignInputs struct {
	Genre       string           `json:"genre"`
	Duration    CampaignDuration `json:"duration"`
	FundingGoal decimal.Decimal  `json:"funding_goal"`
}

// PlatformProjection is the projected volume and gross revenue for one platform.
type PlatformProjection struct {
	Platform       Platform        `json:"platform"`
	MonthlyBase    decimal.Decimal `json:"monthly_base"`
	ProjectedUnits int64           `json:"projected_units"`
	Revenue        decimal.Decimal `json:"revenue"`
}

// RevenueSplit divides gross revenue between artist, investors and platform.
type RevenueSplit struct {
	ArtistShare   decimal.Decimal `json:"artist_share"`
	InvestorShare decimal.Decimal `json:"investor_share"`
	PlatformFee   decimal.Decimal `json:"platform_fee"`
}

// DataSources records which inputs contributed to a projection.
type DataSources struct {
	Historical   bool `json:"historical"`
	Verification bool `json:"verification"`
}

// ROIProjection is the advertised return snapshot stored on a campaign.
type ROIProjection struct {
	Projections           []PlatformProjection `json:"projections"`
	TotalGrossRevenue     decimal.Decimal      `json:"total_gross_revenue"`
	Split                 RevenueSplit         `json:"split"`
	ExpectedROIPercentage decimal.Decimal      `json:"expected_roi_percentage"`
	IsFallback            bool                 `json:"is_fallback"`
	Confidence            int                  `json:"confidence"`
	Methodology           string               `json:"methodology"`
	Disclaimer            string               `json:"disclaimer"`
	DataSources           DataSources          `json:"data_sources"`
	CalculatedAt          time.Time            `json:"calculated_at"`
}

// RiskLevel is the coarse risk label shown to investors.
type RiskLevel string

const (
	RiskLow        RiskLevel = "Low"
	RiskMedium     RiskLevel = "Medium"
	RiskMediumHigh RiskLevel = "Medium-High"
	RiskHigh       RiskLevel = "High"
)

// InvestorROIPreview is a per-investor projection for a prospective amount.
type InvestorROIPreview struct {
	InvestmentAmount    decimal.Decimal `json:"investment_amount"`
	OwnershipPercentage decimal.Decimal `json:"ownership_percentage"`
	ProjectedReturn     decimal.Decimal `json:"projected_return"`
	ProjectedProfit     decimal.Decimal `json:"projected_profit"`
	ROIPercentage       decimal.Decimal `json:"roi_percentage"`
	Confidence          int             `json:"confidence"`
	RiskLevel           RiskLevel       `json:"risk_level"`
	Disclaimer          string          `json:"disclaimer"`
}

// InvestorReturn is the expected return of a contribution at a given ROI.
type InvestorReturn struct {
	ProjectedProfit decimal.Decimal `json:"projected_profit"`
	TotalReturn     decimal.Decimal `json:"total_return"`
}
