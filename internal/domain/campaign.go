// Package domain provides the domain model for Soundstake.
//
// Entities here are persistence-agnostic. Money is shopspring/decimal throughout.
//
// Import Path: soundstake.io/soundstake/internal/domain
package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// CampaignStatus is the review state of a campaign.
type CampaignStatus string

const (
	CampaignStatusDraft    CampaignStatus = "draft"
	CampaignStatusActive   CampaignStatus = "active"
	CampaignStatusRejected CampaignStatus = "rejected"
)

// CampaignDuration is the investment horizon advertised by a campaign.
type CampaignDuration string

const (
	Duration6Months CampaignDuration = "6_months"
	Duration1Year   CampaignDuration = "1_year"
	Duration2Years  CampaignDuration = "2_years"
	Duration5Years  CampaignDuration = "5_years"
	DurationForever CampaignDuration = "lifetime"
)

// MilestoneStatus is pending until the tranche has been transferred.
// approved is terminal.
type MilestoneStatus string

const (
	MilestoneStatusPending  MilestoneStatus = "pending"
	MilestoneStatusApproved MilestoneStatus = "approved"
)

// Milestone is an ordered funding tranche. It has no identity outside its campaign.
type Milestone struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Order       int             `json:"order"`
	Status      MilestoneStatus `json:"status"`
}

// IsApproved reports whether the milestone's funds were released.
func (m Milestone) IsApproved() bool { return m.Status == MilestoneStatusApproved }

// Campaign is the fundraising aggregate. Milestones are owned exclusively by it.
type Campaign struct {
	ID          string           `json:"id"`
	ArtistID    string           `json:"artist_id"`
	Title       string           `json:"title"`
	SongTitle   string           `json:"song_title"`
	ArtistName  string           `json:"artist_name"`
	Genre       string           `json:"genre"`
	Duration    CampaignDuration `json:"duration"`
	FundingGoal decimal.Decimal  `json:"funding_goal"`

	// ExpectedROIPercentage is derived from AutomaticROI at creation time.
	ExpectedROIPercentage *decimal.Decimal     `json:"expected_roi_percentage,omitempty"`
	AutomaticROI          *ROIProjection       `json:"automatic_roi,omitempty"`
	Verification          *VerificationSummary `json:"verification,omitempty"`

	Status     CampaignStatus `json:"status"`
	IsActive   bool           `json:"is_active"`
	Milestones []Milestone    `json:"milestones"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsOwnedBy reports whether artistID owns the campaign.
func (c *Campaign) IsOwnedBy(artistID string) bool {
	return c != nil && artistID != "" && c.ArtistID == artistID
}

// SortedMilestones returns a copy of the milestones in ascending order.
func (c *Campaign) SortedMilestones() []Milestone {
	out := make([]Milestone, len(c.Milestones))
	copy(out, c.Milestones)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Milestone looks up a milestone by id.
func (c *Campaign) Milestone(id string) (Milestone, bool) {
	for _, m := range c.Milestones {
		if m.ID == id {
			return m, true
		}
	}
	return Milestone{}, false
}

// LastApprovedMilestone returns the highest-order approved milestone.
func (c *Campaign) LastApprovedMilestone() (Milestone, bool) {
	var (
		last  Milestone
		found bool
	)
	for _, m := range c.Milestones {
		if m.IsApproved() && (!found || m.Order > last.Order) {
			last, found = m, true
		}
	}
	return last, found
}

// MilestoneSum returns the total of all milestone amounts.
func (c *Campaign) MilestoneSum() decimal.Decimal {
	sum := decimal.Zero
	for _, m := range c.Milestones {
		sum = sum.Add(m.Amount)
	}
	return sum
}

// CheckMilestoneInvariant verifies the sum invariant on a persisted campaign.
func (c *Campaign) CheckMilestoneInvariant() error {
	if sum := c.MilestoneSum(); !sum.Equal(c.FundingGoal) {
		return fmt.Errorf("campaign %s milestones sum to %s, funding goal is %s", c.ID, sum, c.FundingGoal)
	}
	return nil
}

// DurationYears returns the horizon in years for fallback return estimates.
func DurationYears(months int) decimal.Decimal {
	return decimal.NewFromInt(int64(months)).Div(decimal.NewFromInt(12))
}
