package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of domain event.
type EventType string

const (
	// Campaign lifecycle
	EventCampaignCreated  EventType = "CAMPAIGN_CREATED"
	EventCampaignApproved EventType = "CAMPAIGN_APPROVED"
	EventCampaignRejected EventType = "CAMPAIGN_REJECTED"

	// Money in
	EventContributionRecorded EventType = "CONTRIBUTION_RECORDED"
	EventInvestmentCreated    EventType = "INVESTMENT_CREATED"

	// Unlock protocol
	EventUnlockRequested      EventType = "UNLOCK_REQUESTED"
	EventUnlockApproved       EventType = "UNLOCK_APPROVED"
	EventUnlockRejected       EventType = "UNLOCK_REJECTED"
	EventUnlockTransferFailed EventType = "UNLOCK_TRANSFER_FAILED"
	EventProofSubmitted       EventType = "PROOF_SUBMITTED"
	EventProofApproved        EventType = "PROOF_APPROVED"
	EventProofRejected        EventType = "PROOF_REJECTED"

	// Revenue
	EventRevenueRecorded    EventType = "REVENUE_RECORDED"
	EventRevenueDistributed EventType = "REVENUE_DISTRIBUTED"
)

// AllEventTypes lists every event type, for subscribers that forward everything.
func AllEventTypes() []EventType {
	return []EventType{
		EventCampaignCreated, EventCampaignApproved, EventCampaignRejected,
		EventContributionRecorded, EventInvestmentCreated,
		EventUnlockRequested, EventUnlockApproved, EventUnlockRejected, EventUnlockTransferFailed,
		EventProofSubmitted, EventProofApproved, EventProofRejected,
		EventRevenueRecorded, EventRevenueDistributed,
	}
}

// Aggregate types carried on events and audit records.
const (
	AggregateCampaign      = "campaign"
	AggregateUnlockRequest = "fund_unlock_request"
	AggregateProof         = "milestone_proof"
	AggregateInvestment    = "investment"
	AggregateRevenue       = "revenue_event"
)

// DomainEvent is an immutable notification that something happened.
// Events are dispatched after the owning transaction commits.
type DomainEvent struct {
	EventID       string    `json:"event_id"`
	EventType     EventType `json:"event_type"`
	AggregateType string    `json:"aggregate_type"`
	AggregateID   string    `json:"aggregate_id"`
	Payload       []byte    `json:"payload"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewEvent builds an event with a UUIDv7 id and a JSON payload.
func NewEvent(eventType EventType, aggregateType, aggregateID, actor string, payload any) (*DomainEvent, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate event id: %w", err)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &DomainEvent{
		EventID:       id.String(),
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Payload:       data,
		CreatedBy:     actor,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// UnlockDecisionPayload is the payload for unlock request events.
type UnlockDecisionPayload struct {
	RequestID   string `json:"request_id"`
	CampaignID  string `json:"campaign_id"`
	ArtistID    string `json:"artist_id"`
	MilestoneID string `json:"milestone_id"`
	Amount      string `json:"amount,omitempty"`
	TransferID  string `json:"transfer_id,omitempty"`
	AdminID     string `json:"admin_id,omitempty"`
	Response    string `json:"response,omitempty"`
}

// ProofPayload is the payload for milestone proof events.
type ProofPayload struct {
	ProofID     string `json:"proof_id"`
	CampaignID  string `json:"campaign_id"`
	ArtistID    string `json:"artist_id"`
	MilestoneID string `json:"milestone_id"`
	AdminID     string `json:"admin_id,omitempty"`
	Response    string `json:"response,omitempty"`
}

// CampaignPayload is the payload for campaign lifecycle events.
type CampaignPayload struct {
	CampaignID  string         `json:"campaign_id"`
	ArtistID    string         `json:"artist_id"`
	Status      CampaignStatus `json:"status"`
	FundingGoal string         `json:"funding_goal"`
	ExpectedROI string         `json:"expected_roi,omitempty"`
	Reviewer    string         `json:"reviewer,omitempty"`
}

// MoneyInPayload is the payload for contribution and investment events.
type MoneyInPayload struct {
	CampaignID     string `json:"campaign_id"`
	InvestorID     string `json:"investor_id"`
	ContributionID string `json:"contribution_id"`
	InvestmentID   string `json:"investment_id,omitempty"`
	Amount         string `json:"amount"`
}

// RevenueDistributedPayload is the payload for revenue events.
type RevenueDistributedPayload struct {
	RevenueID   string `json:"revenue_id"`
	CampaignID  string `json:"campaign_id"`
	Amount      string `json:"amount"`
	PayoutCount int    `json:"payout_count"`
	TotalPaid   string `json:"total_paid"`
}
