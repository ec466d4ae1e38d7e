package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UnlockRequestStatus is the lifecycle state of a fund unlock request.
//
//	pending -> transferring -> approved
//	pending -> rejected
//	transferring -> pending (transfer failed, retryable)
type UnlockRequestStatus string

const (
	UnlockStatusPending      UnlockRequestStatus = "pending"
	UnlockStatusTransferring UnlockRequestStatus = "transferring"
	UnlockStatusApproved     UnlockRequestStatus = "approved"
	UnlockStatusRejected     UnlockRequestStatus = "rejected"
)

// IsOpen reports whether the request still blocks new requests for its campaign.
func (s UnlockRequestStatus) IsOpen() bool {
	return s == UnlockStatusPending || s == UnlockStatusTransferring
}

// Public hides the internal transfer reservation from callers.
func (s UnlockRequestStatus) Public() UnlockRequestStatus {
	if s == UnlockStatusTransferring {
		return UnlockStatusPending
	}
	return s
}

// FundUnlockRequest is an artist's ask to release one milestone's funds.
type FundUnlockRequest struct {
	ID            string              `json:"id"`
	CampaignID    string              `json:"campaign_id"`
	ArtistID      string              `json:"artist_id"`
	MilestoneID   string              `json:"milestone_id"`
	Status        UnlockRequestStatus `json:"status"`
	RequestedAt   time.Time           `json:"requested_at"`
	RespondedAt   *time.Time          `json:"responded_at,omitempty"`
	AdminID       string              `json:"admin_id,omitempty"`
	AdminResponse string              `json:"admin_response,omitempty"`
	TransferID    string              `json:"transfer_id,omitempty"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ProofStatus is the review state of a milestone proof.
type ProofStatus string

const (
	ProofStatusPending  ProofStatus = "pending"
	ProofStatusApproved ProofStatus = "approved"
	ProofStatusRejected ProofStatus = "rejected"
)

// MilestoneProof is evidence that a funded milestone's work was completed.
type MilestoneProof struct {
	ID            string      `json:"id"`
	CampaignID    string      `json:"campaign_id"`
	ArtistID      string      `json:"artist_id"`
	MilestoneID   string      `json:"milestone_id"`
	Description   string      `json:"description"`
	Proof         string      `json:"proof"`
	Status        ProofStatus `json:"status"`
	AdminID       string      `json:"admin_id,omitempty"`
	AdminResponse string      `json:"admin_response,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// BlocksResubmission reports whether the proof prevents another submission.
func (p MilestoneProof) BlocksResubmission() bool {
	return p.Status == ProofStatusPending || p.Status == ProofStatusApproved
}

// Decision is an admin verdict on a request or proof.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision accepts approve/approved and reject/rejected.
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approve", "approved":
		return DecisionApprove, nil
	case "reject", "rejected":
		return DecisionReject, nil
	default:
		return "", fmt.Errorf("unknown decision %q", s)
	}
}

// LedgerEntryType classifies outgoing money movements.
type LedgerEntryType string

const LedgerEntryMilestoneTransfer LedgerEntryType = "milestone_transfer"

// LedgerEntry records funds released to an artist. One per approved request.
type LedgerEntry struct {
	ID          string          `json:"id"`
	Type        LedgerEntryType `json:"type"`
	CampaignID  string          `json:"campaign_id"`
	ArtistID    string          `json:"artist_id"`
	MilestoneID string          `json:"milestone_id"`
	RequestID   string          `json:"request_id"`
	Amount      decimal.Decimal `json:"amount"`
	TransferID  string          `json:"transfer_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PayoutDestination is the artist's connected account for milestone transfers.
type PayoutDestination struct {
	ArtistID    string    `json:"artist_id"`
	AccountRef  string    `json:"account_ref"`
	Verified    bool      `json:"verified"`
	ConnectedAt time.Time `json:"connected_at"`
}
