// Package repository defines the persistence contract for Soundstake.
//
// PostgreSQL is the serialization point for every critical section. Callers
// compose multi-step writes with Store.InTx; conditional transitions report
// whether a row changed so the caller can turn a lost race into a domain error.
//
// Import Path: soundstake.io/soundstake/internal/repository
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"soundstake.io/soundstake/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict is returned when a write violates a unique constraint.
	ErrConflict = errors.New("repository: conflict")
)

// UnlockRequestFilter narrows ListUnlockRequests. Zero values match everything.
type UnlockRequestFilter struct {
	CampaignID string
	Status     domain.UnlockRequestStatus
	Limit      int
}

// UnlockRequestUpdate is applied by TransitionUnlockRequest.
// Empty strings and nil pointers leave the stored value untouched.
type UnlockRequestUpdate struct {
	Status        domain.UnlockRequestStatus
	AdminID       string
	AdminResponse string
	TransferID    string
	RespondedAt   *time.Time
}

// ProofDecision is applied by TransitionProof.
type ProofDecision struct {
	Status        domain.ProofStatus
	AdminID       string
	AdminResponse string
	At            time.Time
}

// AuditLog is an append-only compliance record.
type AuditLog struct {
	ID           string
	Action       string
	ResourceType string
	ResourceID   string
	Actor        string
	Details      map[string]interface{}
	CreatedAt    time.Time
}

// Notification is an inbox entry for a user.
type Notification struct {
	ID           string
	UserID       string
	Type         string
	Title        string
	Message      string
	ResourceType string
	ResourceID   string
	Read         bool
	CreatedAt    time.Time
}

// CampaignStore persists campaigns and their milestone list.
type CampaignStore interface {
	CreateCampaign(ctx context.Context, c *domain.Campaign) error
	GetCampaign(ctx context.Context, id string) (*domain.Campaign, error)
	// LockCampaign reads the campaign with SELECT ... FOR UPDATE.
	LockCampaign(ctx context.Context, id string) (*domain.Campaign, error)
	ListCampaignsByArtist(ctx context.Context, artistID string) ([]*domain.Campaign, error)
	UpdateCampaignStatus(ctx context.Context, id string, from, to domain.CampaignStatus) (bool, error)
	SetMilestoneStatus(ctx context.Context, campaignID, milestoneID string, from, to domain.MilestoneStatus) (bool, error)
}

// ContributionStore persists payment rows.
type ContributionStore interface {
	InsertContribution(ctx context.Context, c *domain.Contribution) error
	SumSuccessfulContributions(ctx context.Context, campaignID string) (decimal.Decimal, error)
	UpdateContributionStatus(ctx context.Context, paymentIntentID string, status domain.ContributionStatus) (*domain.Contribution, error)
}

// UnlockStore persists unlock requests, proofs and the transfer ledger.
type UnlockStore interface {
	InsertUnlockRequest(ctx context.Context, r *domain.FundUnlockRequest) error
	GetUnlockRequest(ctx context.Context, id string) (*domain.FundUnlockRequest, error)
	GetOpenUnlockRequest(ctx context.Context, campaignID string) (*domain.FundUnlockRequest, error)
	ListUnlockRequests(ctx context.Context, f UnlockRequestFilter) ([]*domain.FundUnlockRequest, error)
	TransitionUnlockRequest(ctx context.Context, id string, from domain.UnlockRequestStatus, upd UnlockRequestUpdate) (bool, error)
	ListStaleTransferring(ctx context.Context, before time.Time, limit int) ([]*domain.FundUnlockRequest, error)

	InsertProof(ctx context.Context, p *domain.MilestoneProof) error
	GetProof(ctx context.Context, id string) (*domain.MilestoneProof, error)
	GetProofForMilestone(ctx context.Context, campaignID, milestoneID string) (*domain.MilestoneProof, error)
	ListProofs(ctx context.Context, campaignID string) ([]*domain.MilestoneProof, error)
	ResubmitProof(ctx context.Context, id, description, proof string, at time.Time) (bool, error)
	TransitionProof(ctx context.Context, id string, from domain.ProofStatus, d ProofDecision) (bool, error)

	InsertLedgerEntry(ctx context.Context, e *domain.LedgerEntry) error
	GetPayoutDestination(ctx context.Context, artistID string) (*domain.PayoutDestination, error)
	UpsertPayoutDestination(ctx context.Context, d *domain.PayoutDestination) error
}

// InvestmentStore persists investments and revenue fan-out state.
type InvestmentStore interface {
	InsertInvestment(ctx context.Context, inv *domain.Investment) error
	ListActiveInvestments(ctx context.Context, campaignID string) ([]*domain.Investment, error)
	IncrementActualReturn(ctx context.Context, investmentID string, amount decimal.Decimal) error

	InsertRevenueEvent(ctx context.Context, ev *domain.RevenueEvent) error
	GetRevenueEvent(ctx context.Context, id string) (*domain.RevenueEvent, error)
	// MarkRevenueProcessed flips is_processed only when it is still false.
	MarkRevenueProcessed(ctx context.Context, id string, at time.Time) (bool, error)
	ListUnprocessedRevenueEvents(ctx context.Context, before time.Time, limit int) ([]*domain.RevenueEvent, error)
	// InsertPayout reports false when a payout for (investment, revenue) already exists.
	InsertPayout(ctx context.Context, p *domain.Payout) (bool, error)
	ListPayoutsByRevenue(ctx context.Context, revenueID string) ([]*domain.Payout, error)
}

// ActivityStore persists audit records and notifications.
type ActivityStore interface {
	InsertAuditLog(ctx context.Context, entry *AuditLog) error
	InsertNotification(ctx context.Context, n *Notification) error
	ListNotifications(ctx context.Context, userID string, limit int) ([]*Notification, error)
	DeleteNotificationsBefore(ctx context.Context, before time.Time) (int64, error)
}

// Tx is the full query surface. It is implemented both by a plain connection
// and by a transaction handle.
type Tx interface {
	CampaignStore
	ContributionStore
	UnlockStore
	InvestmentStore
	ActivityStore
}

// Store is a Tx that can open transactions. fn runs inside one transaction;
// a returned error rolls everything back.
type Store interface {
	Tx
	InTx(ctx context.Context, fn func(tx Tx) error) error
}
