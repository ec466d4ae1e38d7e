// Package unlock implements the milestone-gated fund unlock protocol.
//
// An artist requests the next eligible tranche once a campaign is funded past
// the threshold; an admin approves or rejects. Approval is two-phase: the
// request is reserved (pending → transferring), the transfer runs outside any
// transaction with the request id as idempotency key, and the outcome is
// finalized (→ approved, milestone approved, ledger entry). Only a declined
// transfer reverts to pending; an unconfirmed one stays transferring until the
// reconcile job settles it. Proof of the funded work gates the next request.
//
// Import Path: soundstake.io/soundstake/internal/governance/unlock
package unlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"soundstake.io/soundstake/internal/domain"
	"soundstake.io/soundstake/internal/governance/audit"
	"soundstake.io/soundstake/internal/notification"
	apperrors "soundstake.io/soundstake/internal/pkg/errors"
	"soundstake.io/soundstake/internal/pkg/logger"
	"soundstake.io/soundstake/internal/provider"
	"soundstake.io/soundstake/internal/repository"
	"soundstake.io/soundstake/internal/service"
)

// Config holds protocol tunables.
type Config struct {
	MinFundingPercent  decimal.Decimal
	TransferTimeout    time.Duration
	TransferStaleAfter time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MinFundingPercent:  service.DefaultMinFundingPercent,
		TransferTimeout:    10 * time.Second,
		TransferStaleAfter: 15 * time.Minute,
	}
}

// Protocol orchestrates unlock requests, admin decisions and milestone proofs.
type Protocol struct {
	store    repository.Store
	payments provider.PaymentGateway
	files    provider.FileStore
	cfg      Config

	auditLogger *audit.Logger
	notifier    *notification.Triggers // Optional: nil-safe
	events      *domain.EventDispatcher

	now func() time.Time
}

// NewProtocol creates a Protocol. files may be nil when artifacts are always
// passed by reference.
func NewProtocol(store repository.Store, payments provider.PaymentGateway, files provider.FileStore, cfg Config) *Protocol {
	if !cfg.MinFundingPercent.IsPositive() {
		cfg.MinFundingPercent = service.DefaultMinFundingPercent
	}
	if cfg.TransferTimeout <= 0 {
		cfg.TransferTimeout = DefaultConfig().TransferTimeout
	}
	if cfg.TransferStaleAfter <= 0 {
		cfg.TransferStaleAfter = DefaultConfig().TransferStaleAfter
	}
	return &Protocol{
		store:       store,
		payments:    payments,
		files:       files,
		cfg:         cfg,
		auditLogger: audit.NewLogger(store),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetNotifier configures the notification trigger service.
func (p *Protocol) SetNotifier(notifier *notification.Triggers) {
	p.notifier = notifier
}

// SetEventDispatcher configures where domain events go after commit.
func (p *Protocol) SetEventDispatcher(d *domain.EventDispatcher) {
	p.events = d
}

// UnlockStatus is the derived unlock view of a campaign. Nothing here is stored.
type UnlockStatus struct {
	CampaignID             string                    `json:"campaign_id"`
	HasPendingRequest      bool                      `json:"has_pending_request"`
	PendingRequest         *domain.FundUnlockRequest `json:"pending_request,omitempty"`
	FundingStats           domain.FundingStats       `json:"funding_stats"`
	MinFundingPercent      decimal.Decimal           `json:"min_funding_percent"`
	LastApprovedMilestone  *domain.Milestone         `json:"last_approved_milestone,omitempty"`
	ProofBlockingMilestone *domain.Milestone         `json:"proof_blocking_milestone,omitempty"`
	NextMilestone          *domain.Milestone         `json:"next_milestone,omitempty"`
	RequiredForNext        decimal.Decimal           `json:"required_for_next"`
	Shortfall              decimal.Decimal           `json:"shortfall"`
	TargetMilestone        *domain.Milestone         `json:"target_milestone,omitempty"`
	CanRequestUnlock       bool                      `json:"can_request_unlock"`
	BlockingReason         string                    `json:"blocking_reason,omitempty"`
	BlockingMessage        string                    `json:"blocking_message,omitempty"`
}

// SubmitFundUnlockRequest creates a pending request for the next eligible milestone.
func (p *Protocol) SubmitFundUnlockRequest(ctx context.Context, artistID, campaignID string) (*domain.FundUnlockRequest, error) {
	var created *domain.FundUnlockRequest
	err := p.store.InTx(ctx, func(tx repository.Tx) error {
		campaign, err := ownedCampaign(ctx, tx, artistID, campaignID)
		if err != nil {
			return err
		}
		ev, err := p.evaluate(ctx, tx, campaign)
		if err != nil {
			return err
		}
		if ev.Err != nil {
			return ev.Err
		}

		now := p.now()
		req := &domain.FundUnlockRequest{
			ID:          newID(),
			CampaignID:  campaign.ID,
			ArtistID:    artistID,
			MilestoneID: ev.TargetMilestone.ID,
			Status:      domain.UnlockStatusPending,
			RequestedAt: now,
			UpdatedAt:   now,
		}
		if err := tx.InsertUnlockRequest(ctx, req); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return duplicateRequest()
			}
			return fmt.Errorf("insert unlock request: %w", err)
		}
		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = p.auditLogger.LogUnlockDecision(ctx, created.ID, "submitted", artistID, map[string]interface{}{
		"campaign_id":  created.CampaignID,
		"milestone_id": created.MilestoneID,
	})
	p.events.Emit(ctx, domain.EventUnlockRequested, domain.AggregateUnlockRequest, created.ID, artistID,
		domain.UnlockDecisionPayload{
			RequestID:   created.ID,
			CampaignID:  created.CampaignID,
			ArtistID:    created.ArtistID,
			MilestoneID: created.MilestoneID,
		})

	logger.Info("Fund unlock request submitted",
		zap.String("request_id", created.ID),
		zap.String("campaign_id", created.CampaignID),
		zap.String("milestone_id", created.MilestoneID),
		zap.String("actor", artistID),
	)
	return created, nil
}

// GetFundUnlockRequestStatus recomputes the unlock view with the same rules
// SubmitFundUnlockRequest enforces.
func (p *Protocol) GetFundUnlockRequestStatus(ctx context.Context, artistID, campaignID string) (*UnlockStatus, error) {
	campaign, err := ownedCampaign(ctx, p.store, artistID, campaignID)
	if err != nil {
		return nil, err
	}
	ev, err := p.evaluate(ctx, p.store, campaign)
	if err != nil {
		return nil, err
	}

	status := &UnlockStatus{
		CampaignID:             campaign.ID,
		HasPendingRequest:      ev.HasOpenRequest,
		FundingStats:           ev.Stats,
		MinFundingPercent:      p.cfg.MinFundingPercent,
		LastApprovedMilestone:  ev.LastApprovedMilestone,
		ProofBlockingMilestone: ev.ProofBlockingMilestone,
		NextMilestone:          ev.NextMilestone,
		RequiredForNext:        ev.RequiredForNext,
		Shortfall:              ev.Shortfall,
		TargetMilestone:        ev.TargetMilestone,
		CanRequestUnlock:       ev.CanRequest(),
		BlockingReason:         ev.BlockingReason(),
	}
	status.FundingStats.FundingPercentage = ev.Stats.FundingPercentage.Round(2)
	if ev.Err != nil {
		status.BlockingMessage = ev.Err.Message
	}
	if ev.HasOpenRequest {
		open, err := p.store.GetOpenUnlockRequest(ctx, campaign.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("load open unlock request: %w", err)
		}
		status.PendingRequest = publicView(open)
	}
	return status, nil
}

// ListFundUnlockRequests lists requests for admins. Transferring is reported as pending.
func (p *Protocol) ListFundUnlockRequests(ctx context.Context, f repository.UnlockRequestFilter) ([]*domain.FundUnlockRequest, error) {
	reqs, err := p.store.ListUnlockRequests(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list unlock requests: %w", err)
	}
	for i := range reqs {
		reqs[i] = publicView(reqs[i])
	}
	return reqs, nil
}

func (p *Protocol) evaluate(ctx context.Context, q repository.Tx, campaign *domain.Campaign) (service.UnlockEvaluation, error) {
	hasOpen := true
	if _, err := q.GetOpenUnlockRequest(ctx, campaign.ID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return service.UnlockEvaluation{}, fmt.Errorf("check open unlock request: %w", err)
		}
		hasOpen = false
	}

	stats, err := service.NewFundingLedger(q).Stats(ctx, campaign)
	if err != nil {
		return service.UnlockEvaluation{}, err
	}

	proofRows, err := q.ListProofs(ctx, campaign.ID)
	if err != nil {
		return service.UnlockEvaluation{}, fmt.Errorf("list proofs: %w", err)
	}
	proofs := make([]domain.MilestoneProof, 0, len(proofRows))
	for _, pr := range proofRows {
		proofs = append(proofs, *pr)
	}

	return service.EvaluateUnlock(service.UnlockInputs{
		Campaign:          campaign,
		Stats:             stats,
		Proofs:            proofs,
		HasOpenRequest:    hasOpen,
		MinFundingPercent: p.cfg.MinFundingPercent,
	}), nil
}

// ownedCampaign loads a campaign and checks artistID owns it.
func ownedCampaign(ctx context.Context, q repository.CampaignStore, artistID, campaignID string) (*domain.Campaign, error) {
	campaign, err := q.GetCampaign(ctx, campaignID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrCampaignNotFound(campaignID)
		}
		return nil, fmt.Errorf("load campaign: %w", err)
	}
	if !campaign.IsOwnedBy(artistID) {
		return nil, apperrors.ErrNotCampaignOwner()
	}
	return campaign, nil
}

func publicView(r *domain.FundUnlockRequest) *domain.FundUnlockRequest {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Status = r.Status.Public()
	return &cp
}

func duplicateRequest() *apperrors.AppError {
	return apperrors.Conflict(apperrors.CodeDuplicateRequest,
		"a fund unlock request for this campaign is already pending")
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
