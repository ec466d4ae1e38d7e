package unlock

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"soundstake.io/soundstake/internal/domain"
	apperrors "soundstake.io/soundstake/internal/pkg/errors"
	"soundstake.io/soundstake/internal/pkg/logger"
	"soundstake.io/soundstake/internal/provider"
	"soundstake.io/soundstake/internal/repository"
)

const reconcileBatchSize = 50

// ApproveRejectFundRequest applies an admin decision to a pending request.
// Approval moves money; see the package doc for the two-phase flow.
func (p *Protocol) ApproveRejectFundRequest(ctx context.Context, adminID, requestID, action, response string) (*domain.FundUnlockRequest, error) {
	decision, err := domain.ParseDecision(action)
	if err != nil {
		return nil, invalidDecision(action)
	}

	req, err := p.store.GetUnlockRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(apperrors.CodeUnlockRequestNotFound,
				fmt.Sprintf("fund unlock request %s not found", requestID))
		}
		return nil, fmt.Errorf("load unlock request: %w", err)
	}

	if decision == domain.DecisionReject {
		return p.reject(ctx, req, adminID, response)
	}
	return p.approve(ctx, req, adminID, response)
}

func (p *Protocol) reject(ctx context.Context, req *domain.FundUnlockRequest, adminID, response string) (*domain.FundUnlockRequest, error) {
	// A transferring request may already be paid; only reconciliation settles it.
	if req.Status == domain.UnlockStatusTransferring {
		return nil, transferInFlight(req.ID)
	}
	now := p.now()
	ok, err := p.store.TransitionUnlockRequest(ctx, req.ID, domain.UnlockStatusPending, repository.UnlockRequestUpdate{
		Status:        domain.UnlockStatusRejected,
		AdminID:       adminID,
		AdminResponse: response,
		RespondedAt:   &now,
	})
	if err != nil {
		return nil, fmt.Errorf("reject unlock request: %w", err)
	}
	if !ok {
		return nil, notPending(req.ID)
	}

	rejected, err := p.store.GetUnlockRequest(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("reload unlock request: %w", err)
	}

	_ = p.auditLogger.LogUnlockDecision(ctx, rejected.ID, "rejected", adminID, map[string]interface{}{
		"campaign_id":  rejected.CampaignID,
		"milestone_id": rejected.MilestoneID,
		"response":     response,
	})
	p.notifier.OnUnlockRejected(ctx, rejected, response)
	p.events.Emit(ctx, domain.EventUnlockRejected, domain.AggregateUnlockRequest, rejected.ID, adminID,
		decisionPayload(rejected, "", ""))

	logger.Info("Fund unlock request rejected",
		zap.String("request_id", rejected.ID),
		zap.String("campaign_id", rejected.CampaignID),
		zap.String("actor", adminID),
	)
	return publicView(rejected), nil
}

func (p *Protocol) approve(ctx context.Context, req *domain.FundUnlockRequest, adminID, response string) (*domain.FundUnlockRequest, error) {
	if req.Status == domain.UnlockStatusTransferring {
		return nil, transferInFlight(req.ID)
	}
	if req.Status != domain.UnlockStatusPending {
		return nil, notPending(req.ID)
	}

	dest, err := p.destination(ctx, req.ArtistID)
	if err != nil {
		return nil, err
	}

	// Phase 1: reserve. Only one concurrent approver wins the flip.
	var milestone domain.Milestone
	err = p.store.InTx(ctx, func(tx repository.Tx) error {
		ok, err := tx.TransitionUnlockRequest(ctx, req.ID, domain.UnlockStatusPending, repository.UnlockRequestUpdate{
			Status:        domain.UnlockStatusTransferring,
			AdminID:       adminID,
			AdminResponse: response,
		})
		if err != nil {
			return fmt.Errorf("reserve unlock request: %w", err)
		}
		if !ok {
			return notPending(req.ID)
		}
		milestone, err = pendingMilestone(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	req.Status = domain.UnlockStatusTransferring
	req.AdminID = adminID
	req.AdminResponse = response

	// Phase 2: move money outside any transaction.
	transfer, err := p.transfer(ctx, req, dest, milestone)
	if err != nil {
		return nil, p.settleFailure(ctx, req, err)
	}

	// Phase 3: finalize.
	approved, err := p.finalize(ctx, req, milestone, transfer.ID)
	if err != nil {
		return nil, err
	}
	return publicView(approved), nil
}

// ReconcileStaleTransfers re-drives requests stuck in transferring, e.g. after
// a gateway timeout or a crash between the transfer and finalize. The transfer is re-issued with the
// same idempotency key so the gateway never pays twice.
func (p *Protocol) ReconcileStaleTransfers(ctx context.Context) (int, error) {
	before := p.now().Add(-p.cfg.TransferStaleAfter)
	stale, err := p.store.ListStaleTransferring(ctx, before, reconcileBatchSize)
	if err != nil {
		return 0, fmt.Errorf("list stale transfers: %w", err)
	}

	finalized := 0
	for _, req := range stale {
		if err := ctx.Err(); err != nil {
			return finalized, err
		}
		if err := p.reconcileOne(ctx, req); err != nil {
			logger.Warn("Stale transfer not finalized",
				zap.String("request_id", req.ID),
				zap.String("campaign_id", req.CampaignID),
				zap.Error(err),
			)
			continue
		}
		finalized++
	}

	if len(stale) > 0 {
		logger.Info("Stale transfers reconciled",
			zap.Int("found", len(stale)),
			zap.Int("finalized", finalized),
		)
	}
	return finalized, nil
}

func (p *Protocol) reconcileOne(ctx context.Context, req *domain.FundUnlockRequest) error {
	dest, err := p.destination(ctx, req.ArtistID)
	if err != nil {
		return err
	}
	campaign, err := p.store.GetCampaign(ctx, req.CampaignID)
	if err != nil {
		return fmt.Errorf("load campaign: %w", err)
	}
	milestone, ok := campaign.Milestone(req.MilestoneID)
	if !ok || milestone.IsApproved() {
		return apperrors.Invariant(fmt.Sprintf("milestone %s of request %s is not pending", req.MilestoneID, req.ID))
	}

	transfer, err := p.transfer(ctx, req, dest, milestone)
	if err != nil {
		return p.settleFailure(ctx, req, err)
	}
	_, err = p.finalize(ctx, req, milestone, transfer.ID)
	return err
}

func (p *Protocol) destination(ctx context.Context, artistID string) (*domain.PayoutDestination, error) {
	dest, err := p.store.GetPayoutDestination(ctx, artistID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load payout destination: %w", err)
	}
	if dest == nil || !dest.Verified || dest.AccountRef == "" {
		return nil, apperrors.Validation(apperrors.CodePayoutDestinationMissing,
			"the artist has no verified payout destination")
	}
	return dest, nil
}

func (p *Protocol) transfer(ctx context.Context, req *domain.FundUnlockRequest, dest *domain.PayoutDestination, m domain.Milestone) (provider.TransferResult, error) {
	tctx, cancel := context.WithTimeout(ctx, p.cfg.TransferTimeout)
	defer cancel()

	return p.payments.CreateTransfer(tctx, provider.TransferRequest{
		Destination:    dest.AccountRef,
		Amount:         m.Amount,
		IdempotencyKey: req.ID,
		Metadata: map[string]string{
			"campaign_id":  req.CampaignID,
			"milestone_id": m.ID,
			"request_id":   req.ID,
		},
	})
}

// finalize records a completed transfer. The request must be transferring.
func (p *Protocol) finalize(ctx context.Context, req *domain.FundUnlockRequest, m domain.Milestone, transferID string) (*domain.FundUnlockRequest, error) {
	now := p.now()
	var approved *domain.FundUnlockRequest
	err := p.store.InTx(ctx, func(tx repository.Tx) error {
		ok, err := tx.SetMilestoneStatus(ctx, req.CampaignID, m.ID, domain.MilestoneStatusPending, domain.MilestoneStatusApproved)
		if err != nil {
			return fmt.Errorf("approve milestone: %w", err)
		}
		if !ok {
			return apperrors.Invariant(fmt.Sprintf("milestone %s was approved concurrently", m.ID))
		}

		if err := tx.InsertLedgerEntry(ctx, &domain.LedgerEntry{
			ID:          newID(),
			Type:        domain.LedgerEntryMilestoneTransfer,
			CampaignID:  req.CampaignID,
			ArtistID:    req.ArtistID,
			MilestoneID: m.ID,
			RequestID:   req.ID,
			Amount:      m.Amount,
			TransferID:  transferID,
			CreatedAt:   now,
		}); err != nil {
			return fmt.Errorf("insert ledger entry: %w", err)
		}

		ok, err = tx.TransitionUnlockRequest(ctx, req.ID, domain.UnlockStatusTransferring, repository.UnlockRequestUpdate{
			Status:      domain.UnlockStatusApproved,
			TransferID:  transferID,
			RespondedAt: &now,
		})
		if err != nil {
			return fmt.Errorf("approve unlock request: %w", err)
		}
		if !ok {
			return apperrors.Invariant(fmt.Sprintf("unlock request %s left transferring concurrently", req.ID))
		}

		approved, err = tx.GetUnlockRequest(ctx, req.ID)
		return err
	})
	if err != nil {
		logger.Error("Failed to finalize milestone transfer",
			zap.String("request_id", req.ID),
			zap.String("transfer_id", transferID),
			zap.Error(err),
		)
		return nil, err
	}

	_ = p.auditLogger.LogUnlockDecision(ctx, approved.ID, "approved", approved.AdminID, map[string]interface{}{
		"campaign_id":  approved.CampaignID,
		"milestone_id": m.ID,
		"amount":       m.Amount.StringFixed(2),
		"transfer_id":  transferID,
	})
	p.notifier.OnUnlockApproved(ctx, approved, m)
	p.events.Emit(ctx, domain.EventUnlockApproved, domain.AggregateUnlockRequest, approved.ID, approved.AdminID,
		decisionPayload(approved, m.Amount.StringFixed(2), transferID))

	logger.Info("Milestone funds released",
		zap.String("request_id", approved.ID),
		zap.String("campaign_id", approved.CampaignID),
		zap.String("milestone_id", m.ID),
		logger.Money("amount", m.Amount),
		zap.String("transfer_id", transferID),
	)
	return approved, nil
}

// settleFailure decides what a failed transfer leaves behind. Only a decline
// proves nothing was paid, so only a decline reverts to pending. Anything else
// (timeouts included) keeps the request transferring; the reconcile job
// re-issues it under the same idempotency key.
func (p *Protocol) settleFailure(ctx context.Context, req *domain.FundUnlockRequest, cause error) error {
	if errors.Is(cause, provider.ErrTransferDeclined) {
		p.revert(ctx, req, cause)
		return transferFailed(cause)
	}

	logger.Warn("Milestone transfer outcome unknown, left for reconciliation",
		zap.String("request_id", req.ID),
		zap.String("campaign_id", req.CampaignID),
		zap.Error(cause),
	)
	_ = p.auditLogger.LogUnlockDecision(ctx, req.ID, "transfer_unconfirmed", req.AdminID, map[string]interface{}{
		"campaign_id":  req.CampaignID,
		"milestone_id": req.MilestoneID,
		"error":        cause.Error(),
	})
	return apperrors.External(apperrors.CodeTransferFailed,
		"the payout transfer did not confirm; it will be retried automatically", true, cause)
}

// revert puts a transferring request back to pending. Admin fields are kept
// so the failed attempt stays attributable.
func (p *Protocol) revert(ctx context.Context, req *domain.FundUnlockRequest, cause error) {
	ok, err := p.store.TransitionUnlockRequest(ctx, req.ID, domain.UnlockStatusTransferring, repository.UnlockRequestUpdate{
		Status: domain.UnlockStatusPending,
	})
	if err != nil || !ok {
		logger.Error("Failed to revert unlock request to pending",
			zap.String("request_id", req.ID),
			zap.Bool("transitioned", ok),
			zap.Error(err),
		)
		return
	}

	logger.Warn("Milestone transfer failed, request back to pending",
		zap.String("request_id", req.ID),
		zap.String("campaign_id", req.CampaignID),
		zap.Error(cause),
	)
	_ = p.auditLogger.LogUnlockDecision(ctx, req.ID, "transfer_failed", req.AdminID, map[string]interface{}{
		"campaign_id":  req.CampaignID,
		"milestone_id": req.MilestoneID,
		"error":        cause.Error(),
	})
	p.notifier.OnTransferFailed(ctx, req)
	p.events.Emit(ctx, domain.EventUnlockTransferFailed, domain.AggregateUnlockRequest, req.ID, req.AdminID,
		decisionPayload(req, "", ""))
}

// pendingMilestone re-reads the requested milestone inside the reservation.
func pendingMilestone(ctx context.Context, tx repository.Tx, req *domain.FundUnlockRequest) (domain.Milestone, error) {
	campaign, err := tx.GetCampaign(ctx, req.CampaignID)
	if err != nil {
		return domain.Milestone{}, fmt.Errorf("load campaign: %w", err)
	}
	m, ok := campaign.Milestone(req.MilestoneID)
	if !ok {
		return domain.Milestone{}, apperrors.Invariant(fmt.Sprintf("milestone %s of request %s no longer exists", req.MilestoneID, req.ID))
	}
	if m.IsApproved() {
		return domain.Milestone{}, apperrors.Invariant(fmt.Sprintf("milestone %s of request %s is already approved", req.MilestoneID, req.ID))
	}
	return m, nil
}

func decisionPayload(r *domain.FundUnlockRequest, amount, transferID string) domain.UnlockDecisionPayload {
	return domain.UnlockDecisionPayload{
		RequestID:   r.ID,
		CampaignID:  r.CampaignID,
		ArtistID:    r.ArtistID,
		MilestoneID: r.MilestoneID,
		Amount:      amount,
		TransferID:  transferID,
		AdminID:     r.AdminID,
		Response:    r.AdminResponse,
	}
}

func transferFailed(err error) *apperrors.AppError {
	return apperrors.External(apperrors.CodeTransferFailed,
		"the payout transfer was declined; the request is still pending", false, err)
}

func transferInFlight(requestID string) *apperrors.AppError {
	return apperrors.Conflict(apperrors.CodeRequestNotPending,
		fmt.Sprintf("fund unlock request %s has a transfer in flight", requestID))
}

func notPending(requestID string) *apperrors.AppError {
	return apperrors.Conflict(apperrors.CodeRequestNotPending,
		fmt.Sprintf("fund unlock request %s is not pending", requestID))
}

func invalidDecision(action string) *apperrors.AppError {
	return apperrors.Validation(apperrors.CodeInvalidDecision,
		fmt.Sprintf("action must be approve or reject, got %q", action))
}
