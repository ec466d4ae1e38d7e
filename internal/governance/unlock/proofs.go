package unlock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"soundstake.io/soundstake/internal/domain"
	apperrors "soundstake.io/soundstake/internal/pkg/errors"
	"soundstake.io/soundstake/internal/pkg/logger"
	"soundstake.io/soundstake/internal/repository"
)

// ProofInput is an artist's evidence for an approved milestone. Either
// ArtifactRef or Artifact must be set; Artifact wins.
type ProofInput struct {
	ArtistID    string
	CampaignID  string
	MilestoneID string
	Description string
	ArtifactRef string

	Artifact     io.Reader
	ArtifactName string
	ContentType  string
}

// AddMilestoneProof records proof of work for a milestone whose funds were released.
// A rejected proof is resubmitted in place.
func (p *Protocol) AddMilestoneProof(ctx context.Context, in ProofInput) (*domain.MilestoneProof, error) {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return nil, apperrors.Validation(apperrors.CodeValidationFailed, "description is required")
	}
	if in.Artifact == nil && strings.TrimSpace(in.ArtifactRef) == "" {
		return nil, apperrors.Validation(apperrors.CodeValidationFailed, "a proof artifact or reference is required")
	}

	campaign, err := ownedCampaign(ctx, p.store, in.ArtistID, in.CampaignID)
	if err != nil {
		return nil, err
	}
	if err := checkProofMilestone(campaign, in.MilestoneID); err != nil {
		return nil, err
	}

	// Checked again inside the transaction; this early read keeps a refused
	// resubmission from leaving an orphaned artifact behind.
	existing, err := p.store.GetProofForMilestone(ctx, in.CampaignID, in.MilestoneID)
	switch {
	case err == nil && existing.BlocksResubmission():
		return nil, proofAlreadySubmitted(in.MilestoneID)
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("load proof: %w", err)
	}

	ref := in.ArtifactRef
	if in.Artifact != nil {
		if p.files == nil {
			return nil, apperrors.Validation(apperrors.CodeValidationFailed, "artifact upload is not configured; pass a reference")
		}
		name := in.ArtifactName
		if name == "" {
			name = fmt.Sprintf("%s-%s", in.CampaignID, in.MilestoneID)
		}
		ref, err = p.files.Put(ctx, name, in.ContentType, in.Artifact)
		if err != nil {
			return nil, apperrors.External(apperrors.CodeLookupFailed, "failed to store proof artifact", true, err)
		}
	}

	var saved *domain.MilestoneProof
	resubmitted := false
	err = p.store.InTx(ctx, func(tx repository.Tx) error {
		existing, err := tx.GetProofForMilestone(ctx, in.CampaignID, in.MilestoneID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			now := p.now()
			proof := &domain.MilestoneProof{
				ID:          newID(),
				CampaignID:  in.CampaignID,
				ArtistID:    in.ArtistID,
				MilestoneID: in.MilestoneID,
				Description: in.Description,
				Proof:       ref,
				Status:      domain.ProofStatusPending,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.InsertProof(ctx, proof); err != nil {
				if errors.Is(err, repository.ErrConflict) {
					return proofAlreadySubmitted(in.MilestoneID)
				}
				return fmt.Errorf("insert proof: %w", err)
			}
			saved = proof
			return nil
		case err != nil:
			return fmt.Errorf("load proof: %w", err)
		}

		if existing.BlocksResubmission() {
			return proofAlreadySubmitted(in.MilestoneID)
		}
		ok, err := tx.ResubmitProof(ctx, existing.ID, in.Description, ref, p.now())
		if err != nil {
			return fmt.Errorf("resubmit proof: %w", err)
		}
		if !ok {
			return proofAlreadySubmitted(in.MilestoneID)
		}
		resubmitted = true
		saved, err = tx.GetProof(ctx, existing.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	p.events.Emit(ctx, domain.EventProofSubmitted, domain.AggregateProof, saved.ID, in.ArtistID, proofPayload(saved))
	logger.Info("Milestone proof submitted",
		zap.String("proof_id", saved.ID),
		zap.String("campaign_id", saved.CampaignID),
		zap.String("milestone_id", saved.MilestoneID),
		zap.Bool("resubmitted", resubmitted),
	)
	return saved, nil
}

// ApproveRejectMilestoneProof applies an admin decision to a pending proof.
func (p *Protocol) ApproveRejectMilestoneProof(ctx context.Context, adminID, proofID, action, response string) (*domain.MilestoneProof, error) {
	decision, err := domain.ParseDecision(action)
	if err != nil {
		return nil, invalidDecision(action)
	}

	status := domain.ProofStatusApproved
	eventType := domain.EventProofApproved
	if decision == domain.DecisionReject {
		status = domain.ProofStatusRejected
		eventType = domain.EventProofRejected
	}

	ok, err := p.store.TransitionProof(ctx, proofID, domain.ProofStatusPending, repository.ProofDecision{
		Status:        status,
		AdminID:       adminID,
		AdminResponse: response,
		At:            p.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("transition proof: %w", err)
	}
	if !ok {
		if _, err := p.store.GetProof(ctx, proofID); errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(apperrors.CodeProofNotFound, fmt.Sprintf("milestone proof %s not found", proofID))
		}
		return nil, apperrors.Conflict(apperrors.CodeProofNotPending, fmt.Sprintf("milestone proof %s is not pending", proofID))
	}

	proof, err := p.store.GetProof(ctx, proofID)
	if err != nil {
		return nil, fmt.Errorf("reload proof: %w", err)
	}

	_ = p.auditLogger.LogProofDecision(ctx, proof.ID, string(status), adminID)
	p.notifier.OnProofReviewed(ctx, proof)
	p.events.Emit(ctx, eventType, domain.AggregateProof, proof.ID, adminID, proofPayload(proof))

	logger.Info("Milestone proof reviewed",
		zap.String("proof_id", proof.ID),
		zap.String("status", string(status)),
		zap.String("actor", adminID),
	)
	return proof, nil
}

// ListMilestoneProofs lists a campaign's proofs. An empty artistID skips the
// ownership check (admin access).
func (p *Protocol) ListMilestoneProofs(ctx context.Context, artistID, campaignID string) ([]*domain.MilestoneProof, error) {
	if artistID != "" {
		if _, err := ownedCampaign(ctx, p.store, artistID, campaignID); err != nil {
			return nil, err
		}
	}
	proofs, err := p.store.ListProofs(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list proofs: %w", err)
	}
	return proofs, nil
}

func checkProofMilestone(c *domain.Campaign, milestoneID string) error {
	m, ok := c.Milestone(milestoneID)
	if !ok {
		return apperrors.NotFound(apperrors.CodeMilestoneNotFound,
			fmt.Sprintf("milestone %s not found in campaign %s", milestoneID, c.ID))
	}
	if !m.IsApproved() {
		return apperrors.Conflict(apperrors.CodeMilestoneNotApproved,
			fmt.Sprintf("milestone %q has not been funded yet", m.Name))
	}
	return nil
}

func proofAlreadySubmitted(milestoneID string) *apperrors.AppError {
	return apperrors.Conflict(apperrors.CodeProofAlreadySubmitted,
		fmt.Sprintf("a proof for milestone %s is already pending or approved", milestoneID))
}

func proofPayload(pr *domain.MilestoneProof) domain.ProofPayload {
	return domain.ProofPayload{
		ProofID:     pr.ID,
		CampaignID:  pr.CampaignID,
		ArtistID:    pr.ArtistID,
		MilestoneID: pr.MilestoneID,
		AdminID:     pr.AdminID,
		Response:    pr.AdminResponse,
	}
}
