package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"soundstake.io/soundstake/internal/domain"
	"soundstake.io/soundstake/internal/pkg/logger"
)

// Triggers turns funding decisions into inbox notifications:
//  1. campaign review outcome → artist
//  2. unlock approved / rejected / transfer failed → artist
//  3. proof reviewed → artist
//  4. revenue distributed → each paid investor
//
// Every method is nil-safe and never returns an error to the caller.
type Triggers struct {
	sender Sender
}

// NewTriggers creates a new notification trigger service.
func NewTriggers(sender Sender) *Triggers {
	return &Triggers{sender: sender}
}

// OnCampaignReviewed notifies the artist of the review outcome.
func (t *Triggers) OnCampaignReviewed(ctx context.Context, c *domain.Campaign, reviewer string) {
	if t == nil || c == nil {
		return
	}
	t.send(ctx, Params{
		RecipientID:  c.ArtistID,
		Type:         TypeCampaignReviewed,
		Title:        fmt.Sprintf("Campaign %q is now %s", c.Title, c.Status),
		Message:      fmt.Sprintf("Your campaign for %s was reviewed by %s: %s", c.SongTitle, reviewer, c.Status),
		ResourceType: domain.AggregateCampaign,
		ResourceID:   c.ID,
	})
}

// OnUnlockApproved notifies the artist that the tranche was transferred.
func (t *Triggers) OnUnlockApproved(ctx context.Context, req *domain.FundUnlockRequest, m domain.Milestone) {
	if t == nil || req == nil {
		return
	}
	t.send(ctx, Params{
		RecipientID:  req.ArtistID,
		Type:         TypeUnlockApproved,
		Title:        fmt.Sprintf("Milestone %q unlocked", m.Name),
		Message:      fmt.Sprintf("%s has been transferred to your payout account (transfer %s)", m.Amount.StringFixed(2), req.TransferID),
		ResourceType: domain.AggregateUnlockRequest,
		ResourceID:   req.ID,
	})
}

// OnUnlockRejected notifies the artist of a rejected request.
func (t *Triggers) OnUnlockRejected(ctx context.Context, req *domain.FundUnlockRequest, reason string) {
	if t == nil || req == nil {
		return
	}
	msg := fmt.Sprintf("Your fund unlock request %s was rejected", req.ID)
	if reason != "" {
		msg += fmt.Sprintf(": %s", reason)
	}
	t.send(ctx, Params{
		RecipientID:  req.ArtistID,
		Type:         TypeUnlockRejected,
		Title:        "Fund unlock request rejected",
		Message:      msg,
		ResourceType: domain.AggregateUnlockRequest,
		ResourceID:   req.ID,
	})
}

// OnTransferFailed tells the artist the request is back to pending.
func (t *Triggers) OnTransferFailed(ctx context.Context, req *domain.FundUnlockRequest) {
	if t == nil || req == nil {
		return
	}
	t.send(ctx, Params{
		RecipientID:  req.ArtistID,
		Type:         TypeTransferFailed,
		Title:        "Payout transfer did not go through",
		Message:      fmt.Sprintf("The transfer for request %s was declined; the request is back to pending", req.ID),
		ResourceType: domain.AggregateUnlockRequest,
		ResourceID:   req.ID,
	})
}

// OnProofReviewed notifies the artist of a proof decision.
func (t *Triggers) OnProofReviewed(ctx context.Context, p *domain.MilestoneProof) {
	if t == nil || p == nil {
		return
	}
	msg := fmt.Sprintf("Your proof for milestone %s was %s", p.MilestoneID, p.Status)
	if p.AdminResponse != "" {
		msg += fmt.Sprintf(": %s", p.AdminResponse)
	}
	t.send(ctx, Params{
		RecipientID:  p.ArtistID,
		Type:         TypeProofReviewed,
		Title:        fmt.Sprintf("Milestone proof %s", p.Status),
		Message:      msg,
		ResourceType: domain.AggregateProof,
		ResourceID:   p.ID,
	})
}

// OnPayoutsDistributed notifies every investor that received a payout.
func (t *Triggers) OnPayoutsDistributed(ctx context.Context, revenueID string, payouts []*domain.Payout) {
	if t == nil {
		return
	}
	for _, p := range payouts {
		t.send(ctx, Params{
			RecipientID:  p.InvestorID,
			Type:         TypePayoutReceived,
			Title:        "Revenue payout received",
			Message:      fmt.Sprintf("You earned %s from campaign %s (%s%% ownership)", p.Amount.StringFixed(2), p.CampaignID, p.OwnershipShare.String()),
			ResourceType: domain.AggregateRevenue,
			ResourceID:   revenueID,
		})
	}
}

func (t *Triggers) send(ctx context.Context, params Params) {
	if t.sender == nil {
		return
	}
	if err := t.sender.Send(ctx, params); err != nil {
		logger.Error("failed to send notification",
			zap.String("type", params.Type),
			zap.String("recipient", params.RecipientID),
			zap.String("resource_id", params.ResourceID),
			zap.Error(err),
		)
	}
}
