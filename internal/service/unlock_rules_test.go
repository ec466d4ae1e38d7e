package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundstake.io/soundstake/internal/domain"
	apperrors "soundstake.io/soundstake/internal/pkg/errors"
)

// twoMilestoneCampaign is the 3000/7000 campaign used across the unlock scenarios.
func twoMilestoneCampaign(statuses ...domain.MilestoneStatus) *domain.Campaign {
	c := &domain.Campaign{
		ID:          "c-1",
		ArtistID:    "artist-1",
		FundingGoal: dec("10000"),
		Status:      domain.CampaignStatusActive,
		IsActive:    true,
		Milestones: []domain.Milestone{
			{ID: "m-1", Name: "Recording", Amount: dec("3000"), Order: 1, Status: domain.MilestoneStatusPending},
			{ID: "m-2", Name: "Release", Amount: dec("7000"), Order: 2, Status: domain.MilestoneStatusPending},
		},
	}
	for i, s := range statuses {
		c.Milestones[i].Status = s
	}
	return c
}

func evaluate(c *domain.Campaign, raised string, proofs []domain.MilestoneProof, open bool) UnlockEvaluation {
	return EvaluateUnlock(UnlockInputs{
		Campaign:       c,
		Stats:          domain.NewFundingStats(c.ID, dec(raised), c.FundingGoal),
		Proofs:         proofs,
		HasOpenRequest: open,
	})
}

func approvedProof(milestoneID string) domain.MilestoneProof {
	return domain.MilestoneProof{MilestoneID: milestoneID, Status: domain.ProofStatusApproved}
}

func TestEvaluateUnlock_FirstRequestTargetsFirstMilestone(t *testing.T) {
	ev := evaluate(twoMilestoneCampaign(), "5000", nil, false)

	require.True(t, ev.CanRequest(), "blocked by %s", ev.BlockingReason())
	require.NotNil(t, ev.TargetMilestone)
	assert.Equal(t, "m-1", ev.TargetMilestone.ID)
	assert.Nil(t, ev.ProofBlockingMilestone)
	assert.Equal(t, "m-1", ev.NextMilestone.ID)
	assertDecimal(t, "3000", ev.RequiredForNext)
	assertDecimal(t, "0", ev.Shortfall)
}

func TestEvaluateUnlock_FundingThresholdBoundary(t *testing.T) {
	below := evaluate(twoMilestoneCampaign(), "4990", nil, false)
	assert.Equal(t, apperrors.CodeFundingThresholdNotMet, below.BlockingReason())
	assert.False(t, below.ThresholdMet)

	at := evaluate(twoMilestoneCampaign(), "5000", nil, false)
	assert.True(t, at.ThresholdMet)
	assert.True(t, at.CanRequest())
}

func TestEvaluateUnlock_ProofGate(t *testing.T) {
	c := twoMilestoneCampaign(domain.MilestoneStatusApproved)

	// regardless of funding level
	for _, raised := range []string{"5000", "10000"} {
		ev := evaluate(c, raised, nil, false)
		assert.Equal(t, apperrors.CodeMilestoneProofRequired, ev.BlockingReason())
		require.NotNil(t, ev.ProofBlockingMilestone)
		assert.Equal(t, "m-1", ev.ProofBlockingMilestone.ID)
		assert.Equal(t, "m-1", ev.Err.Params["milestone_id"])
		assert.Equal(t, "Recording", ev.Err.Params["milestone_name"])
	}

	pending := []domain.MilestoneProof{{MilestoneID: "m-1", Status: domain.ProofStatusPending}}
	ev := evaluate(c, "10000", pending, false)
	assert.Equal(t, apperrors.CodeMilestoneProofRequired, ev.BlockingReason())
}

func TestEvaluateUnlock_FundingShortfall(t *testing.T) {
	c := twoMilestoneCampaign(domain.MilestoneStatusApproved)
	ev := evaluate(c, "5000", []domain.MilestoneProof{approvedProof("m-1")}, false)

	assert.Equal(t, apperrors.CodeFundingShortfall, ev.BlockingReason())
	assert.Nil(t, ev.ProofBlockingMilestone)
	assert.Equal(t, "m-2", ev.NextMilestone.ID)
	assertDecimal(t, "10000", ev.RequiredForNext)
	assertDecimal(t, "5000", ev.Shortfall)
	assert.Contains(t, ev.Err.Message, "need 5000 more")
}

func TestEvaluateUnlock_SecondMilestoneAtFullFunding(t *testing.T) {
	c := twoMilestoneCampaign(domain.MilestoneStatusApproved)
	ev := evaluate(c, "10000", []domain.MilestoneProof{approvedProof("m-1")}, false)

	require.True(t, ev.CanRequest(), "blocked by %s", ev.BlockingReason())
	assert.Equal(t, "m-2", ev.TargetMilestone.ID)
}

func TestEvaluateUnlock_AllApproved(t *testing.T) {
	c := twoMilestoneCampaign(domain.MilestoneStatusApproved, domain.MilestoneStatusApproved)
	proofs := []domain.MilestoneProof{approvedProof("m-1"), approvedProof("m-2")}
	ev := evaluate(c, "10000", proofs, false)

	assert.Equal(t, apperrors.CodeNoUnlockableMilestone, ev.BlockingReason())
	assert.Nil(t, ev.NextMilestone)
	assert.Nil(t, ev.TargetMilestone)
}

func TestEvaluateUnlock_NoMilestoneUnderThreshold(t *testing.T) {
	c := twoMilestoneCampaign()
	c.Milestones = []domain.Milestone{
		{ID: "m-1", Name: "Everything", Amount: dec("10000"), Order: 1, Status: domain.MilestoneStatusPending},
	}

	// 60% funded, the only milestone needs 100%
	ev := evaluate(c, "6000", nil, false)
	assert.Equal(t, apperrors.CodeNoUnlockableMilestone, ev.BlockingReason())
	assert.Nil(t, ev.TargetMilestone)
	assert.Equal(t, "m-1", ev.NextMilestone.ID)
}

func TestEvaluateUnlock_ScanUsesIndividualThresholds(t *testing.T) {
	c := twoMilestoneCampaign()
	c.Milestones[0].Amount = dec("6000")
	c.Milestones[1].Amount = dec("4000")

	// order 1 needs 60%, order 2 needs 40%
	ev := evaluate(c, "5000", nil, false)
	require.True(t, ev.CanRequest())
	assert.Equal(t, "m-2", ev.TargetMilestone.ID)

	ev = evaluate(c, "6000", nil, false)
	assert.Equal(t, "m-1", ev.TargetMilestone.ID)
}

func TestEvaluateUnlock_PreconditionOrder(t *testing.T) {
	inactive := twoMilestoneCampaign()
	inactive.Status = domain.CampaignStatusDraft
	inactive.IsActive = false
	assert.Equal(t, apperrors.CodeCampaignNotActive, evaluate(inactive, "0", nil, true).BlockingReason())

	empty := twoMilestoneCampaign()
	empty.Milestones = nil
	assert.Equal(t, apperrors.CodeCampaignNoMilestones, evaluate(empty, "0", nil, true).BlockingReason())

	// open request is reported before the funding threshold
	assert.Equal(t, apperrors.CodeDuplicateRequest, evaluate(twoMilestoneCampaign(), "0", nil, true).BlockingReason())
}

func TestEvaluateUnlock_CustomThreshold(t *testing.T) {
	c := twoMilestoneCampaign()
	ev := EvaluateUnlock(UnlockInputs{
		Campaign:          c,
		Stats:             domain.NewFundingStats(c.ID, dec("3000"), c.FundingGoal),
		MinFundingPercent: dec("30"),
	})
	require.True(t, ev.CanRequest(), "blocked by %s", ev.BlockingReason())
	assert.Equal(t, "m-1", ev.TargetMilestone.ID)
}
