package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"soundstake.io/soundstake/internal/domain"
	apperrors "soundstake.io/soundstake/internal/pkg/errors"
)

// DefaultMinFundingPercent is the funding level below which unlock is unavailable.
var DefaultMinFundingPercent = decimal.NewFromInt(50)

// UnlockInputs are the facts an unlock evaluation depends on.
type UnlockInputs struct {
	Campaign          *domain.Campaign
	Stats             domain.FundingStats
	Proofs            []domain.MilestoneProof
	HasOpenRequest    bool
	MinFundingPercent decimal.Decimal
}

// UnlockEvaluation is the derived unlock view of a campaign. Every fact is
// computed even when an earlier precondition fails, so the status query can
// report all of them. Err holds the first failing precondition in order.
type UnlockEvaluation struct {
	Stats                  domain.FundingStats
	HasOpenRequest         bool
	ThresholdMet           bool
	LastApprovedMilestone  *domain.Milestone
	ProofBlockingMilestone *domain.Milestone
	NextMilestone          *domain.Milestone
	RequiredForNext        decimal.Decimal
	Shortfall              decimal.Decimal
	TargetMilestone        *domain.Milestone
	Err                    *apperrors.AppError
}

// CanRequest reports whether a new unlock request would be accepted.
func (e UnlockEvaluation) CanRequest() bool { return e.Err == nil }

// BlockingReason returns the error code of the first failing precondition, or "".
func (e UnlockEvaluation) BlockingReason() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Code
}

// EvaluateUnlock applies the unlock preconditions that follow ownership:
// campaign active with milestones, no open request, funding threshold, proof
// gate, funding sufficiency, then the milestone threshold scan.
func EvaluateUnlock(in UnlockInputs) UnlockEvaluation {
	c := in.Campaign
	minPct := in.MinFundingPercent
	if !minPct.IsPositive() {
		minPct = DefaultMinFundingPercent
	}

	ev := UnlockEvaluation{
		Stats:           in.Stats,
		HasOpenRequest:  in.HasOpenRequest,
		ThresholdMet:    in.Stats.FundingPercentage.GreaterThanOrEqual(minPct),
		RequiredForNext: decimal.Zero,
		Shortfall:       decimal.Zero,
	}

	milestones := c.SortedMilestones()

	if last, ok := c.LastApprovedMilestone(); ok {
		ev.LastApprovedMilestone = &last
		if !hasApprovedProof(in.Proofs, last.ID) {
			ev.ProofBlockingMilestone = &last
		}
	}

	// next milestone is the first one after the last approved, or the first overall
	cumulative := decimal.Zero
	for i := range milestones {
		m := milestones[i]
		cumulative = cumulative.Add(m.Amount)
		if ev.LastApprovedMilestone != nil && m.Order <= ev.LastApprovedMilestone.Order {
			continue
		}
		ev.NextMilestone = &m
		ev.RequiredForNext = cumulative
		break
	}
	if ev.NextMilestone != nil && ev.Stats.TotalRaised.LessThan(ev.RequiredForNext) {
		ev.Shortfall = ev.RequiredForNext.Sub(ev.Stats.TotalRaised)
	}

	for i := range milestones {
		m := milestones[i]
		if m.IsApproved() {
			continue
		}
		if domain.Percentage(m.Amount, c.FundingGoal).LessThanOrEqual(ev.Stats.FundingPercentage) {
			ev.TargetMilestone = &m
			break
		}
	}

	ev.Err = firstUnlockFailure(c, ev, minPct)
	return ev
}

func firstUnlockFailure(c *domain.Campaign, ev UnlockEvaluation, minPct decimal.Decimal) *apperrors.AppError {
	switch {
	case c.Status != domain.CampaignStatusActive || !c.IsActive:
		return apperrors.Conflict(apperrors.CodeCampaignNotActive,
			"fund unlock requests can only be submitted for active campaigns")
	case len(c.Milestones) == 0:
		return apperrors.Conflict(apperrors.CodeCampaignNoMilestones,
			"campaign must have milestones to submit fund unlock requests")
	case ev.HasOpenRequest:
		return apperrors.Conflict(apperrors.CodeDuplicateRequest,
			"a fund unlock request for this campaign is already pending")
	case !ev.ThresholdMet:
		return apperrors.Conflict(apperrors.CodeFundingThresholdNotMet,
			fmt.Sprintf("fund unlock requests require at least %s%% of the funding goal, currently %s%%",
				minPct, ev.Stats.FundingPercentage.Round(2))).
			WithParams(map[string]interface{}{
				"funding_percentage":  ev.Stats.FundingPercentage.Round(2).String(),
				"required_percentage": minPct.String(),
			})
	case ev.ProofBlockingMilestone != nil:
		m := ev.ProofBlockingMilestone
		return apperrors.Conflict(apperrors.CodeMilestoneProofRequired,
			fmt.Sprintf("submit approved proof for milestone %q before requesting more funds", m.Name)).
			WithParams(map[string]interface{}{
				"milestone_id":   m.ID,
				"milestone_name": m.Name,
			})
	case ev.LastApprovedMilestone != nil && ev.Shortfall.IsPositive():
		return apperrors.ErrFundingShortfall(ev.RequiredForNext, ev.Stats.TotalRaised, ev.Shortfall)
	case ev.TargetMilestone == nil:
		return apperrors.Conflict(apperrors.CodeNoUnlockableMilestone,
			"no milestone is available for unlock at the current funding level")
	default:
		return nil
	}
}

func hasApprovedProof(proofs []domain.MilestoneProof, milestoneID string) bool {
	for _, p := range proofs {
		if p.MilestoneID == milestoneID && p.Status == domain.ProofStatusApproved {
			return true
		}
	}
	return false
}
