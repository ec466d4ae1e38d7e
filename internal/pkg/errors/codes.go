package errors

import (
	"fmt"
	"net/http"
)

// Campaign error codes.
const (
	CodeCampaignNotFound     = "CAMPAIGN_NOT_FOUND"
	CodeNotCampaignOwner     = "NOT_CAMPAIGN_OWNER"
	CodeCampaignNotActive    = "CAMPAIGN_NOT_ACTIVE"
	CodeCampaignNotDraft     = "CAMPAIGN_NOT_DRAFT"
	CodeCampaignNoMilestones = "CAMPAIGN_HAS_NO_MILESTONES"
	CodeMilestoneSumMismatch = "MILESTONE_SUM_MISMATCH"
	CodeMilestoneNotFound    = "MILESTONE_NOT_FOUND"
	CodeEntitlementRequired  = "ENTITLEMENT_REQUIRED"
	CodeMetadataNotVerified  = "METADATA_NOT_VERIFIED"
)

// Funding error codes.
const (
	CodeFundingGoalReached      = "FUNDING_GOAL_REACHED"
	CodeContributionExceedsGoal = "CONTRIBUTION_EXCEEDS_GOAL"
	CodeContributionNotFound    = "CONTRIBUTION_NOT_FOUND"
	CodeDuplicateContribution   = "DUPLICATE_CONTRIBUTION"
)

// Unlock protocol error codes.
const (
	CodeDuplicateRequest         = "DUPLICATE_PENDING_REQUEST"
	CodeFundingThresholdNotMet   = "FUNDING_THRESHOLD_NOT_MET"
	CodeMilestoneProofRequired   = "MILESTONE_PROOF_REQUIRED"
	CodeFundingShortfall         = "FUNDING_SHORTFALL"
	CodeNoUnlockableMilestone    = "NO_UNLOCKABLE_MILESTONE"
	CodeUnlockRequestNotFound    = "UNLOCK_REQUEST_NOT_FOUND"
	CodeRequestNotPending        = "REQUEST_NOT_PENDING"
	CodePayoutDestinationMissing = "PAYOUT_DESTINATION_MISSING"
	CodeTransferFailed           = "TRANSFER_FAILED"
	CodeMilestoneNotApproved     = "MILESTONE_NOT_APPROVED"
	CodeProofAlreadySubmitted    = "PROOF_ALREADY_SUBMITTED"
	CodeProofNotFound            = "PROOF_NOT_FOUND"
	CodeProofNotPending          = "PROOF_NOT_PENDING"
	CodeInvalidDecision          = "INVALID_DECISION"
)

// Revenue error codes.
const (
	CodeRevenueNotFound         = "REVENUE_EVENT_NOT_FOUND"
	CodeRevenueAlreadyProcessed = "REVENUE_ALREADY_PROCESSED"
)

// Platform error codes.
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeLookupFailed       = "LOOKUP_FAILED"
	CodeInvariantViolation = "INVARIANT_VIOLATION"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrCampaignNotFound creates a campaign not found error.
func ErrCampaignNotFound(campaignID string) *AppError {
	return NotFound(CodeCampaignNotFound, "campaign not found").
		WithParams(map[string]interface{}{"campaign_id": campaignID})
}

// ErrNotCampaignOwner is returned when an artist acts on another artist's campaign.
func ErrNotCampaignOwner() *AppError {
	return Forbidden(CodeNotCampaignOwner, "you can only act on your own campaigns")
}

// ErrFundingShortfall reports the exact amount still needed for the next milestone.
func ErrFundingShortfall(required, raised, shortfall fmt.Stringer) *AppError {
	return New(CodeFundingShortfall,
		fmt.Sprintf("insufficient funding for next milestone: need %s more", shortfall),
		http.StatusConflict,
	).WithParams(map[string]interface{}{
		"required":  required.String(),
		"raised":    raised.String(),
		"shortfall": shortfall.String(),
	})
}
