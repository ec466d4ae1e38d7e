package handlers

import (
	"bytes"
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	"soundstake.io/soundstake/internal/api/generated"
	"soundstake.io/soundstake/internal/domain"
	"soundstake.io/soundstake/internal/governance/unlock"
	apperrors "soundstake.io/soundstake/internal/pkg/errors"
	"soundstake.io/soundstake/internal/repository"
)

const maxUnlockRequestPage = 200

// SubmitUnlockRequest handles POST /campaigns/{id}/unlock-requests.
func (s *Server) SubmitUnlockRequest(c *gin.Context, id generated.CampaignID) {
	req, err := s.unlock.SubmitFundUnlockRequest(c.Request.Context(), actorFromCtx(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// GetUnlockStatus handles GET /campaigns/{id}/unlock-status.
func (s *Server) GetUnlockStatus(c *gin.Context, id generated.CampaignID) {
	status, err := s.unlock.GetFundUnlockRequestStatus(c.Request.Context(), actorFromCtx(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// ListMilestoneProofs handles GET /campaigns/{id}/proofs.
func (s *Server) ListMilestoneProofs(c *gin.Context, id generated.CampaignID) {
	proofs, err := s.unlock.ListMilestoneProofs(c.Request.Context(), ownerScope(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newItemList(proofs))
}

// AddMilestoneProof handles POST /campaigns/{id}/milestones/{milestoneId}/proofs.
func (s *Server) AddMilestoneProof(c *gin.Context, id generated.CampaignID, milestoneId string) {
	var req generated.AddMilestoneProofJSONRequestBody
	if !bindJSON(c, &req) {
		return
	}
	in := unlock.ProofInput{
		ArtistID:     actorFromCtx(c),
		CampaignID:   id,
		MilestoneID:  milestoneId,
		Description:  req.Description,
		ArtifactRef:  req.ArtifactRef,
		ArtifactName: req.ArtifactName,
		ContentType:  req.ContentType,
	}
	if req.ArtifactBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(req.ArtifactBase64)
		if err != nil {
			_ = c.Error(apperrors.Validation(apperrors.CodeValidationFailed, "artifact_base64 is not valid base64").WithCause(err))
			return
		}
		in.Artifact = bytes.NewReader(data)
	}

	proof, err := s.unlock.AddMilestoneProof(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, proof)
}

// ListUnlockRequests handles GET /admin/unlock-requests. A zero limit means
// the repository default.
func (s *Server) ListUnlockRequests(c *gin.Context, params generated.ListUnlockRequestsParams) {
	if params.Limit < 0 || params.Limit > maxUnlockRequestPage {
		_ = c.Error(apperrors.Validation(apperrors.CodeValidationFailed, "limit must be between 1 and 200").
			WithParams(map[string]interface{}{"limit": params.Limit}))
		return
	}
	requests, err := s.unlock.ListFundUnlockRequests(c.Request.Context(), repository.UnlockRequestFilter{
		CampaignID: params.CampaignId,
		Status:     domain.UnlockRequestStatus(params.Status),
		Limit:      params.Limit,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newItemList(requests))
}

// DecideUnlockRequest handles POST /admin/unlock-requests/{id}/decision.
func (s *Server) DecideUnlockRequest(c *gin.Context, id string) {
	var req generated.DecideUnlockRequestJSONRequestBody
	if !bindJSON(c, &req) {
		return
	}
	out, err := s.unlock.ApproveRejectFundRequest(c.Request.Context(), actorFromCtx(c), id, string(req.Action), req.Response)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// DecideMilestoneProof handles POST /admin/milestone-proofs/{id}/decision.
func (s *Server) DecideMilestoneProof(c *gin.Context, id string) {
	var req generated.DecideMilestoneProofJSONRequestBody
	if !bindJSON(c, &req) {
		return
	}
	proof, err := s.unlock.ApproveRejectMilestoneProof(c.Request.Context(), actorFromCtx(c), id, string(req.Action), req.Response)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, proof)
}
