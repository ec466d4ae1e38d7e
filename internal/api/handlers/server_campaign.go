package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"soundstake.io/soundstake/internal/api/generated"
	"soundstake.io/soundstake/internal/api/middleware"
	"soundstake.io/soundstake/internal/domain"
	"soundstake.io/soundstake/internal/usecase"
)

// CreateCampaign handles POST /campaigns.
func (s *Server) CreateCampaign(c *gin.Context) {
	var req generated.CreateCampaignJSONRequestBody
	if !bindJSON(c, &req) {
		return
	}
	campaign, err := s.campaigns.CreateCampaign(c.Request.Context(), actorFromCtx(c), createCampaignInput(req))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

func createCampaignInput(req generated.CreateCampaignRequest) usecase.CreateCampaignInput {
	in := usecase.CreateCampaignInput{
		Title:       req.Title,
		SongTitle:   req.SongTitle,
		ArtistName:  req.ArtistName,
		Genre:       req.Genre,
		Duration:    string(req.Duration),
		FundingGoal: req.FundingGoal,
		Links: domain.SongLinks{
			SongTitle:  req.Links.SongTitle,
			ArtistName: req.Links.ArtistName,
			SpotifyURL: req.Links.SpotifyUrl,
			YouTubeURL: req.Links.YoutubeUrl,
			DeezerURL:  req.Links.DeezerUrl,
		},
		Milestones: make([]usecase.MilestoneInput, 0, len(req.Milestones)),
	}
	for _, m := range req.Milestones {
		in.Milestones = append(in.Milestones, usecase.MilestoneInput{
			Name:        m.Name,
			Amount:      m.Amount,
			Description: m.Description,
			Order:       m.Order,
		})
	}
	return in
}

// ListMyCampaigns handles GET /campaigns for the calling artist.
func (s *Server) ListMyCampaigns(c *gin.Context) {
	views, err := s.campaigns.ListArtistCampaigns(c.Request.Context(), actorFromCtx(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newItemList(views))
}

// GetCampaign handles GET /campaigns/{id}.
func (s *Server) GetCampaign(c *gin.Context, id generated.CampaignID) {
	view, err := s.campaigns.GetCampaign(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetCampaignFunding handles GET /campaigns/{id}/funding.
func (s *Server) GetCampaignFunding(c *gin.Context, id generated.CampaignID) {
	stats, err := s.campaigns.GetFundingStats(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// PreviewInvestment handles GET /campaigns/{id}/roi/preview?amount=. The
// generated wrapper has already rejected a missing or non-numeric amount.
func (s *Server) PreviewInvestment(c *gin.Context, id generated.CampaignID, params generated.PreviewInvestmentParams) {
	preview, err := s.investments.PreviewInvestment(c.Request.Context(), id, decimal.NewFromFloat(params.Amount))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// ConnectPayoutDestination handles PUT /artists/me/payout-destination.
func (s *Server) ConnectPayoutDestination(c *gin.Context) {
	var req generated.ConnectPayoutDestinationJSONRequestBody
	if !bindJSON(c, &req) {
		return
	}
	dest, err := s.campaigns.ConnectPayoutDestination(c.Request.Context(), actorFromCtx(c), req.AccountRef)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dest)
}

// ReviewCampaign handles POST /admin/campaigns/{id}/review.
func (s *Server) ReviewCampaign(c *gin.Context, id generated.CampaignID) {
	var req generated.ReviewCampaignJSONRequestBody
	if !bindJSON(c, &req) {
		return
	}
	campaign, err := s.campaigns.ReviewCampaign(c.Request.Context(), actorFromCtx(c), id, string(req.Action), req.Response)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

// ownerScope is the artist whose resources the caller may see. Platform
// admins see every artist's resources.
func ownerScope(c *gin.Context) string {
	if middleware.IsPlatformAdmin(c) {
		return ""
	}
	return actorFromCtx(c)
}
