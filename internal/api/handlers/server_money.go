package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"soundstake.io/soundstake/internal/api/generated"
	apperrors "soundstake.io/soundstake/internal/pkg/errors"
	"soundstake.io/soundstake/internal/pkg/logger"
	"soundstake.io/soundstake/internal/usecase"
)

// WebhookSecretHeader carries the shared secret on payment webhooks.
const WebhookSecretHeader = "X-Webhook-Secret"

// RecordContribution handles POST /campaigns/{id}/contributions.
func (s *Server) RecordContribution(c *gin.Context, id generated.CampaignID) {
	var req generated.RecordContributionJSONRequestBody
	if !bindJSON(c, &req) {
		return
	}
	contribution, err := s.contributions.RecordContribution(c.Request.Context(), usecase.ContributionInput{
		InvestorID:      actorFromCtx(c),
		CampaignID:      id,
		Amount:          req.Amount,
		TransactionID:   req.TransactionId,
		PaymentIntentID: req.PaymentIntentId,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, contribution)
}

// CreateInvestment handles POST /campaigns/{id}/investments.
func (s *Server) CreateInvestment(c *gin.Context, id generated.CampaignID) {
	var req generated.CreateInvestmentJSONRequestBody
	if !bindJSON(c, &req) {
		return
	}
	inv, err := s.investments.CreateInvestment(c.Request.Context(), actorFromCtx(c), id, req.Amount, req.PaymentRef)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// PaymentWebhook handles POST /webhooks/payments. The payment service
// authenticates with a shared secret instead of a user token.
func (s *Server) PaymentWebhook(c *gin.Context, params generated.PaymentWebhookParams) {
	if s.webhookSecret == "" {
		_ = c.Error(apperrors.New("WEBHOOK_DISABLED", "payment webhooks are not configured", http.StatusServiceUnavailable))
		return
	}
	if subtle.ConstantTimeCompare([]byte(params.XWebhookSecret), []byte(s.webhookSecret)) != 1 {
		logger.Warn("Payment webhook rejected", zap.String("client_ip", c.ClientIP()))
		_ = c.Error(apperrors.Unauthorized("UNAUTHORIZED", "invalid webhook secret"))
		return
	}

	var req generated.PaymentWebhookJSONRequestBody
	if !bindJSON(c, &req) {
		return
	}
	contribution, err := s.contributions.ReconcileContribution(c.Request.Context(), req.PaymentIntentId, string(req.Status))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, contribution)
}

// ProcessRevenue handles POST /admin/campaigns/{id}/revenue. A fan-out handed
// to the job queue answers 202.
func (s *Server) ProcessRevenue(c *gin.Context, id generated.CampaignID) {
	var req generated.ProcessRevenueJSONRequestBody
	if !bindJSON(c, &req) {
		return
	}
	res, err := s.payouts.ProcessRevenue(c.Request.Context(), usecase.RevenueInput{
		CampaignID:  id,
		Source:      req.Source,
		Amount:      req.Amount,
		StreamCount: req.StreamCount,
		Country:     req.Country,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	status := http.StatusCreated
	if res.Queued {
		status = http.StatusAccepted
	}
	c.JSON(status, res)
}
