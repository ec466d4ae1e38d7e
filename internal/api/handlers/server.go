// Package handlers implements generated.ServerInterface, the gin server
// produced from the embedded OpenAPI contract. Handlers decode the generated
// request models, call the use cases and report failures through c.Error so
// the ErrorHandler middleware renders them.
//
// Import Path: soundstake.io/soundstake/internal/api/handlers
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"soundstake.io/soundstake/internal/governance/unlock"
	apperrors "soundstake.io/soundstake/internal/pkg/errors"
	"soundstake.io/soundstake/internal/provider"
	"soundstake.io/soundstake/internal/usecase"
)

// DBPinger reports database reachability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Server holds the use cases behind the API.
type Server struct {
	db            DBPinger
	health        *provider.HealthChecker
	campaigns     *usecase.CampaignUseCase
	contributions *usecase.ContributionUseCase
	investments   *usecase.InvestmentUseCase
	payouts       *usecase.PayoutUseCase
	unlock        *unlock.Protocol
	webhookSecret string
}

// ServerDeps holds all dependencies for creating a Server.
type ServerDeps struct {
	DB            DBPinger
	Health        *provider.HealthChecker // Optional: remote dependency checks
	Campaigns     *usecase.CampaignUseCase
	Contributions *usecase.ContributionUseCase
	Investments   *usecase.InvestmentUseCase
	Payouts       *usecase.PayoutUseCase
	Unlock        *unlock.Protocol
	WebhookSecret string
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	return &Server{
		db:            deps.DB,
		health:        deps.Health,
		campaigns:     deps.Campaigns,
		contributions: deps.Contributions,
		investments:   deps.Investments,
		payouts:       deps.Payouts,
		unlock:        deps.Unlock,
		webhookSecret: deps.WebhookSecret,
	}
}

// actorFromCtx extracts the authenticated user ID from the request context.
func actorFromCtx(c *gin.Context) string {
	if uid := c.GetString("user_id"); uid != "" {
		return uid
	}
	return "anonymous"
}

// itemList is the collection wrapper used by list endpoints.
type itemList[T any] struct {
	Items []T `json:"items"`
}

func newItemList[T any](items []T) itemList[T] {
	if items == nil {
		items = []T{}
	}
	return itemList[T]{Items: items}
}

// bindJSON decodes the body or records a validation error on c.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(apperrors.Validation(apperrors.CodeValidationFailed, "request body is not valid JSON for this operation").WithCause(err))
		return false
	}
	return true
}
