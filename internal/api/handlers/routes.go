package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"soundstake.io/soundstake/internal/api/generated"
	"soundstake.io/soundstake/internal/api/middleware"
	apperrors "soundstake.io/soundstake/internal/pkg/errors"
)

// Compile-time check: Server must implement generated.ServerInterface.
var _ generated.ServerInterface = (*Server)(nil)

// operationRoles lists the caller roles each artist or investor operation
// admits, keyed by method and gin route relative to the API base. Admin
// routes are gated by permission in the router; everything else only needs
// an authenticated caller.
var operationRoles = map[string][]string{
	"GET /campaigns":                                     {middleware.RoleArtist},
	"POST /campaigns":                                    {middleware.RoleArtist},
	"POST /campaigns/:id/contributions":                  {middleware.RoleInvestor},
	"POST /campaigns/:id/investments":                    {middleware.RoleInvestor},
	"POST /campaigns/:id/unlock-requests":                {middleware.RoleArtist},
	"GET /campaigns/:id/unlock-status":                   {middleware.RoleArtist},
	"GET /campaigns/:id/proofs":                          {middleware.RoleArtist},
	"POST /campaigns/:id/milestones/:milestoneId/proofs": {middleware.RoleArtist},
	"PUT /artists/me/payout-destination":                 {middleware.RoleArtist},
}

// GinServerOptions mounts the generated routes under baseURL with the
// per-operation role checks and contract-style parameter errors.
func GinServerOptions(baseURL string) generated.GinServerOptions {
	return generated.GinServerOptions{
		BaseURL:      baseURL,
		Middlewares:  []generated.MiddlewareFunc{authorizeOperation(baseURL)},
		ErrorHandler: parameterError,
	}
}

func authorizeOperation(baseURL string) generated.MiddlewareFunc {
	return func(c *gin.Context) {
		route := strings.TrimPrefix(c.FullPath(), baseURL)
		if roles, ok := operationRoles[c.Request.Method+" "+route]; ok {
			middleware.CheckRole(c, roles...)
		}
	}
}

// parameterError reports a path, query or header binding failure through
// the ErrorHandler middleware.
func parameterError(c *gin.Context, err error, status int) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	_ = c.Error(apperrors.Wrap(err, apperrors.CodeValidationFailed, err.Error(), status))
}
