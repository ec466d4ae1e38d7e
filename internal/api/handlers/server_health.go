package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"soundstake.io/soundstake/internal/api/generated"
	"soundstake.io/soundstake/internal/provider"
)

// GetLiveness handles GET /health/live.
func (s *Server) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, generated.Health{Status: generated.HealthStatusOk})
}

// GetReadiness handles GET /health/ready.
func (s *Server) GetReadiness(c *gin.Context) {
	checks := make(map[string]string)
	allHealthy := true

	if s.db != nil {
		if err := s.db.Ping(c.Request.Context()); err != nil {
			checks["database"] = "error"
			allHealthy = false
		} else {
			checks["database"] = "ok"
		}
	}

	// A remote service that has not been checked yet does not fail readiness.
	if s.health != nil {
		for _, dep := range s.health.Snapshot() {
			checks[dep.Name] = string(dep.Status)
			if dep.Status == provider.DependencyStatusUnreachable {
				allHealthy = false
			}
		}
	}

	status := generated.HealthStatusOk
	httpStatus := http.StatusOK
	if !allHealthy {
		status = generated.HealthStatusDegraded
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, generated.Health{
		Status: status,
		Checks: checks,
	})
}
