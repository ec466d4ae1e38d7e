package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"soundstake.io/soundstake/internal/api/generated"
	"soundstake.io/soundstake/internal/api/handlers"
	"soundstake.io/soundstake/internal/api/middleware"
	"soundstake.io/soundstake/internal/config"
)

const apiBasePath = "/api/v1"

// Public routes that do NOT require JWT authentication. The payment webhook
// authenticates with its shared secret instead.
var publicPrefixes = []string{
	apiBasePath + "/health/",
	apiBasePath + "/webhooks/",
}

// adminPrefixes are routes that require platform:admin.
var adminPrefixes = []string{
	apiBasePath + "/admin/",
}

// defaultAllowedOrigins is used when no origins are configured.
var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}

func newRouter(cfg *config.Config, server generated.ServerInterface, jwtCfg middleware.JWTConfig) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(),
		cors.New(buildCORSConfig(cfg)),
		middleware.ErrorHandler(),
	)
	router.Use(jwtSkipPublic(jwtCfg))
	router.Use(rbacAdminRoutes())
	if cfg.Server.ValidateOpenAPI {
		router.Use(middleware.MustOpenAPIValidator(middleware.OpenAPIOptions{BasePath: apiBasePath}))
	}

	generated.RegisterHandlersWithOptions(router, server, handlers.GinServerOptions(apiBasePath))
	return router
}

// jwtSkipPublic returns middleware that applies JWT auth only on non-public routes.
func jwtSkipPublic(jwtCfg middleware.JWTConfig) gin.HandlerFunc {
	jwtMw := middleware.JWTAuth(jwtCfg)
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}
		jwtMw(c)
	}
}

// rbacAdminRoutes enforces platform:admin on admin endpoints. Artist and
// investor roles are checked per operation by the generated wrappers.
func rbacAdminRoutes() gin.HandlerFunc {
	adminMw := middleware.RequirePermission(middleware.PermissionPlatformAdmin)
	return func(c *gin.Context) {
		for _, prefix := range adminPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				adminMw(c)
				return
			}
		}
		c.Next()
	}
}

// buildCORSConfig turns server settings into a CORS policy. A "*" origin is
// honored only with unsafe_allow_all_origins, and then never with credentials.
func buildCORSConfig(cfg *config.Config) cors.Config {
	out := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: cfg.Server.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}

	if cfg.Server.UnsafeAllowAllOrigins {
		out.AllowAllOrigins = true
		out.AllowCredentials = false
		return out
	}

	origins := make([]string, 0, len(cfg.Server.AllowedOrigins))
	for _, origin := range cfg.Server.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" || origin == "*" {
			continue
		}
		origins = append(origins, origin)
	}
	if len(origins) == 0 {
		origins = append(origins, defaultAllowedOrigins...)
	}
	out.AllowOrigins = origins
	return out
}
