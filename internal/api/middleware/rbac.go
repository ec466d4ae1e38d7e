package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequirePermission returns middleware that checks if the authenticated user
// has a specific global permission.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CheckPermission(c, permission) {
			c.Next()
		}
	}
}

// CheckPermission aborts c with 403 unless the caller holds permission or
// platform:admin. It does not advance the handler chain.
func CheckPermission(c *gin.Context, permission string) bool {
	perms, exists := c.Get("permissions")
	if !exists {
		abortForbidden(c, "no permissions in context")
		return false
	}
	permList, ok := perms.([]string)
	if !ok {
		abortForbidden(c, "invalid permissions type")
		return false
	}

	// platform:admin is the explicit super-admin permission.
	if slices.Contains(permList, PermissionPlatformAdmin) || slices.Contains(permList, permission) {
		return true
	}

	abortForbidden(c, "insufficient permissions")
	return false
}

// CheckRole aborts c with 403 unless the caller holds one of roles. Platform
// admins are always admitted. It runs inside the generated operation wrapper,
// so it reports the outcome instead of calling c.Next.
func CheckRole(c *gin.Context, roles ...string) bool {
	if IsPlatformAdmin(c) {
		return true
	}
	v, _ := c.Get("roles")
	held, _ := v.([]string)
	for _, r := range roles {
		if slices.Contains(held, r) {
			return true
		}
	}
	abortForbidden(c, "this action requires one of roles "+strings.Join(roles, ", "))
	return false
}

// IsPlatformAdmin reports whether the request carries platform:admin.
func IsPlatformAdmin(c *gin.Context) bool {
	v, _ := c.Get("permissions")
	perms, _ := v.([]string)
	return slices.Contains(perms, PermissionPlatformAdmin)
}

func abortForbidden(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, ErrorBody{
		Code:    "FORBIDDEN",
		Message: msg,
	})
}
