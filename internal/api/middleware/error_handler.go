// Package middleware provides HTTP middleware for the Soundstake API.
//
// Import Path: soundstake.io/soundstake/internal/api/middleware
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "soundstake.io/soundstake/internal/pkg/errors"
	"soundstake.io/soundstake/internal/pkg/logger"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Params      map[string]interface{} `json:"params,omitempty"`
	FieldErrors []apperrors.FieldError `json:"field_errors,omitempty"`
}

// ErrorHandler is a Gin middleware that provides centralized error handling.
// It captures errors added via c.Error() and returns a consistent JSON response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c.Request.Context())),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			fields = append(fields,
				zap.String("code", appErr.Code),
				zap.String("message", appErr.Message),
				zap.Int("status", appErr.HTTPStatus),
				zap.Bool("retryable", appErr.Retryable),
				zap.Error(appErr.Err),
			)
			// Invariant violations mean stored state disagrees with itself.
			if appErr.Kind == apperrors.KindInvariant || appErr.HTTPStatus >= http.StatusInternalServerError {
				logger.Error("Request failed", fields...)
			} else {
				logger.Warn("Request error", fields...)
			}
			c.JSON(appErr.HTTPStatus, ErrorBody{
				Code:        appErr.Code,
				Message:     appErr.Message,
				Params:      appErr.Params,
				FieldErrors: appErr.FieldErrors,
			})
			return
		}

		// Fallback: generic 500 error
		logger.Error("Unhandled request error", append(fields, zap.Error(err))...)
		c.JSON(http.StatusInternalServerError, ErrorBody{
			Code:    "INTERNAL_ERROR",
			Message: "An internal error occurred",
		})
	}
}
