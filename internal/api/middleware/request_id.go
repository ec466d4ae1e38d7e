package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id. The payment service resends
// its own id on webhook retries, so an inbound value is reused when sane.
const RequestIDHeader = "X-Request-ID"

// maxInboundRequestIDLen bounds a caller-supplied id before it reaches logs
// and audit entries.
const maxInboundRequestIDLen = 128

type ctxKey int

const (
	requestIDKey ctxKey = iota
	callerKey
)

// Caller is the authenticated principal behind a request: an artist, an
// investor or a platform admin.
type Caller struct {
	ID          string
	Roles       []string
	Permissions []string
}

// RequestID tags the request with a correlation id and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if !usableRequestID(rid) {
			id, _ := uuid.NewV7()
			rid = id.String()
		}
		c.Set("request_id", rid)
		c.Writer.Header().Set(RequestIDHeader, rid)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDKey, rid))
		c.Next()
	}
}

// usableRequestID accepts short printable ASCII ids only.
func usableRequestID(rid string) bool {
	if rid == "" || len(rid) > maxInboundRequestIDLen {
		return false
	}
	for i := 0; i < len(rid); i++ {
		if rid[i] < 0x21 || rid[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetRequestID returns the correlation id, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey).(string)
	return rid
}

// WithCaller records the authenticated principal on ctx so use cases and
// background work started from a request can attribute audit entries.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFrom returns the principal stored by JWTAuth.
func CallerFrom(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey).(Caller)
	return caller, ok
}
