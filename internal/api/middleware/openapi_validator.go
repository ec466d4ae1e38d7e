package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"soundstake.io/soundstake/internal/api/openapi"
	apperrors "soundstake.io/soundstake/internal/pkg/errors"
	"soundstake.io/soundstake/internal/pkg/logger"
)

// Contract validation error codes.
const (
	CodeContractRequestInvalid  = "OPENAPI_REQUEST_INVALID"
	CodeContractResponseInvalid = "OPENAPI_RESPONSE_INVALID"
)

// OpenAPIOptions configures contract validation.
type OpenAPIOptions struct {
	// BasePath is where the contract's paths are mounted, e.g. /api/v1.
	BasePath string
	// ValidateResponses buffers every response and checks it against the
	// contract. Intended for development and tests.
	ValidateResponses bool
}

// MustOpenAPIValidator is NewOpenAPIValidator for router setup, where a
// contract that does not load is a programming error.
func MustOpenAPIValidator(opts OpenAPIOptions) gin.HandlerFunc {
	mw, err := NewOpenAPIValidator(opts)
	if err != nil {
		panic(fmt.Sprintf("init openapi validator: %v", err))
	}
	return mw
}

// NewOpenAPIValidator checks campaign, money and unlock requests against the
// embedded contract before they reach a handler, so malformed amounts and
// unknown decision actions never hit the use cases. Rejections go through
// c.Error and are rendered by ErrorHandler. Authentication is left to JWTAuth.
func NewOpenAPIValidator(opts OpenAPIOptions) (gin.HandlerFunc, error) {
	doc, err := openapi.Load()
	if err != nil {
		return nil, err
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("create openapi router: %w", err)
	}
	basePath := normalizeBasePath(opts.BasePath)
	filterOpts := &openapi3filter.Options{AuthenticationFunc: openapi3filter.NoopAuthenticationFunc}

	return func(c *gin.Context) {
		contractPath, ok := contractRelativePath(basePath, c.Request.URL.Path)
		if !ok {
			c.Next()
			return
		}

		// Route a shallow copy so the request gin dispatches keeps its URL.
		routed := *c.Request
		u := *c.Request.URL
		u.Path, u.RawPath = contractPath, ""
		routed.URL = &u

		route, pathParams, err := router.FindRoute(&routed)
		if err != nil {
			// Paths and methods outside the contract are gin's to answer.
			if errors.Is(err, routers.ErrPathNotFound) || errors.Is(err, routers.ErrMethodNotAllowed) {
				c.Next()
				return
			}
			rejectRequest(c, err)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    &routed,
			PathParams: pathParams,
			Route:      route,
			Options:    filterOpts,
		}
		err = openapi3filter.ValidateRequest(c.Request.Context(), input)
		// The filter consumes the body and leaves a replayable copy on routed.
		c.Request.Body = routed.Body
		if err != nil {
			rejectRequest(c, err)
			return
		}

		if !opts.ValidateResponses {
			c.Next()
			return
		}
		validateResponse(c, input, filterOpts)
	}, nil
}

func validateResponse(c *gin.Context, input *openapi3filter.RequestValidationInput, filterOpts *openapi3filter.Options) {
	capture := newCapturingWriter(c.Writer)
	c.Writer = capture
	c.Next()
	c.Writer = capture.ResponseWriter

	// Errors raised through c.Error are rendered by ErrorHandler once this
	// returns, as the contract's Error schema.
	if !capture.wrote {
		return
	}

	out := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: input,
		Status:                 capture.Status(),
		Header:                 capture.Header().Clone(),
		Options:                filterOpts,
	}
	out.SetBodyBytes(capture.body.Bytes())

	if err := openapi3filter.ValidateResponse(c.Request.Context(), out); err != nil {
		logger.Error("Response breaks the API contract",
			zap.String("request_id", GetRequestID(c.Request.Context())),
			zap.String("route", c.FullPath()),
			zap.Int("status", capture.Status()),
			zap.Error(err),
		)
		capture.replaceJSON(http.StatusInternalServerError, ErrorBody{
			Code:    CodeContractResponseInvalid,
			Message: "response does not conform to the API contract",
		})
	}
	if err := capture.flush(); err != nil {
		logger.Warn("Flush validated response",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
	}
}

func rejectRequest(c *gin.Context, err error) {
	appErr := apperrors.Validation(CodeContractRequestInvalid, err.Error()).WithCause(err)
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.Parameter != nil:
			appErr = appErr.WithParams(map[string]interface{}{"parameter": reqErr.Parameter.Name, "in": reqErr.Parameter.In})
		case reqErr.RequestBody != nil:
			appErr = appErr.WithParams(map[string]interface{}{"in": "body"})
		}
	}
	_ = c.Error(appErr)
	c.Abort()
}

func normalizeBasePath(basePath string) string {
	basePath = strings.Trim(strings.TrimSpace(basePath), "/")
	if basePath == "" {
		return ""
	}
	return "/" + basePath
}

// contractRelativePath maps a request path onto the contract's path space.
// ok is false for paths mounted outside basePath.
func contractRelativePath(basePath, path string) (string, bool) {
	switch {
	case basePath == "":
		if path == "" {
			return "/", true
		}
		return path, true
	case path == basePath:
		return "/", true
	case strings.HasPrefix(path, basePath+"/"):
		return strings.TrimPrefix(path, basePath), true
	default:
		return path, false
	}
}

// capturingWriter holds the response until it has been validated.
type capturingWriter struct {
	gin.ResponseWriter
	body   bytes.Buffer
	status int
	wrote  bool
}

func newCapturingWriter(w gin.ResponseWriter) *capturingWriter {
	return &capturingWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *capturingWriter) WriteHeader(code int) {
	if !w.wrote {
		w.status, w.wrote = code, true
	}
}

func (w *capturingWriter) WriteHeaderNow() { w.wrote = true }

func (w *capturingWriter) Write(data []byte) (int, error) {
	w.wrote = true
	return w.body.Write(data)
}

func (w *capturingWriter) WriteString(s string) (int, error) { return w.Write([]byte(s)) }

func (w *capturingWriter) Status() int { return w.status }

func (w *capturingWriter) Size() int {
	if !w.wrote {
		return -1
	}
	return w.body.Len()
}

func (w *capturingWriter) Written() bool { return w.wrote }

func (w *capturingWriter) replaceJSON(status int, payload ErrorBody) {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte(`{"code":"` + CodeContractResponseInvalid + `","message":"response does not conform to the API contract"}`)
	}
	w.status, w.wrote = status, true
	w.body.Reset()
	w.body.Write(data)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
}

func (w *capturingWriter) flush() error {
	w.ResponseWriter.WriteHeader(w.status)
	if w.body.Len() == 0 {
		return nil
	}
	_, err := w.ResponseWriter.Write(w.body.Bytes())
	return err
}
