package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "soundstake.io/soundstake/internal/pkg/errors"
)

func TestContractRelativePath(t *testing.T) {
	testCases := []struct {
		name     string
		basePath string
		path     string
		want     string
		wantOK   bool
	}{
		{name: "strip prefix", basePath: "/api/v1", path: "/api/v1/campaigns/c-1", want: "/campaigns/c-1", wantOK: true},
		{name: "root path", basePath: "/api/v1", path: "/api/v1", want: "/", wantOK: true},
		{name: "outside base", basePath: "/api/v1", path: "/metrics", want: "/metrics", wantOK: false},
		{name: "prefix look-alike", basePath: "/api/v1", path: "/api/v10/campaigns", want: "/api/v10/campaigns", wantOK: false},
		{name: "empty base", basePath: "", path: "/campaigns", want: "/campaigns", wantOK: true},
		{name: "trailing slash in base", basePath: "api/v1/", path: "/api/v1/health/live", want: "/health/live", wantOK: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := contractRelativePath(normalizeBasePath(tc.basePath), tc.path)
			if got != tc.want || ok != tc.wantOK {
				t.Fatalf("contractRelativePath = (%q, %v), want (%q, %v)", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func newValidatedRouter(opts OpenAPIOptions, method, path string, h gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler(), MustOpenAPIValidator(opts))
	router.Handle(method, path, h)
	return router
}

func serveJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestOpenAPIValidatorRejectsInvalidInvestmentRequest(t *testing.T) {
	router := newValidatedRouter(OpenAPIOptions{BasePath: "/api/v1"}, http.MethodPost, "/api/v1/campaigns/:id/investments",
		func(c *gin.Context) { c.JSON(http.StatusCreated, gin.H{"id": "inv-1"}) })

	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: `{}`},
		{name: "negative amount", body: `{"amount":-5,"payment_ref":"pi_1"}`},
		{name: "zero amount", body: `{"amount":0,"payment_ref":"pi_1"}`},
		{name: "missing payment ref", body: `{"amount":100}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := serveJSON(router, http.MethodPost, "/api/v1/campaigns/c-1/investments", tc.body)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d body=%s", resp.Code, resp.Body.String())
			}
			var body ErrorBody
			if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if body.Code != "OPENAPI_REQUEST_INVALID" {
				t.Fatalf("code = %q, want OPENAPI_REQUEST_INVALID", body.Code)
			}
		})
	}
}

func TestOpenAPIValidatorAcceptsValidInvestmentRequest(t *testing.T) {
	router := newValidatedRouter(OpenAPIOptions{BasePath: "/api/v1"}, http.MethodPost, "/api/v1/campaigns/:id/investments",
		func(c *gin.Context) { c.JSON(http.StatusCreated, gin.H{"id": "inv-1"}) })

	resp := serveJSON(router, http.MethodPost, "/api/v1/campaigns/c-1/investments", `{"amount":250.50,"payment_ref":"pi_1"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for valid request body, got %d, body=%s", resp.Code, resp.Body.String())
	}
}

func TestOpenAPIValidatorRejectsUnknownDecision(t *testing.T) {
	router := newValidatedRouter(OpenAPIOptions{BasePath: "/api/v1"}, http.MethodPost, "/api/v1/admin/unlock-requests/:id/decision",
		func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"id": c.Param("id")}) })

	resp := serveJSON(router, http.MethodPost, "/api/v1/admin/unlock-requests/r-1/decision", `{"action":"maybe"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown action, got %d", resp.Code)
	}

	resp = serveJSON(router, http.MethodPost, "/api/v1/admin/unlock-requests/r-1/decision", `{"action":"approve"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for approve, got %d body=%s", resp.Code, resp.Body.String())
	}
}

func TestOpenAPIValidatorPassesUnknownPaths(t *testing.T) {
	router := newValidatedRouter(OpenAPIOptions{BasePath: "/api/v1"}, http.MethodGet, "/metrics",
		func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for path outside the contract, got %d", resp.Code)
	}
}

func TestOpenAPIValidatorResponseValidation(t *testing.T) {
	opts := OpenAPIOptions{BasePath: "/api/v1", ValidateResponses: true}

	t.Run("conforming response passes", func(t *testing.T) {
		router := newValidatedRouter(opts, http.MethodGet, "/api/v1/health/live",
			func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", resp.Code, resp.Body.String())
		}
	})

	t.Run("non-conforming response is replaced", func(t *testing.T) {
		router := newValidatedRouter(opts, http.MethodGet, "/api/v1/health/live",
			func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "sleeping"}) })
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d body=%s", resp.Code, resp.Body.String())
		}
		var body map[string]string
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if body["code"] != "OPENAPI_RESPONSE_INVALID" {
			t.Fatalf("code = %q, want OPENAPI_RESPONSE_INVALID", body["code"])
		}
	})
}

func TestOpenAPIValidatorLeavesHandlerErrorsToErrorHandler(t *testing.T) {
	opts := OpenAPIOptions{BasePath: "/api/v1", ValidateResponses: true}
	router := newValidatedRouter(opts, http.MethodPost, "/api/v1/campaigns/:id/investments",
		func(c *gin.Context) {
			_ = c.Error(apperrors.Conflict("CONTRIBUTION_EXCEEDS_GOAL", "amount exceeds the remaining goal"))
		})

	resp := serveJSON(router, http.MethodPost, "/api/v1/campaigns/c-1/investments", `{"amount":100,"payment_ref":"pi_1"}`)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", resp.Code, resp.Body.String())
	}
	var body ErrorBody
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Code != "CONTRIBUTION_EXCEEDS_GOAL" {
		t.Fatalf("code = %q, want CONTRIBUTION_EXCEEDS_GOAL", body.Code)
	}
}

func TestOpenAPIValidatorKeepsBodyForHandler(t *testing.T) {
	router := newValidatedRouter(OpenAPIOptions{BasePath: "/api/v1"}, http.MethodPost, "/api/v1/campaigns/:id/investments",
		func(c *gin.Context) {
			var req struct {
				PaymentRef string `json:"payment_ref"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusTeapot, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusCreated, gin.H{"payment_ref": req.PaymentRef})
		})

	resp := serveJSON(router, http.MethodPost, "/api/v1/campaigns/c-1/investments", `{"amount":100,"payment_ref":"pi_9"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"pi_9"`) {
		t.Fatalf("handler did not see the request body: %s", resp.Body.String())
	}
}
