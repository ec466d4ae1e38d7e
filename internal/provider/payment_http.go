package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPPaymentGateway talks JSON to the payment service.
type HTTPPaymentGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPPaymentGateway creates a gateway client. timeout bounds every call.
func NewHTTPPaymentGateway(baseURL, apiKey string, timeout time.Duration) *HTTPPaymentGateway {
	return &HTTPPaymentGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type transferWire struct {
	Destination string            `json:"destination"`
	Amount      string            `json:"amount"`
	Currency    string            `json:"currency"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func (g *HTTPPaymentGateway) header() http.Header {
	h := http.Header{}
	if g.apiKey != "" {
		h.Set("Authorization", "Bearer "+g.apiKey)
	}
	return h
}

// CreateTransfer posts a transfer. The idempotency key is forwarded so the
// service returns the original transfer when the same key is replayed.
func (g *HTTPPaymentGateway) CreateTransfer(ctx context.Context, req TransferRequest) (TransferResult, error) {
	if req.IdempotencyKey == "" {
		return TransferResult{}, errors.New("create transfer: idempotency key is required")
	}
	h := g.header()
	h.Set("Idempotency-Key", req.IdempotencyKey)

	var out TransferResult
	err := doJSON(ctx, g.client, http.MethodPost, g.baseURL+"/v1/transfers", h, transferWire{
		Destination: req.Destination,
		Amount:      req.Amount.StringFixed(2),
		Currency:    "usd",
		Metadata:    req.Metadata,
	}, &out)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Permanent() {
			return TransferResult{}, fmt.Errorf("%w: %v", ErrTransferDeclined, err)
		}
		return TransferResult{}, err
	}
	if out.ID == "" {
		return TransferResult{}, errors.New("create transfer: response has no transfer id")
	}
	return out, nil
}

// VerifyDestination reports whether the connected account can receive payouts.
func (g *HTTPPaymentGateway) VerifyDestination(ctx context.Context, accountRef string) (bool, error) {
	var out struct {
		ID             string `json:"id"`
		PayoutsEnabled bool   `json:"payouts_enabled"`
	}
	err := doJSON(ctx, g.client, http.MethodGet, g.baseURL+"/v1/accounts/"+url.PathEscape(accountRef), g.header(), nil, &out)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return out.PayoutsEnabled, nil
}

// Name implements Pinger.
func (g *HTTPPaymentGateway) Name() string { return "payments" }

// Ping implements Pinger.
func (g *HTTPPaymentGateway) Ping(ctx context.Context) error {
	return doJSON(ctx, g.client, http.MethodGet, g.baseURL+"/healthz", g.header(), nil, nil)
}
