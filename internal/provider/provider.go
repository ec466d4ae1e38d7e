// Package provider defines the external collaborators the core depends on and
// their HTTP and in-memory implementations.
//
// Anti-Corruption Layer: the rest of the service only sees these interfaces and
// domain types. Wire shapes of the remote services stay inside this package.
//
// Import Path: soundstake.io/soundstake/internal/provider
package provider

import (
	"context"
	"errors"
	"io"

	"github.com/shopspring/decimal"

	"soundstake.io/soundstake/internal/domain"
)

// ErrTransferDeclined marks a transfer the gateway refused permanently.
// Any other CreateTransfer error is treated as transient.
var ErrTransferDeclined = errors.New("transfer declined")

// TransferRequest asks the payment gateway to move funds to an artist.
type TransferRequest struct {
	Destination string
	Amount      decimal.Decimal
	// IdempotencyKey makes retries of the same transfer safe. The unlock
	// protocol uses the request id.
	IdempotencyKey string
	Metadata       map[string]string
}

// TransferResult is the gateway's view of a created transfer.
type TransferResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// PaymentGateway moves money out of the platform.
type PaymentGateway interface {
	CreateTransfer(ctx context.Context, req TransferRequest) (TransferResult, error)
	// VerifyDestination reports whether a connected account can receive transfers.
	VerifyDestination(ctx context.Context, accountRef string) (bool, error)
}

// StreamingDataProvider returns raw platform metrics for an artist. A nil
// account with a nil error means the platform is not connected.
type StreamingDataProvider interface {
	FetchAccounts(ctx context.Context, artistID string) (domain.ArtistAccounts, error)
	FetchSpotify(ctx context.Context, artistID string) (*domain.SpotifyAccount, error)
	FetchYouTube(ctx context.Context, artistID string) (*domain.YouTubeAccount, error)
}

// MetadataVerifier matches a song against platform catalogues.
type MetadataVerifier interface {
	Verify(ctx context.Context, links domain.SongLinks) (domain.VerificationSummary, error)
}

// SubscriptionEntitlement answers whether an artist holds an active paid plan.
type SubscriptionEntitlement interface {
	HasActiveEntitlement(ctx context.Context, artistID string) (bool, error)
}

// FileStore stores opaque artifacts and returns a reference to them.
type FileStore interface {
	Put(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// Pinger is implemented by remote collaborators that expose a health endpoint.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}
