package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"soundstake.io/soundstake/internal/domain"
)

// MockPaymentGateway implements PaymentGateway in memory. Transfers are
// deduplicated by idempotency key like a real gateway.
type MockPaymentGateway struct {
	mu           sync.Mutex
	transfers    map[string]TransferResult
	requests     []TransferRequest
	destinations map[string]bool
	failures     []error
	// Delay is applied before every CreateTransfer, honouring ctx.
	Delay time.Duration
}

// NewMockPaymentGateway creates an empty mock gateway. Every destination is
// verified unless SetDestination says otherwise.
func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{
		transfers:    make(map[string]TransferResult),
		destinations: make(map[string]bool),
	}
}

// FailNext queues errors returned by the next CreateTransfer calls, in order.
func (g *MockPaymentGateway) FailNext(errs ...error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures = append(g.failures, errs...)
}

// SetDestination marks accountRef verified or not.
func (g *MockPaymentGateway) SetDestination(accountRef string, verified bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.destinations[accountRef] = verified
}

// Requests returns every CreateTransfer request received, including failed ones.
func (g *MockPaymentGateway) Requests() []TransferRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]TransferRequest, len(g.requests))
	copy(out, g.requests)
	return out
}

// TransferCount returns the number of distinct transfers created.
func (g *MockPaymentGateway) TransferCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.transfers)
}

func (g *MockPaymentGateway) CreateTransfer(ctx context.Context, req TransferRequest) (TransferResult, error) {
	if g.Delay > 0 {
		select {
		case <-time.After(g.Delay):
		case <-ctx.Done():
			return TransferResult{}, ctx.Err()
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)

	if len(g.failures) > 0 {
		err := g.failures[0]
		g.failures = g.failures[1:]
		return TransferResult{}, err
	}
	if res, ok := g.transfers[req.IdempotencyKey]; ok {
		return res, nil
	}
	res := TransferResult{ID: "tr_" + uuid.NewString(), Status: "paid"}
	g.transfers[req.IdempotencyKey] = res
	return res, nil
}

func (g *MockPaymentGateway) VerifyDestination(_ context.Context, accountRef string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if v, ok := g.destinations[accountRef]; ok {
		return v, nil
	}
	return accountRef != "", nil
}

func (g *MockPaymentGateway) Name() string                 { return "payments-mock" }
func (g *MockPaymentGateway) Ping(_ context.Context) error { return nil }

// MockStreamingProvider implements StreamingDataProvider and MetadataVerifier
// from seeded data.
type MockStreamingProvider struct {
	mu       sync.RWMutex
	accounts map[string]domain.ArtistAccounts
	errs     map[domain.Platform]error
	// Block makes lookups wait for ctx cancellation.
	Block bool
}

// NewMockStreamingProvider creates an empty provider; every artist has no data.
func NewMockStreamingProvider() *MockStreamingProvider {
	return &MockStreamingProvider{
		accounts: make(map[string]domain.ArtistAccounts),
		errs:     make(map[domain.Platform]error),
	}
}

// Seed stores accounts for an artist.
func (p *MockStreamingProvider) Seed(accounts domain.ArtistAccounts) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accounts[accounts.ArtistID] = accounts
}

// SetError makes lookups for platform fail.
func (p *MockStreamingProvider) SetError(platform domain.Platform, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[platform] = err
}

func (p *MockStreamingProvider) wait(ctx context.Context) error {
	if !p.Block {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (p *MockStreamingProvider) FetchAccounts(ctx context.Context, artistID string) (domain.ArtistAccounts, error) {
	sp, err := p.FetchSpotify(ctx, artistID)
	if err != nil {
		return domain.ArtistAccounts{}, err
	}
	yt, err := p.FetchYouTube(ctx, artistID)
	if err != nil {
		return domain.ArtistAccounts{}, err
	}
	return domain.ArtistAccounts{ArtistID: artistID, Spotify: sp, YouTube: yt}, nil
}

func (p *MockStreamingProvider) FetchSpotify(ctx context.Context, artistID string) (*domain.SpotifyAccount, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.errs[domain.PlatformSpotify]; err != nil {
		return nil, err
	}
	return p.accounts[artistID].Spotify, nil
}

func (p *MockStreamingProvider) FetchYouTube(ctx context.Context, artistID string) (*domain.YouTubeAccount, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.errs[domain.PlatformYouTube]; err != nil {
		return nil, err
	}
	return p.accounts[artistID].YouTube, nil
}

func (p *MockStreamingProvider) Name() string                 { return "streaming-mock" }
func (p *MockStreamingProvider) Ping(_ context.Context) error { return nil }

// MockMetadataVerifier returns a fixed summary.
type MockMetadataVerifier struct {
	Summary domain.VerificationSummary
	Err     error
}

// NewMockMetadataVerifier returns a verifier that reports a strong Spotify match.
func NewMockMetadataVerifier() *MockMetadataVerifier {
	return &MockMetadataVerifier{Summary: domain.VerificationSummary{
		Spotify: domain.PlatformMatch{
			Found:       true,
			TrackID:     "mock-track",
			TitleMatch:  95,
			ArtistMatch: 95,
			Confidence:  92,
			Popularity:  45,
		},
		OverallConfidence: 92,
	}}
}

func (v *MockMetadataVerifier) Verify(_ context.Context, _ domain.SongLinks) (domain.VerificationSummary, error) {
	if v.Err != nil {
		return domain.VerificationSummary{}, v.Err
	}
	s := v.Summary
	s.VerifiedAt = time.Now().UTC()
	return s, nil
}

// MemoryFileStore keeps artifacts in memory.
type MemoryFileStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemoryFileStore creates an empty store.
func NewMemoryFileStore() *MemoryFileStore {
	return &MemoryFileStore{files: make(map[string][]byte)}
}

func (s *MemoryFileStore) Put(_ context.Context, name, _ string, body io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", fmt.Errorf("read artifact %s: %w", name, err)
	}
	ref := "mem://" + uuid.NewString() + "/" + name
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[ref] = buf.Bytes()
	return ref, nil
}

// Len returns the number of stored artifacts.
func (s *MemoryFileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// Get returns a stored artifact.
func (s *MemoryFileStore) Get(ref string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.files[ref]
	return b, ok
}
