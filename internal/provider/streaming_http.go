package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"soundstake.io/soundstake/internal/domain"
)

// StreamingConfig configures HTTPStreamingProvider.
type StreamingConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// HTTPStreamingProvider reads artist metrics and verifies song metadata
// through the streaming metrics service. Calls are authenticated with the
// OAuth2 client-credentials grant when a token URL is configured.
type HTTPStreamingProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPStreamingProvider builds the provider. ctx scopes token refreshes and
// should live as long as the provider.
func NewHTTPStreamingProvider(ctx context.Context, cfg StreamingConfig) *HTTPStreamingProvider {
	base := &http.Client{Timeout: cfg.Timeout}
	client := base
	if cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, base)
		client = &http.Client{
			Transport: cc.Client(tokenCtx).Transport,
			Timeout:   cfg.Timeout,
		}
	}
	return &HTTPStreamingProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
	}
}

func (p *HTTPStreamingProvider) artistURL(artistID, platform string) string {
	return fmt.Sprintf("%s/v1/artists/%s/%s", p.baseURL, url.PathEscape(artistID), platform)
}

// getOptional decodes into out and reports false when the resource is absent.
func (p *HTTPStreamingProvider) getOptional(ctx context.Context, u string, out any) (bool, error) {
	err := doJSON(ctx, p.client, http.MethodGet, u, nil, nil, out)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FetchSpotify returns nil when the artist has no Spotify account connected.
func (p *HTTPStreamingProvider) FetchSpotify(ctx context.Context, artistID string) (*domain.SpotifyAccount, error) {
	var w spotifyArtistWire
	found, err := p.getOptional(ctx, p.artistURL(artistID, "spotify"), &w)
	if err != nil || !found {
		return nil, err
	}
	return mapSpotify(&w), nil
}

// FetchYouTube returns nil when the artist has no YouTube channel connected.
func (p *HTTPStreamingProvider) FetchYouTube(ctx context.Context, artistID string) (*domain.YouTubeAccount, error) {
	var w youtubeChannelWire
	found, err := p.getOptional(ctx, p.artistURL(artistID, "youtube"), &w)
	if err != nil || !found {
		return nil, err
	}
	return mapYouTube(&w)
}

// FetchAccounts fetches every platform. The first hard error is returned.
func (p *HTTPStreamingProvider) FetchAccounts(ctx context.Context, artistID string) (domain.ArtistAccounts, error) {
	accounts := domain.ArtistAccounts{ArtistID: artistID}
	var err error
	if accounts.Spotify, err = p.FetchSpotify(ctx, artistID); err != nil {
		return accounts, err
	}
	if accounts.YouTube, err = p.FetchYouTube(ctx, artistID); err != nil {
		return accounts, err
	}
	return accounts, nil
}

// Verify matches song links against the platform catalogues.
func (p *HTTPStreamingProvider) Verify(ctx context.Context, links domain.SongLinks) (domain.VerificationSummary, error) {
	var w verificationWire
	if err := doJSON(ctx, p.client, http.MethodPost, p.baseURL+"/v1/verify", nil, links, &w); err != nil {
		return domain.VerificationSummary{}, err
	}
	return mapVerification(w, time.Now().UTC()), nil
}

// Name implements Pinger.
func (p *HTTPStreamingProvider) Name() string { return "streaming" }

// Ping implements Pinger.
func (p *HTTPStreamingProvider) Ping(ctx context.Context) error {
	return doJSON(ctx, p.client, http.MethodGet, p.baseURL+"/healthz", nil, nil, nil)
}
