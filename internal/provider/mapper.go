package provider

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"soundstake.io/soundstake/internal/domain"
)

// Wire shapes of the streaming metrics service. They mirror the upstream
// platform payloads, where almost every field may be absent.

type spotifyArtistWire struct {
	Country   string `json:"country"`
	Followers *struct {
		Total int64 `json:"total"`
	} `json:"followers"`
	TopTracks []struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Popularity *int   `json:"popularity"`
	} `json:"top_tracks"`
}

type youtubeChannelWire struct {
	Snippet *struct {
		Country string `json:"country"`
	} `json:"snippet"`
	Statistics *struct {
		SubscriberCount string `json:"subscriberCount"`
	} `json:"statistics"`
	RecentVideos []struct {
		ViewCount string `json:"viewCount"`
	} `json:"recent_videos"`
}

type platformMatchWire struct {
	Found       bool   `json:"found"`
	TrackID     string `json:"track_id"`
	TitleMatch  int    `json:"title_match"`
	ArtistMatch int    `json:"artist_match"`
	Confidence  int    `json:"confidence"`
	Popularity  int    `json:"popularity"`
	Subscribers int64  `json:"subscribers"`
	Rank        int64  `json:"rank"`
}

type verificationWire struct {
	Spotify  *platformMatchWire `json:"spotify"`
	YouTube  *platformMatchWire `json:"youtube"`
	Deezer   *platformMatchWire `json:"deezer"`
	Warnings []string           `json:"warnings"`
}

// mapSpotify converts the Spotify wire shape. Nil fields become zero values.
func mapSpotify(w *spotifyArtistWire) *domain.SpotifyAccount {
	if w == nil {
		return nil
	}
	acct := &domain.SpotifyAccount{Country: w.Country}
	if w.Followers != nil {
		acct.Followers = w.Followers.Total
	}
	for _, t := range w.TopTracks {
		track := domain.SpotifyTrack{ID: t.ID, Name: t.Name}
		if t.Popularity != nil {
			track.Popularity = *t.Popularity
		}
		acct.TopTracks = append(acct.TopTracks, track)
	}
	return acct
}

// mapYouTube converts the YouTube wire shape. YouTube reports counts as strings.
func mapYouTube(w *youtubeChannelWire) (*domain.YouTubeAccount, error) {
	if w == nil {
		return nil, nil
	}
	acct := &domain.YouTubeAccount{}
	if w.Snippet != nil {
		acct.Country = w.Snippet.Country
	}
	if w.Statistics != nil {
		n, err := parseCount(w.Statistics.SubscriberCount)
		if err != nil {
			return nil, fmt.Errorf("mapper: subscriber count: %w", err)
		}
		acct.Subscribers = n
	}
	for i, v := range w.RecentVideos {
		n, err := parseCount(v.ViewCount)
		if err != nil {
			return nil, fmt.Errorf("mapper: video %d view count: %w", i, err)
		}
		acct.RecentVideoViews = append(acct.RecentVideoViews, n)
	}
	return acct, nil
}

func parseCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return n, nil
}

func mapMatch(w *platformMatchWire) domain.PlatformMatch {
	if w == nil {
		return domain.PlatformMatch{}
	}
	return domain.PlatformMatch{
		Found:       w.Found,
		TrackID:     w.TrackID,
		TitleMatch:  w.TitleMatch,
		ArtistMatch: w.ArtistMatch,
		Confidence:  w.Confidence,
		Popularity:  w.Popularity,
		Subscribers: w.Subscribers,
		Rank:        w.Rank,
	}
}

// mapVerification converts the verifier response. Overall confidence is the
// mean confidence of the platforms that matched.
func mapVerification(w verificationWire, at time.Time) domain.VerificationSummary {
	summary := domain.VerificationSummary{
		Spotify:    mapMatch(w.Spotify),
		YouTube:    mapMatch(w.YouTube),
		Deezer:     mapMatch(w.Deezer),
		Warnings:   w.Warnings,
		VerifiedAt: at,
	}
	var sum, n int
	for _, m := range []domain.PlatformMatch{summary.Spotify, summary.YouTube, summary.Deezer} {
		if m.Found {
			sum += m.Confidence
			n++
		}
	}
	if n > 0 {
		summary.OverallConfidence = sum / n
	}
	return summary
}
