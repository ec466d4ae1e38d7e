package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Platform identifies a streaming platform.
type Platform string

const (
	PlatformSpotify     Platform = "spotify"
	PlatformYouTube     Platform = "youtube"
	PlatformDeezer      Platform = "deezer"
	PlatformAppleMusic  Platform = "appleMusic"
	PlatformAmazonMusic Platform = "amazonMusic"
)

// SpotifyTrack is one of the artist's top tracks.
type SpotifyTrack struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Popularity int    `json:"popularity"`
}

// SpotifyAccount is raw Spotify data for a connected artist.
type SpotifyAccount struct {
	Country   string         `json:"country"`
	Followers int64          `json:"followers"`
	TopTracks []SpotifyTrack `json:"top_tracks"`
}

// YouTubeAccount is raw YouTube channel data for a connected artist.
type YouTubeAccount struct {
	Country          string  `json:"country"`
	Subscribers      int64   `json:"subscribers"`
	RecentVideoViews []int64 `json:"recent_video_views"`
}

// ArtistAccounts holds whichever platform accounts are connected. Nil means not connected.
type ArtistAccounts struct {
	ArtistID string          `json:"artist_id"`
	Spotify  *SpotifyAccount `json:"spotify,omitempty"`
	YouTube  *YouTubeAccount `json:"youtube,omitempty"`
}

// SpotifyPerformance is the normalized monthly Spotify view.
type SpotifyPerformance struct {
	HasData    bool            `json:"has_data"`
	Streams    int64           `json:"streams"`
	Revenue    decimal.Decimal `json:"revenue"`
	Popularity int             `json:"popularity"`
	Followers  int64           `json:"followers"`
}

// YouTubePerformance is the normalized monthly YouTube view.
type YouTubePerformance struct {
	HasData     bool            `json:"has_data"`
	Views       int64           `json:"views"`
	Revenue     decimal.Decimal `json:"revenue"`
	Subscribers int64           `json:"subscribers"`
}

// PerformanceSnapshot is an artist's historical monthly performance.
// HasData distinguishes "no account or lookup failed" from "zero streams".
type PerformanceSnapshot struct {
	HasData        bool               `json:"has_data"`
	MonthlyRevenue decimal.Decimal    `json:"monthly_revenue"`
	TotalStreams   int64              `json:"total_streams"`
	Spotify        SpotifyPerformance `json:"spotify"`
	YouTube        YouTubePerformance `json:"youtube"`
	CollectedAt    time.Time          `json:"collected_at"`
}

// SongLinks are the platform references an artist submits for verification.
type SongLinks struct {
	SongTitle  string `json:"song_title"`
	ArtistName string `json:"artist_name"`
	SpotifyURL string `json:"spotify_url,omitempty"`
	YouTubeURL string `json:"youtube_url,omitempty"`
	DeezerURL  string `json:"deezer_url,omitempty"`
}

// PlatformMatch is the result of matching a song against one platform's catalogue.
type PlatformMatch struct {
	Found       bool   `json:"found"`
	TrackID     string `json:"track_id,omitempty"`
	TitleMatch  int    `json:"title_match"`
	ArtistMatch int    `json:"artist_match"`
	Confidence  int    `json:"confidence"`
	Popularity  int    `json:"popularity,omitempty"`
	Subscribers int64  `json:"subscribers,omitempty"`
	Rank        int64  `json:"rank,omitempty"`
}

// VerificationSummary aggregates per-platform metadata matches.
type VerificationSummary struct {
	Spotify           PlatformMatch `json:"spotify"`
	YouTube           PlatformMatch `json:"youtube"`
	Deezer            PlatformMatch `json:"deezer"`
	OverallConfidence int           `json:"overall_confidence"`
	IsVerified        bool          `json:"is_verified"`
	Warnings          []string      `json:"warnings,omitempty"`
	VerifiedAt        time.Time     `json:"verified_at"`
}
