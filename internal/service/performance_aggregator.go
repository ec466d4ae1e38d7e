package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"soundstake.io/soundstake/internal/domain"
	"soundstake.io/soundstake/internal/pkg/logger"
	"soundstake.io/soundstake/internal/pkg/worker"
	"soundstake.io/soundstake/internal/provider"
)

// PerformanceAggregator collects an artist's historical streaming metrics and
// normalizes them into a PerformanceSnapshot.
//
// A missing account, a provider error or a timeout for one platform yields
// "no data" for that platform. Aggregate never fails because of one platform.
type PerformanceAggregator struct {
	provider provider.StreamingDataProvider
	tables   *RateTables
	pool     *worker.Pool
	timeout  time.Duration
	now      func() time.Time
}

// NewPerformanceAggregator creates an aggregator. pool may be nil, in which case
// lookups run sequentially on the calling goroutine.
func NewPerformanceAggregator(p provider.StreamingDataProvider, tables *RateTables, pool *worker.Pool, timeout time.Duration) *PerformanceAggregator {
	if tables == nil {
		tables = DefaultRateTables()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PerformanceAggregator{
		provider: p,
		tables:   tables,
		pool:     pool,
		timeout:  timeout,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Aggregate fetches every platform concurrently and builds the snapshot.
func (a *PerformanceAggregator) Aggregate(ctx context.Context, artistID string) (domain.PerformanceSnapshot, error) {
	accounts := domain.ArtistAccounts{ArtistID: artistID}

	fetchSpotify := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		acct, err := a.provider.FetchSpotify(ctx, artistID)
		if err != nil {
			logLookupFailure(domain.PlatformSpotify, artistID, err)
			return
		}
		accounts.Spotify = acct
	}
	fetchYouTube := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		acct, err := a.provider.FetchYouTube(ctx, artistID)
		if err != nil {
			logLookupFailure(domain.PlatformYouTube, artistID, err)
			return
		}
		accounts.YouTube = acct
	}

	if a.pool == nil {
		fetchSpotify(ctx)
		fetchYouTube(ctx)
	} else if err := a.pool.RunAll(ctx, fetchSpotify, fetchYouTube); err != nil {
		return domain.PerformanceSnapshot{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.PerformanceSnapshot{}, err
	}

	return BuildSnapshot(accounts, a.tables, a.now()), nil
}

func logLookupFailure(platform domain.Platform, artistID string, err error) {
	fields := []zap.Field{
		zap.String("platform", string(platform)),
		zap.String("artist_id", artistID),
		zap.Error(err),
	}
	if errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("Streaming lookup timed out, treating as no data", fields...)
		return
	}
	logger.Warn("Streaming lookup failed, treating as no data", fields...)
}

// BuildSnapshot normalizes raw platform accounts. It performs no I/O.
func BuildSnapshot(accounts domain.ArtistAccounts, tables *RateTables, at time.Time) domain.PerformanceSnapshot {
	snap := domain.PerformanceSnapshot{
		MonthlyRevenue: decimal.Zero,
		Spotify:        domain.SpotifyPerformance{Revenue: decimal.Zero},
		YouTube:        domain.YouTubePerformance{Revenue: decimal.Zero},
		CollectedAt:    at,
	}

	if sp := accounts.Spotify; sp != nil {
		var streams int64
		var popularitySum int
		for _, track := range sp.TopTracks {
			streams += int64(track.Popularity) * 100
			popularitySum += track.Popularity
		}
		popularity := 0
		if len(sp.TopTracks) > 0 {
			popularity = popularitySum / len(sp.TopTracks)
		}
		rate := decimal.NewFromFloat(tables.CountryRate(sp.Country).Spotify)
		snap.Spotify = domain.SpotifyPerformance{
			HasData:    true,
			Streams:    streams,
			Revenue:    decimal.NewFromInt(streams).Mul(rate),
			Popularity: popularity,
			Followers:  sp.Followers,
		}
	}

	if yt := accounts.YouTube; yt != nil {
		var total int64
		for _, v := range yt.RecentVideoViews {
			total += v
		}
		// recent views cover a three month window
		views := total / 3
		rate := decimal.NewFromFloat(tables.CountryRate(yt.Country).YouTube)
		snap.YouTube = domain.YouTubePerformance{
			HasData:     true,
			Views:       views,
			Revenue:     decimal.NewFromInt(views).Mul(rate),
			Subscribers: yt.Subscribers,
		}
	}

	snap.HasData = snap.Spotify.HasData || snap.YouTube.HasData
	snap.MonthlyRevenue = domain.Round2(snap.Spotify.Revenue.Add(snap.YouTube.Revenue))
	snap.TotalStreams = snap.Spotify.Streams + snap.YouTube.Views
	return snap
}
