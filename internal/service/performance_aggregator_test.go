package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundstake.io/soundstake/internal/domain"
	"soundstake.io/soundstake/internal/pkg/worker"
	"soundstake.io/soundstake/internal/provider"
)

func seededAccounts() domain.ArtistAccounts {
	return domain.ArtistAccounts{
		ArtistID: "artist-1",
		Spotify: &domain.SpotifyAccount{
			Country:   "US",
			Followers: 4200,
			TopTracks: []domain.SpotifyTrack{{ID: "a", Popularity: 50}, {ID: "b", Popularity: 70}},
		},
		YouTube: &domain.YouTubeAccount{
			Country:          "Atlantis",
			Subscribers:      2500,
			RecentVideoViews: []int64{300, 600, 900},
		},
	}
}

func TestBuildSnapshot(t *testing.T) {
	snap := BuildSnapshot(seededAccounts(), DefaultRateTables(), fixedNow)

	assert.True(t, snap.HasData)
	assert.True(t, snap.Spotify.HasData)
	assert.Equal(t, int64(12000), snap.Spotify.Streams)
	assert.Equal(t, 60, snap.Spotify.Popularity)
	assert.Equal(t, int64(4200), snap.Spotify.Followers)
	assertDecimal(t, "36", snap.Spotify.Revenue)

	// unknown country falls back to the default row
	assert.Equal(t, int64(600), snap.YouTube.Views)
	assertDecimal(t, "0.6", snap.YouTube.Revenue)
	assert.Equal(t, int64(2500), snap.YouTube.Subscribers)

	assertDecimal(t, "36.6", snap.MonthlyRevenue)
	assert.Equal(t, int64(12600), snap.TotalStreams)
	assert.Equal(t, fixedNow, snap.CollectedAt)
}

func TestBuildSnapshot_NoAccountsIsUnknown(t *testing.T) {
	snap := BuildSnapshot(domain.ArtistAccounts{ArtistID: "x"}, DefaultRateTables(), fixedNow)

	assert.False(t, snap.HasData)
	assert.False(t, snap.Spotify.HasData)
	assert.False(t, snap.YouTube.HasData)
	assert.True(t, snap.MonthlyRevenue.IsZero())
	assert.Equal(t, int64(0), snap.TotalStreams)
}

func TestBuildSnapshot_ConnectedButEmpty(t *testing.T) {
	snap := BuildSnapshot(domain.ArtistAccounts{
		Spotify: &domain.SpotifyAccount{},
	}, DefaultRateTables(), fixedNow)

	assert.True(t, snap.HasData)
	assert.True(t, snap.Spotify.HasData)
	assert.Equal(t, int64(0), snap.Spotify.Streams)
	assert.Equal(t, 0, snap.Spotify.Popularity)
}

func TestPerformanceAggregator_Aggregate(t *testing.T) {
	mock := provider.NewMockStreamingProvider()
	mock.Seed(seededAccounts())

	pool, err := worker.NewPool(worker.PoolLookup, 4)
	require.NoError(t, err)
	defer func() { _ = pool.Release(time.Second) }()

	agg := NewPerformanceAggregator(mock, nil, pool, time.Second)
	snap, err := agg.Aggregate(context.Background(), "artist-1")
	require.NoError(t, err)
	assert.Equal(t, int64(12600), snap.TotalStreams)
	assertDecimal(t, "36.6", snap.MonthlyRevenue)
}

func TestPerformanceAggregator_PlatformErrorIsNoData(t *testing.T) {
	mock := provider.NewMockStreamingProvider()
	mock.Seed(seededAccounts())
	mock.SetError(domain.PlatformYouTube, errors.New("quota exceeded"))

	agg := NewPerformanceAggregator(mock, nil, nil, time.Second)
	snap, err := agg.Aggregate(context.Background(), "artist-1")
	require.NoError(t, err)

	assert.True(t, snap.Spotify.HasData)
	assert.False(t, snap.YouTube.HasData)
	assert.Equal(t, int64(12000), snap.TotalStreams)
}

func TestPerformanceAggregator_TimeoutIsNoData(t *testing.T) {
	mock := provider.NewMockStreamingProvider()
	mock.Seed(seededAccounts())
	mock.Block = true

	pool, err := worker.NewPool(worker.PoolLookup, 4)
	require.NoError(t, err)
	defer func() { _ = pool.Release(time.Second) }()

	agg := NewPerformanceAggregator(mock, nil, pool, 30*time.Millisecond)
	start := time.Now()
	snap, err := agg.Aggregate(context.Background(), "artist-1")
	require.NoError(t, err)

	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, snap.HasData)
}

func TestPerformanceAggregator_CancelledContext(t *testing.T) {
	mock := provider.NewMockStreamingProvider()
	agg := NewPerformanceAggregator(mock, nil, nil, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := agg.Aggregate(ctx, "artist-1")
	assert.ErrorIs(t, err, context.Canceled)
}
