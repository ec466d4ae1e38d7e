package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundstake.io/soundstake/internal/domain"
	"soundstake.io/soundstake/internal/repository"
	"soundstake.io/soundstake/internal/testutil"
)

func newTestStore(t *testing.T, prefix string) *Store {
	t.Helper()
	return NewStore(testutil.OpenMigratedPool(t, prefix))
}

func seedCampaign(t *testing.T, ctx context.Context, s *Store, id string) *domain.Campaign {
	t.Helper()
	roi := decimal.RequireFromString("17.5")
	c := &domain.Campaign{
		ID:                    id,
		ArtistID:              "artist-1",
		Title:                 "Debut single",
		SongTitle:             "Night Drive",
		ArtistName:            "The Echoes",
		Genre:                 "pop",
		Duration:              domain.Duration1Year,
		FundingGoal:           decimal.NewFromInt(10000),
		ExpectedROIPercentage: &roi,
		AutomaticROI: &domain.ROIProjection{
			ExpectedROIPercentage: roi,
			Confidence:            80,
			Methodology:           "test",
		},
		Status:   domain.CampaignStatusActive,
		IsActive: true,
		Milestones: []domain.Milestone{
			{ID: "m-1", Name: "Recording", Amount: decimal.NewFromInt(6000), Order: 1, Status: domain.MilestoneStatusPending},
			{ID: "m-2", Name: "Marketing", Amount: decimal.NewFromInt(4000), Order: 2, Status: domain.MilestoneStatusPending},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, s.CreateCampaign(ctx, c))
	return c
}

func TestStore_CampaignRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "campaign_round_trip")
	seedCampaign(t, ctx, s, "c-1")

	got, err := s.GetCampaign(ctx, "c-1")
	require.NoError(t, err)
	assert.True(t, got.FundingGoal.Equal(decimal.NewFromInt(10000)))
	require.NotNil(t, got.ExpectedROIPercentage)
	assert.Equal(t, "17.5", got.ExpectedROIPercentage.String())
	require.NotNil(t, got.AutomaticROI)
	assert.Equal(t, 80, got.AutomaticROI.Confidence)
	require.Len(t, got.Milestones, 2)
	assert.Equal(t, "m-1", got.Milestones[0].ID)
	assert.NoError(t, got.CheckMilestoneInvariant())

	_, err = s.GetCampaign(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	ok, err := s.SetMilestoneStatus(ctx, "c-1", "m-1", domain.MilestoneStatusPending, domain.MilestoneStatusApproved)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.SetMilestoneStatus(ctx, "c-1", "m-1", domain.MilestoneStatusPending, domain.MilestoneStatusApproved)
	require.NoError(t, err)
	assert.False(t, ok, "milestone is no longer pending")
}

func TestStore_SumIgnoresFailedContributions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "sum_contributions")
	seedCampaign(t, ctx, s, "c-1")
	now := time.Now().UTC()

	for i, c := range []struct {
		id     string
		amount int64
		status domain.ContributionStatus
	}{
		{"p-1", 2000, domain.ContributionStatusSuccess},
		{"p-2", 1500, domain.ContributionStatusFailed},
		{"p-3", 3000, domain.ContributionStatusSuccess},
	} {
		require.NoError(t, s.InsertContribution(ctx, &domain.Contribution{
			ID: c.id, InvestorID: "inv", CampaignID: "c-1", Amount: decimal.NewFromInt(c.amount),
			Status: c.status, PaymentIntentID: "pi-" + c.id, TransactionDate: now, CreatedAt: now.Add(time.Duration(i)),
		}))
	}

	total, err := s.SumSuccessfulContributions(ctx, "c-1")
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(5000)), "got %s", total)

	updated, err := s.UpdateContributionStatus(ctx, "pi-p-2", domain.ContributionStatusSuccess)
	require.NoError(t, err)
	assert.Equal(t, domain.ContributionStatusSuccess, updated.Status)

	total, err = s.SumSuccessfulContributions(ctx, "c-1")
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(6500)), "got %s", total)

	err = s.InsertContribution(ctx, &domain.Contribution{
		ID: "p-4", InvestorID: "inv", CampaignID: "c-1", Amount: decimal.NewFromInt(1),
		Status: domain.ContributionStatusSuccess, PaymentIntentID: "pi-p-1", TransactionDate: now, CreatedAt: now,
	})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestStore_OneOpenUnlockRequestPerCampaign(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "open_unlock_request")
	seedCampaign(t, ctx, s, "c-1")
	now := time.Now().UTC()

	require.NoError(t, s.InsertUnlockRequest(ctx, &domain.FundUnlockRequest{
		ID: "r-1", CampaignID: "c-1", ArtistID: "artist-1", MilestoneID: "m-1",
		Status: domain.UnlockStatusPending, RequestedAt: now,
	}))
	err := s.InsertUnlockRequest(ctx, &domain.FundUnlockRequest{
		ID: "r-2", CampaignID: "c-1", ArtistID: "artist-1", MilestoneID: "m-1",
		Status: domain.UnlockStatusPending, RequestedAt: now,
	})
	require.ErrorIs(t, err, repository.ErrConflict)

	ok, err := s.TransitionUnlockRequest(ctx, "r-1", domain.UnlockStatusPending,
		repository.UnlockRequestUpdate{Status: domain.UnlockStatusTransferring})
	require.NoError(t, err)
	require.True(t, ok)

	open, err := s.GetOpenUnlockRequest(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, domain.UnlockStatusTransferring, open.Status)

	pending, err := s.ListUnlockRequests(ctx, repository.UnlockRequestFilter{Status: domain.UnlockStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1, "transferring is listed as pending")

	ok, err = s.TransitionUnlockRequest(ctx, "r-1", domain.UnlockStatusPending,
		repository.UnlockRequestUpdate{Status: domain.UnlockStatusRejected})
	require.NoError(t, err)
	assert.False(t, ok, "only the current status can be transitioned")
}

func TestStore_FanOutClaimAndPayoutIdempotency(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "fan_out_claim")
	seedCampaign(t, ctx, s, "c-1")
	now := time.Now().UTC()

	require.NoError(t, s.InsertInvestment(ctx, &domain.Investment{
		ID: "inv-1", CampaignID: "c-1", InvestorID: "investor-1", ArtistID: "artist-1",
		Amount: decimal.NewFromInt(1000), OwnershipPercentage: decimal.NewFromInt(10),
		Status: domain.InvestmentStatusActive, MaturityDate: now.AddDate(1, 0, 0), CreatedAt: now,
	}))
	require.NoError(t, s.InsertRevenueEvent(ctx, &domain.RevenueEvent{
		ID: "rev-1", CampaignID: "c-1", Source: "spotify", Amount: decimal.NewFromInt(1000),
		StreamCount: 100, Country: "US", PayoutRate: decimal.NewFromInt(10), CreatedAt: now,
	}))

	err := s.InTx(ctx, func(tx repository.Tx) error {
		claimed, err := tx.MarkRevenueProcessed(ctx, "rev-1", now)
		require.NoError(t, err)
		require.True(t, claimed)
		inserted, err := tx.InsertPayout(ctx, &domain.Payout{
			ID: "pay-1", InvestmentID: "inv-1", InvestorID: "investor-1", CampaignID: "c-1", RevenueID: "rev-1",
			Amount: decimal.NewFromInt(100), OwnershipShare: decimal.NewFromInt(10), CreatedAt: now,
		})
		require.NoError(t, err)
		require.True(t, inserted)
		return tx.IncrementActualReturn(ctx, "inv-1", decimal.NewFromInt(100))
	})
	require.NoError(t, err)

	claimed, err := s.MarkRevenueProcessed(ctx, "rev-1", now)
	require.NoError(t, err)
	assert.False(t, claimed)

	inserted, err := s.InsertPayout(ctx, &domain.Payout{
		ID: "pay-2", InvestmentID: "inv-1", InvestorID: "investor-1", CampaignID: "c-1", RevenueID: "rev-1",
		Amount: decimal.NewFromInt(100), OwnershipShare: decimal.NewFromInt(10), CreatedAt: now,
	})
	require.NoError(t, err)
	assert.False(t, inserted)

	payouts, err := s.ListPayoutsByRevenue(ctx, "rev-1")
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, "100", payouts[0].Amount.String())
}

func TestStore_InTxRollback(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "in_tx_rollback")
	seedCampaign(t, ctx, s, "c-1")

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.LockCampaign(ctx, "c-1"); err != nil {
			return err
		}
		if _, err := tx.UpdateCampaignStatus(ctx, "c-1", domain.CampaignStatusActive, domain.CampaignStatusRejected); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.GetCampaign(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignStatusActive, got.Status)
}

func TestStore_NotificationsRetention(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "notification_retention")
	now := time.Now().UTC()

	require.NoError(t, s.InsertNotification(ctx, &repository.Notification{
		ID: "n-old", UserID: "artist-1", Type: "UNLOCK_APPROVED", Title: "old", Message: "m", CreatedAt: now.Add(-100 * 24 * time.Hour),
	}))
	require.NoError(t, s.InsertNotification(ctx, &repository.Notification{
		ID: "n-new", UserID: "artist-1", Type: "UNLOCK_APPROVED", Title: "new", Message: "m", CreatedAt: now,
	}))

	deleted, err := s.DeleteNotificationsBefore(ctx, now.Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	left, err := s.ListNotifications(ctx, "artist-1", 10)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "n-new", left[0].ID)
}
