package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundstake.io/soundstake/internal/domain"
	"soundstake.io/soundstake/internal/notification"
	"soundstake.io/soundstake/internal/pkg/logger"
	"soundstake.io/soundstake/internal/testutil"
)

func init() {
	_ = logger.Init("error", "json")
}

func TestInboxSender_Send(t *testing.T) {
	valid := notification.Params{
		RecipientID: "artist-1",
		Type:        notification.TypeUnlockApproved,
		Title:       "Milestone unlocked",
		Message:     "Funds transferred",
	}

	tests := []struct {
		name    string
		mutate  func(p *notification.Params)
		wantErr string
	}{
		{name: "valid"},
		{name: "missing recipient", mutate: func(p *notification.Params) { p.RecipientID = "" }, wantErr: "recipient_id is required"},
		{name: "unknown type", mutate: func(p *notification.Params) { p.Type = "SOMETHING" }, wantErr: "unknown notification type"},
		{name: "missing title", mutate: func(p *notification.Params) { p.Title = "" }, wantErr: "title is required"},
		{name: "missing message", mutate: func(p *notification.Params) { p.Message = "" }, wantErr: "message is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMemoryStore()
			p := valid
			if tt.mutate != nil {
				tt.mutate(&p)
			}
			err := notification.NewInboxSender(store).Send(context.Background(), p)

			got, listErr := store.ListNotifications(context.Background(), "artist-1", 0)
			require.NoError(t, listErr)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, notification.TypeUnlockApproved, got[0].Type)
			assert.NotEmpty(t, got[0].ID)
			assert.False(t, got[0].CreatedAt.IsZero())
		})
	}
}

func TestInboxSender_SendToManyIsBestEffort(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.FailNext("InsertNotification", errors.New("disk full"))
	sender := notification.NewInboxSender(store)

	err := sender.SendToMany(context.Background(), []string{"inv-1", "inv-2", "inv-3"}, notification.Params{
		Type:    notification.TypePayoutReceived,
		Title:   "Revenue payout received",
		Message: "You earned 10.00",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1/3 recipients")

	for _, id := range []string{"inv-2", "inv-3"} {
		got, err := store.ListNotifications(context.Background(), id, 0)
		require.NoError(t, err)
		assert.Len(t, got, 1, id)
	}
	assert.NoError(t, sender.SendToMany(context.Background(), nil, notification.Params{}))
}

func TestTriggers(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	triggers := notification.NewTriggers(notification.NewInboxSender(store))

	triggers.OnCampaignReviewed(ctx, &domain.Campaign{ID: "c-1", ArtistID: "artist-1", Title: "Debut", SongTitle: "Song", Status: domain.CampaignStatusActive}, "admin-1")
	triggers.OnUnlockRejected(ctx, &domain.FundUnlockRequest{ID: "req-1", ArtistID: "artist-1"}, "missing invoice")
	triggers.OnPayoutsDistributed(ctx, "rev-1", []*domain.Payout{
		{InvestorID: "inv-1", CampaignID: "c-1", Amount: decimal.NewFromInt(12), OwnershipShare: decimal.NewFromInt(25)},
		{InvestorID: "inv-2", CampaignID: "c-1", Amount: decimal.NewFromInt(36), OwnershipShare: decimal.NewFromInt(75)},
	})

	artist, err := store.ListNotifications(ctx, "artist-1", 0)
	require.NoError(t, err)
	require.Len(t, artist, 2)
	// Newest first.
	assert.Equal(t, notification.TypeUnlockRejected, artist[0].Type)
	assert.Contains(t, artist[0].Message, "missing invoice")
	assert.Equal(t, notification.TypeCampaignReviewed, artist[1].Type)

	inv, err := store.ListNotifications(ctx, "inv-2", 0)
	require.NoError(t, err)
	require.Len(t, inv, 1)
	assert.Equal(t, "rev-1", inv[0].ResourceID)
	assert.Contains(t, inv[0].Message, "36.00")
}

func TestTriggers_NilSafe(t *testing.T) {
	var nilTriggers *notification.Triggers
	assert.NotPanics(t, func() {
		nilTriggers.OnTransferFailed(context.Background(), &domain.FundUnlockRequest{ID: "req-1"})
		notification.NewTriggers(nil).OnProofReviewed(context.Background(), &domain.MilestoneProof{ID: "p-1", ArtistID: "a"})
		notification.NewTriggers(nil).OnUnlockApproved(context.Background(), nil, domain.Milestone{})
	})
}

type recordingPublisher struct {
	subjects []string
	data     [][]byte
	err      error
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.data = append(p.data, data)
	return nil
}

func TestEventForwarder(t *testing.T) {
	event, err := domain.NewEvent(domain.EventUnlockApproved, domain.AggregateUnlockRequest, "req-1", "admin-1", map[string]string{"milestone_id": "m-1"})
	require.NoError(t, err)

	pub := &recordingPublisher{}
	fwd := notification.NewEventForwarder(pub, "")
	require.NoError(t, fwd.Handle(context.Background(), event))

	require.Len(t, pub.subjects, 1)
	assert.Equal(t, "soundstake.fund_unlock_request.unlock_approved", pub.subjects[0])

	var decoded domain.DomainEvent
	require.NoError(t, json.Unmarshal(pub.data[0], &decoded))
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, "req-1", decoded.AggregateID)

	assert.Equal(t, "staging.fund_unlock_request.unlock_approved", notification.NewEventForwarder(pub, "staging").Subject(event))

	failing := notification.NewEventForwarder(&recordingPublisher{err: errors.New("no responders")}, "x")
	err = failing.Handle(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish x.fund_unlock_request.unlock_approved")
}
