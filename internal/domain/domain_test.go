package domain

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundstake.io/soundstake/internal/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init("error", "json")
	os.Exit(m.Run())
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testCampaign() *Campaign {
	return &Campaign{
		ID:          "c-1",
		ArtistID:    "artist-1",
		FundingGoal: d("10000"),
		Milestones: []Milestone{
			{ID: "m-2", Name: "Mixing", Amount: d("4000"), Order: 2, Status: MilestoneStatusPending},
			{ID: "m-1", Name: "Recording", Amount: d("6000"), Order: 1, Status: MilestoneStatusApproved},
		},
	}
}

func TestCampaign_SortedMilestones(t *testing.T) {
	c := testCampaign()
	sorted := c.SortedMilestones()

	require.Len(t, sorted, 2)
	assert.Equal(t, "m-1", sorted[0].ID)
	assert.Equal(t, "m-2", sorted[1].ID)
	// original order untouched
	assert.Equal(t, "m-2", c.Milestones[0].ID)
}

func TestCampaign_MilestoneInvariant(t *testing.T) {
	c := testCampaign()
	require.NoError(t, c.CheckMilestoneInvariant())

	c.Milestones[0].Amount = d("3999.99")
	assert.Error(t, c.CheckMilestoneInvariant())
}

func TestCampaign_LastApprovedMilestone(t *testing.T) {
	c := testCampaign()
	m, ok := c.LastApprovedMilestone()
	require.True(t, ok)
	assert.Equal(t, "m-1", m.ID)

	c.Milestones[1].Status = MilestoneStatusPending
	_, ok = c.LastApprovedMilestone()
	assert.False(t, ok)
}

func TestCampaign_IsOwnedBy(t *testing.T) {
	c := testCampaign()
	assert.True(t, c.IsOwnedBy("artist-1"))
	assert.False(t, c.IsOwnedBy("artist-2"))
	assert.False(t, c.IsOwnedBy(""))
}

func TestNewFundingStats(t *testing.T) {
	tests := []struct {
		name          string
		raised, goal  string
		wantPct       string
		wantDisplay   string
		wantRemaining string
	}{
		{"half funded", "5000", "10000", "50", "50", "5000"},
		{"just below threshold", "4990", "10000", "49.9", "49.9", "5010"},
		{"overfunded is unclamped", "12000", "10000", "120", "100", "0"},
		{"zero goal", "100", "0", "0", "0", "0"},
		{"thirds", "1", "3", "33.3333", "33.33", "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewFundingStats("c", d(tt.raised), d(tt.goal))
			assert.True(t, d(tt.wantPct).Equal(s.FundingPercentage.Round(4)), "pct=%s", s.FundingPercentage)
			assert.True(t, d(tt.wantDisplay).Equal(s.DisplayPercentage()), "display=%s", s.DisplayPercentage())
			assert.True(t, d(tt.wantRemaining).Equal(s.Remaining), "remaining=%s", s.Remaining)
		})
	}
}

func TestUnlockRequestStatus(t *testing.T) {
	assert.True(t, UnlockStatusPending.IsOpen())
	assert.True(t, UnlockStatusTransferring.IsOpen())
	assert.False(t, UnlockStatusApproved.IsOpen())
	assert.False(t, UnlockStatusRejected.IsOpen())

	assert.Equal(t, UnlockStatusPending, UnlockStatusTransferring.Public())
	assert.Equal(t, UnlockStatusApproved, UnlockStatusApproved.Public())
}

func TestParseDecision(t *testing.T) {
	for _, in := range []string{"approve", "APPROVED", " approve "} {
		got, err := ParseDecision(in)
		require.NoError(t, err)
		assert.Equal(t, DecisionApprove, got)
	}
	got, err := ParseDecision("rejected")
	require.NoError(t, err)
	assert.Equal(t, DecisionReject, got)

	_, err = ParseDecision("maybe")
	assert.Error(t, err)
}

func TestPayoutFor(t *testing.T) {
	revenue := d("1000")
	for pct, want := range map[string]string{"10": "100", "20": "200", "70": "700", "33.33": "333.3"} {
		got := PayoutFor(revenue, Investment{OwnershipPercentage: d(pct)})
		assert.True(t, d(want).Equal(got), "pct %s: got %s", pct, got)
	}
}

func TestNewEvent(t *testing.T) {
	payload := UnlockDecisionPayload{RequestID: "r-1", CampaignID: "c-1", MilestoneID: "m-1", Amount: "6000"}
	event, err := NewEvent(EventUnlockApproved, AggregateUnlockRequest, "r-1", "admin-1", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, EventUnlockApproved, event.EventType)
	assert.Equal(t, "admin-1", event.CreatedBy)

	var decoded UnlockDecisionPayload
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestEventDispatcher_BestEffort(t *testing.T) {
	dispatcher := NewEventDispatcher()
	var calls []string
	dispatcher.Register(EventProofSubmitted, func(_ context.Context, _ *DomainEvent) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	dispatcher.Register(EventProofSubmitted, func(_ context.Context, _ *DomainEvent) error {
		calls = append(calls, "second")
		return nil
	})

	err := dispatcher.Dispatch(context.Background(), &DomainEvent{EventType: EventProofSubmitted})
	require.Error(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)

	// No handlers is not an error.
	require.NoError(t, dispatcher.Dispatch(context.Background(), &DomainEvent{EventType: EventRevenueRecorded}))
}

func TestEventDispatcher_RegisterAllAndEmit(t *testing.T) {
	dispatcher := NewEventDispatcher()
	seen := map[EventType]int{}
	dispatcher.RegisterAll(func(_ context.Context, e *DomainEvent) error {
		seen[e.EventType]++
		return nil
	})

	dispatcher.Emit(context.Background(), EventRevenueDistributed, AggregateRevenue, "rev-1", "system",
		RevenueDistributedPayload{RevenueID: "rev-1", PayoutCount: 3})
	dispatcher.Emit(context.Background(), EventCampaignCreated, AggregateCampaign, "c-1", "artist-1",
		CampaignPayload{CampaignID: "c-1"})

	assert.Equal(t, 1, seen[EventRevenueDistributed])
	assert.Equal(t, 1, seen[EventCampaignCreated])

	var nilDispatcher *EventDispatcher
	nilDispatcher.Emit(context.Background(), EventCampaignCreated, AggregateCampaign, "c-1", "x", nil)
}
