package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"soundstake.io/soundstake/internal/api/middleware"
	"soundstake.io/soundstake/internal/pkg/logger"
	"soundstake.io/soundstake/internal/testutil"
)

func init() {
	_ = logger.Init("error", "json")
}

func TestDemoCampaign_Invariants(t *testing.T) {
	t.Parallel()

	c := demoCampaign(time.Now().UTC())
	if err := c.CheckMilestoneInvariant(); err != nil {
		t.Fatalf("demo campaign milestone invariant: %v", err)
	}
	if len(c.Milestones) != 2 {
		t.Fatalf("milestones = %d, want 2", len(c.Milestones))
	}
	orders := make(map[int]bool)
	for _, m := range c.Milestones {
		if orders[m.Order] {
			t.Fatalf("duplicate milestone order %d", m.Order)
		}
		orders[m.Order] = true
		if m.IsApproved() {
			t.Fatalf("milestone %s should start pending", m.ID)
		}
	}
	if !c.IsActive || !c.IsOwnedBy(demoArtistID) {
		t.Fatalf("demo campaign should be active and owned by %s", demoArtistID)
	}
}

func TestSeed_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testutil.NewMemoryStore()
	now := time.Now().UTC()

	for i := 0; i < 2; i++ {
		if err := seed(ctx, store, now); err != nil {
			t.Fatalf("seed run %d: %v", i+1, err)
		}
	}

	campaigns, err := store.ListCampaignsByArtist(ctx, demoArtistID)
	if err != nil {
		t.Fatalf("list campaigns: %v", err)
	}
	if len(campaigns) != 1 {
		t.Fatalf("campaigns = %d, want 1", len(campaigns))
	}
	dest, err := store.GetPayoutDestination(ctx, demoArtistID)
	if err != nil {
		t.Fatalf("get payout destination: %v", err)
	}
	if !dest.Verified || dest.AccountRef != demoAccountRef {
		t.Fatalf("destination = %+v, want verified %s", dest, demoAccountRef)
	}
}

func TestSeed_PropagatesLookupErrors(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemoryStore()
	store.FailNext("GetCampaign", errors.New("connection reset"))
	if err := seed(context.Background(), store, time.Now().UTC()); err == nil {
		t.Fatal("seed should fail when the campaign lookup fails")
	}
}

func TestDemoTokens_Verify(t *testing.T) {
	t.Parallel()

	cfg := middleware.JWTConfig{SigningKey: []byte("0123456789abcdef0123456789abcdef"), Issuer: "soundstake"}
	tokens, err := demoTokens(cfg)
	if err != nil {
		t.Fatalf("demoTokens: %v", err)
	}
	if len(tokens) != 3 {
		t.Fatalf("tokens = %d, want 3", len(tokens))
	}
	for _, tok := range tokens {
		claims, err := cfg.ValidateToken(context.Background(), tok.token)
		if err != nil {
			t.Fatalf("%s token does not verify: %v", tok.role, err)
		}
		if tok.role == "admin" && len(claims.Permissions) != 1 {
			t.Fatalf("admin permissions = %v", claims.Permissions)
		}
	}

	if _, err := demoTokens(middleware.JWTConfig{}); err == nil {
		t.Fatal("demoTokens without a signing key should fail")
	}
}
