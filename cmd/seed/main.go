// Package main seeds demo data for local runs: one active campaign with two
// milestones, a verified payout destination for its artist, and bearer
// tokens for the demo artist, investor and admin.
//
// Seeding is idempotent. Migrations are expected to have run already.
//
// Import Path: soundstake.io/soundstake/cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"soundstake.io/soundstake/internal/api/middleware"
	"soundstake.io/soundstake/internal/app/modules"
	"soundstake.io/soundstake/internal/config"
	"soundstake.io/soundstake/internal/domain"
	"soundstake.io/soundstake/internal/infrastructure"
	"soundstake.io/soundstake/internal/pkg/logger"
	"soundstake.io/soundstake/internal/repository"
	"soundstake.io/soundstake/internal/repository/postgres"
)

const (
	demoArtistID   = "artist-demo"
	demoInvestorID = "investor-demo"
	demoAdminID    = "admin-demo"
	demoCampaignID = "campaign-demo"
	demoAccountRef = "acct_demo_artist"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	logger.Info("Starting data seeding...")
	if err := seed(ctx, postgres.NewStore(db.Pool), time.Now().UTC()); err != nil {
		return err
	}

	tokens, err := demoTokens(modules.NewJWTConfig(cfg))
	if err != nil {
		return fmt.Errorf("mint demo tokens: %w", err)
	}
	for _, tok := range tokens {
		fmt.Printf("%-8s %s\n", tok.role, tok.token)
	}

	logger.Info("Data seeding completed successfully")
	return nil
}

// seed writes the demo rows unless they already exist.
func seed(ctx context.Context, store repository.Store, now time.Time) error {
	if _, err := store.GetCampaign(ctx, demoCampaignID); err == nil {
		logger.Info("Demo campaign already exists, skipping", zap.String("campaign_id", demoCampaignID))
	} else if errors.Is(err, repository.ErrNotFound) {
		c := demoCampaign(now)
		if err := c.CheckMilestoneInvariant(); err != nil {
			return err
		}
		if err := store.CreateCampaign(ctx, c); err != nil {
			if !errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("create demo campaign: %w", err)
			}
		} else {
			logger.Info("Seeded demo campaign", zap.String("campaign_id", c.ID))
		}
	} else {
		return fmt.Errorf("load demo campaign: %w", err)
	}

	if err := store.UpsertPayoutDestination(ctx, &domain.PayoutDestination{
		ArtistID:    demoArtistID,
		AccountRef:  demoAccountRef,
		Verified:    true,
		ConnectedAt: now,
	}); err != nil {
		return fmt.Errorf("seed payout destination: %w", err)
	}
	logger.Info("Seeded payout destination", zap.String("artist_id", demoArtistID))
	return nil
}

// demoCampaign is an active campaign whose milestones add up to its goal.
func demoCampaign(now time.Time) *domain.Campaign {
	return &domain.Campaign{
		ID:          demoCampaignID,
		ArtistID:    demoArtistID,
		Title:       "Demo single",
		SongTitle:   "First Light",
		ArtistName:  "Demo Artist",
		Genre:       "pop",
		Duration:    domain.Duration1Year,
		FundingGoal: decimal.NewFromInt(10000),
		Status:      domain.CampaignStatusActive,
		IsActive:    true,
		Milestones: []domain.Milestone{
			{
				ID:          demoCampaignID + "-recording",
				Name:        "Recording",
				Amount:      decimal.NewFromInt(6000),
				Description: "Studio time and mixing",
				Order:       1,
				Status:      domain.MilestoneStatusPending,
			},
			{
				ID:          demoCampaignID + "-marketing",
				Name:        "Marketing",
				Amount:      decimal.NewFromInt(4000),
				Description: "Release campaign",
				Order:       2,
				Status:      domain.MilestoneStatusPending,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type demoToken struct {
	role  string
	token string
}

// demoTokens mints one day tokens for the demo principals.
func demoTokens(cfg middleware.JWTConfig) ([]demoToken, error) {
	cfg.ExpiresIn = 24 * time.Hour
	principals := []struct {
		role        string
		userID      string
		roles       []string
		permissions []string
	}{
		{role: "artist", userID: demoArtistID, roles: []string{middleware.RoleArtist}},
		{role: "investor", userID: demoInvestorID, roles: []string{middleware.RoleInvestor}},
		{role: "admin", userID: demoAdminID, permissions: []string{middleware.PermissionPlatformAdmin}},
	}
	out := make([]demoToken, 0, len(principals))
	for _, p := range principals {
		tok, _, err := middleware.GenerateToken(cfg, p.userID, p.userID, p.roles, p.permissions)
		if err != nil {
			return nil, fmt.Errorf("%s token: %w", p.role, err)
		}
		out = append(out, demoToken{role: p.role, token: tok})
	}
	return out, nil
}
