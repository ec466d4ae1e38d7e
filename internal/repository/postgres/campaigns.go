package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"soundstake.io/soundstake/internal/domain"
	"soundstake.io/soundstake/internal/repository"
)

const campaignColumns = `id, artist_id, title, song_title, artist_name, genre, duration, funding_goal,
	expected_roi_percentage, automatic_roi, verification, status, is_active, created_at, updated_at, deleted_at`

const createCampaign = `INSERT INTO campaigns (
	id, artist_id, title, song_title, artist_name, genre, duration, funding_goal,
	expected_roi_percentage, automatic_roi, verification, status, is_active, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)`

const insertMilestone = `INSERT INTO milestones (campaign_id, id, name, amount, description, ord, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// CreateCampaign inserts the campaign and its milestone list.
func (q *Queries) CreateCampaign(ctx context.Context, c *domain.Campaign) error {
	roi, err := marshalNullable(c.AutomaticROI)
	if err != nil {
		return fmt.Errorf("marshal automatic roi: %w", err)
	}
	verification, err := marshalNullable(c.Verification)
	if err != nil {
		return fmt.Errorf("marshal verification: %w", err)
	}
	var expected decimal.NullDecimal
	if c.ExpectedROIPercentage != nil {
		expected = decimal.NewNullDecimal(*c.ExpectedROIPercentage)
	}

	if _, err := q.db.Exec(ctx, createCampaign,
		c.ID, c.ArtistID, c.Title, c.SongTitle, c.ArtistName, c.Genre, string(c.Duration), c.FundingGoal,
		expected, roi, verification, string(c.Status), c.IsActive, c.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert campaign %s: %w", c.ID, mapErr(err))
	}
	for _, m := range c.Milestones {
		if _, err := q.db.Exec(ctx, insertMilestone,
			c.ID, m.ID, m.Name, m.Amount, m.Description, m.Order, string(m.Status),
		); err != nil {
			return fmt.Errorf("insert milestone %s: %w", m.ID, mapErr(err))
		}
	}
	return nil
}

// GetCampaign loads a non-deleted campaign with its milestones.
func (q *Queries) GetCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	return q.loadCampaign(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 AND deleted_at IS NULL`, id)
}

// LockCampaign loads the campaign and holds its row lock until the transaction ends.
func (q *Queries) LockCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	return q.loadCampaign(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id)
}

func (q *Queries) loadCampaign(ctx context.Context, query, id string) (*domain.Campaign, error) {
	c, err := scanCampaign(q.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get campaign %s: %w", id, mapErr(err))
	}
	if c.Milestones, err = q.listMilestones(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCampaignsByArtist returns the artist's campaigns, newest first.
func (q *Queries) ListCampaignsByArtist(ctx context.Context, artistID string) ([]*domain.Campaign, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE artist_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC`,
		artistID,
	)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	var out []*domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}

	for _, c := range out {
		if c.Milestones, err = q.listMilestones(ctx, c.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdateCampaignStatus moves status from -> to. IsActive follows the active status.
func (q *Queries) UpdateCampaignStatus(ctx context.Context, id string, from, to domain.CampaignStatus) (bool, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE campaigns SET status = $3, is_active = $4, updated_at = $5
		 WHERE id = $1 AND status = $2 AND deleted_at IS NULL`,
		id, string(from), string(to), to == domain.CampaignStatusActive, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("update campaign status %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// SetMilestoneStatus moves one milestone from -> to, scoped to its campaign.
func (q *Queries) SetMilestoneStatus(ctx context.Context, campaignID, milestoneID string, from, to domain.MilestoneStatus) (bool, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE milestones SET status = $4 WHERE campaign_id = $1 AND id = $2 AND status = $3`,
		campaignID, milestoneID, string(from), string(to),
	)
	if err != nil {
		return false, fmt.Errorf("set milestone %s status: %w", milestoneID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (q *Queries) listMilestones(ctx context.Context, campaignID string) ([]domain.Milestone, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, name, amount, description, ord, status FROM milestones WHERE campaign_id = $1 ORDER BY ord`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("list milestones for %s: %w", campaignID, err)
	}
	defer rows.Close()

	var out []domain.Milestone
	for rows.Next() {
		var (
			m      domain.Milestone
			status string
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.Amount, &m.Description, &m.Order, &status); err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		m.Status = domain.MilestoneStatus(status)
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanCampaign(row scanner) (*domain.Campaign, error) {
	var (
		c            domain.Campaign
		duration     string
		status       string
		expected     decimal.NullDecimal
		roi          []byte
		verification []byte
	)
	if err := row.Scan(
		&c.ID, &c.ArtistID, &c.Title, &c.SongTitle, &c.ArtistName, &c.Genre, &duration, &c.FundingGoal,
		&expected, &roi, &verification, &status, &c.IsActive, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	); err != nil {
		return nil, err
	}
	c.Duration = domain.CampaignDuration(duration)
	c.Status = domain.CampaignStatus(status)
	if expected.Valid {
		v := expected.Decimal
		c.ExpectedROIPercentage = &v
	}
	if len(roi) > 0 {
		c.AutomaticROI = &domain.ROIProjection{}
		if err := json.Unmarshal(roi, c.AutomaticROI); err != nil {
			return nil, fmt.Errorf("decode automatic roi: %w", err)
		}
	}
	if len(verification) > 0 {
		c.Verification = &domain.VerificationSummary{}
		if err := json.Unmarshal(verification, c.Verification); err != nil {
			return nil, fmt.Errorf("decode verification: %w", err)
		}
	}
	return &c, nil
}

func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

var _ repository.CampaignStore = (*Queries)(nil)
