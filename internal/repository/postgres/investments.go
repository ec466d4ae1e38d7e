package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"soundstake.io/soundstake/internal/domain"
)

const investmentColumns = `id, campaign_id, investor_id, artist_id, contribution_id, amount, ownership_percentage,
	expected_return, actual_return, status, maturity_date, created_at`

func (q *Queries) InsertInvestment(ctx context.Context, inv *domain.Investment) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO investments (`+investmentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		inv.ID, inv.CampaignID, inv.InvestorID, inv.ArtistID, inv.ContributionID, inv.Amount, inv.OwnershipPercentage,
		inv.ExpectedReturn, inv.ActualReturn, string(inv.Status), inv.MaturityDate, inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert investment %s: %w", inv.ID, mapErr(err))
	}
	return nil
}

func (q *Queries) ListActiveInvestments(ctx context.Context, campaignID string) ([]*domain.Investment, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+investmentColumns+` FROM investments WHERE campaign_id = $1 AND status = 'active' ORDER BY created_at, id`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("list investments for %s: %w", campaignID, err)
	}
	defer rows.Close()

	var out []*domain.Investment
	for rows.Next() {
		var (
			inv    domain.Investment
			status string
		)
		if err := rows.Scan(&inv.ID, &inv.CampaignID, &inv.InvestorID, &inv.ArtistID, &inv.ContributionID, &inv.Amount,
			&inv.OwnershipPercentage, &inv.ExpectedReturn, &inv.ActualReturn, &status, &inv.MaturityDate, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan investment: %w", err)
		}
		inv.Status = domain.InvestmentStatus(status)
		out = append(out, &inv)
	}
	return out, rows.Err()
}

func (q *Queries) IncrementActualReturn(ctx context.Context, investmentID string, amount decimal.Decimal) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE investments SET actual_return = actual_return + $2 WHERE id = $1`, investmentID, amount)
	if err != nil {
		return fmt.Errorf("increment actual return for %s: %w", investmentID, err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("increment actual return for %s: investment missing", investmentID)
	}
	return nil
}

const revenueColumns = `id, campaign_id, source, amount, stream_count, country, payout_rate, is_processed, processed_at, created_at`

func (q *Queries) InsertRevenueEvent(ctx context.Context, ev *domain.RevenueEvent) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO revenue_events (`+revenueColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		ev.ID, ev.CampaignID, ev.Source, ev.Amount, ev.StreamCount, ev.Country, ev.PayoutRate, ev.IsProcessed,
		ev.ProcessedAt, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert revenue event %s: %w", ev.ID, mapErr(err))
	}
	return nil
}

func (q *Queries) GetRevenueEvent(ctx context.Context, id string) (*domain.RevenueEvent, error) {
	ev, err := scanRevenue(q.db.QueryRow(ctx, `SELECT `+revenueColumns+` FROM revenue_events WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get revenue event %s: %w", id, mapErr(err))
	}
	return ev, nil
}

// MarkRevenueProcessed is the fan-out claim: only one transaction can flip the flag.
func (q *Queries) MarkRevenueProcessed(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE revenue_events SET is_processed = TRUE, processed_at = $2 WHERE id = $1 AND NOT is_processed`,
		id, at,
	)
	if err != nil {
		return false, fmt.Errorf("mark revenue event %s processed: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (q *Queries) ListUnprocessedRevenueEvents(ctx context.Context, before time.Time, limit int) ([]*domain.RevenueEvent, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+revenueColumns+` FROM revenue_events WHERE NOT is_processed AND created_at < $1 ORDER BY created_at LIMIT $2`,
		before, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed revenue events: %w", err)
	}
	defer rows.Close()

	var out []*domain.RevenueEvent
	for rows.Next() {
		ev, err := scanRevenue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan revenue event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func scanRevenue(row scanner) (*domain.RevenueEvent, error) {
	var ev domain.RevenueEvent
	if err := row.Scan(&ev.ID, &ev.CampaignID, &ev.Source, &ev.Amount, &ev.StreamCount, &ev.Country, &ev.PayoutRate,
		&ev.IsProcessed, &ev.ProcessedAt, &ev.CreatedAt); err != nil {
		return nil, err
	}
	return &ev, nil
}

// InsertPayout inserts at most one payout per (investment, revenue).
func (q *Queries) InsertPayout(ctx context.Context, p *domain.Payout) (bool, error) {
	tag, err := q.db.Exec(ctx,
		`INSERT INTO payouts (id, investment_id, investor_id, campaign_id, revenue_id, amount, ownership_share, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (investment_id, revenue_id) DO NOTHING`,
		p.ID, p.InvestmentID, p.InvestorID, p.CampaignID, p.RevenueID, p.Amount, p.OwnershipShare, p.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert payout for investment %s: %w", p.InvestmentID, mapErr(err))
	}
	return tag.RowsAffected() == 1, nil
}

func (q *Queries) ListPayoutsByRevenue(ctx context.Context, revenueID string) ([]*domain.Payout, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, investment_id, investor_id, campaign_id, revenue_id, amount, ownership_share, created_at
		 FROM payouts WHERE revenue_id = $1 ORDER BY created_at, id`,
		revenueID,
	)
	if err != nil {
		return nil, fmt.Errorf("list payouts for %s: %w", revenueID, err)
	}
	defer rows.Close()

	var out []*domain.Payout
	for rows.Next() {
		var p domain.Payout
		if err := rows.Scan(&p.ID, &p.InvestmentID, &p.InvestorID, &p.CampaignID, &p.RevenueID, &p.Amount,
			&p.OwnershipShare, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payout: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
