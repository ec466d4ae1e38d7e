package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"soundstake.io/soundstake/internal/domain"
)

const contributionColumns = `id, investor_id, campaign_id, amount, status, transaction_id, payment_intent_id,
	expected_return, transaction_date, created_at`

// InsertContribution records a payment row. A reused payment intent is a conflict.
func (q *Queries) InsertContribution(ctx context.Context, c *domain.Contribution) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO contributions (`+contributionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.InvestorID, c.CampaignID, c.Amount, string(c.Status), c.TransactionID, textOrNull(c.PaymentIntentID),
		c.ExpectedReturn, c.TransactionDate, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contribution %s: %w", c.ID, mapErr(err))
	}
	return nil
}

// SumSuccessfulContributions is the only funding aggregate. Failed rows never count.
func (q *Queries) SumSuccessfulContributions(ctx context.Context, campaignID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM contributions WHERE campaign_id = $1 AND status = 'success'`,
		campaignID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum contributions for %s: %w", campaignID, err)
	}
	return total, nil
}

// UpdateContributionStatus corrects the status of the row carrying paymentIntentID.
func (q *Queries) UpdateContributionStatus(ctx context.Context, paymentIntentID string, status domain.ContributionStatus) (*domain.Contribution, error) {
	row := q.db.QueryRow(ctx,
		`UPDATE contributions SET status = $2 WHERE payment_intent_id = $1 RETURNING `+contributionColumns,
		paymentIntentID, string(status),
	)
	c, err := scanContribution(row)
	if err != nil {
		return nil, fmt.Errorf("update contribution %s: %w", paymentIntentID, mapErr(err))
	}
	return c, nil
}

func scanContribution(row scanner) (*domain.Contribution, error) {
	var (
		c      domain.Contribution
		status string
		intent pgtype.Text
	)
	if err := row.Scan(&c.ID, &c.InvestorID, &c.CampaignID, &c.Amount, &status, &c.TransactionID, &intent,
		&c.ExpectedReturn, &c.TransactionDate, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Status = domain.ContributionStatus(status)
	c.PaymentIntentID = intent.String
	return &c, nil
}
