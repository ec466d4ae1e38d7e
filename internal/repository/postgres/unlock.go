package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"soundstake.io/soundstake/internal/domain"
	"soundstake.io/soundstake/internal/repository"
)

const unlockRequestColumns = `id, campaign_id, artist_id, milestone_id, status, requested_at, responded_at,
	admin_id, admin_response, transfer_id, updated_at`

// InsertUnlockRequest inserts a request. The partial unique index on open
// requests turns a concurrent duplicate into repository.ErrConflict.
func (q *Queries) InsertUnlockRequest(ctx context.Context, r *domain.FundUnlockRequest) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO fund_unlock_requests (id, campaign_id, artist_id, milestone_id, status, requested_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		r.ID, r.CampaignID, r.ArtistID, r.MilestoneID, string(r.Status), r.RequestedAt,
	)
	if err != nil {
		return fmt.Errorf("insert unlock request %s: %w", r.ID, mapErr(err))
	}
	return nil
}

func (q *Queries) GetUnlockRequest(ctx context.Context, id string) (*domain.FundUnlockRequest, error) {
	r, err := scanUnlockRequest(q.db.QueryRow(ctx,
		`SELECT `+unlockRequestColumns+` FROM fund_unlock_requests WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get unlock request %s: %w", id, mapErr(err))
	}
	return r, nil
}

// GetOpenUnlockRequest returns the pending or transferring request of a campaign.
func (q *Queries) GetOpenUnlockRequest(ctx context.Context, campaignID string) (*domain.FundUnlockRequest, error) {
	r, err := scanUnlockRequest(q.db.QueryRow(ctx,
		`SELECT `+unlockRequestColumns+` FROM fund_unlock_requests
		 WHERE campaign_id = $1 AND status IN ('pending', 'transferring')`, campaignID))
	if err != nil {
		return nil, fmt.Errorf("get open unlock request for %s: %w", campaignID, mapErr(err))
	}
	return r, nil
}

func (q *Queries) ListUnlockRequests(ctx context.Context, f repository.UnlockRequestFilter) ([]*domain.FundUnlockRequest, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.CampaignID != "" {
		args = append(args, f.CampaignID)
		where = append(where, fmt.Sprintf("campaign_id = $%d", len(args)))
	}
	if f.Status != "" {
		// transferring is reported as pending.
		if f.Status == domain.UnlockStatusPending {
			where = append(where, "status IN ('pending', 'transferring')")
		} else {
			args = append(args, string(f.Status))
			where = append(where, fmt.Sprintf("status = $%d", len(args)))
		}
	}
	query := `SELECT ` + unlockRequestColumns + ` FROM fund_unlock_requests`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY requested_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return q.queryUnlockRequests(ctx, query, args...)
}

// TransitionUnlockRequest applies upd only while the row is still in status from.
func (q *Queries) TransitionUnlockRequest(ctx context.Context, id string, from domain.UnlockRequestStatus, upd repository.UnlockRequestUpdate) (bool, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE fund_unlock_requests SET
			status = $3,
			admin_id = COALESCE(NULLIF($4, ''), admin_id),
			admin_response = COALESCE(NULLIF($5, ''), admin_response),
			transfer_id = COALESCE(NULLIF($6, ''), transfer_id),
			responded_at = COALESCE($7, responded_at),
			updated_at = $8
		 WHERE id = $1 AND status = $2`,
		id, string(from), string(upd.Status), upd.AdminID, upd.AdminResponse, upd.TransferID, upd.RespondedAt,
		time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("transition unlock request %s: %w", id, mapErr(err))
	}
	return tag.RowsAffected() == 1, nil
}

// ListStaleTransferring returns reservations older than before.
func (q *Queries) ListStaleTransferring(ctx context.Context, before time.Time, limit int) ([]*domain.FundUnlockRequest, error) {
	return q.queryUnlockRequests(ctx,
		`SELECT `+unlockRequestColumns+` FROM fund_unlock_requests
		 WHERE status = 'transferring' AND updated_at < $1 ORDER BY updated_at LIMIT $2`,
		before, limit,
	)
}

func (q *Queries) queryUnlockRequests(ctx context.Context, query string, args ...interface{}) ([]*domain.FundUnlockRequest, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list unlock requests: %w", err)
	}
	defer rows.Close()

	var out []*domain.FundUnlockRequest
	for rows.Next() {
		r, err := scanUnlockRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unlock request: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanUnlockRequest(row scanner) (*domain.FundUnlockRequest, error) {
	var (
		r      domain.FundUnlockRequest
		status string
	)
	if err := row.Scan(&r.ID, &r.CampaignID, &r.ArtistID, &r.MilestoneID, &status, &r.RequestedAt, &r.RespondedAt,
		&r.AdminID, &r.AdminResponse, &r.TransferID, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Status = domain.UnlockRequestStatus(status)
	return &r, nil
}

const proofColumns = `id, campaign_id, artist_id, milestone_id, description, proof, status,
	admin_id, admin_response, created_at, updated_at`

// InsertProof inserts the first proof for a milestone.
func (q *Queries) InsertProof(ctx context.Context, p *domain.MilestoneProof) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO milestone_proofs (id, campaign_id, artist_id, milestone_id, description, proof, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		p.ID, p.CampaignID, p.ArtistID, p.MilestoneID, p.Description, p.Proof, string(p.Status), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert proof %s: %w", p.ID, mapErr(err))
	}
	return nil
}

func (q *Queries) GetProof(ctx context.Context, id string) (*domain.MilestoneProof, error) {
	p, err := scanProof(q.db.QueryRow(ctx, `SELECT `+proofColumns+` FROM milestone_proofs WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get proof %s: %w", id, mapErr(err))
	}
	return p, nil
}

func (q *Queries) GetProofForMilestone(ctx context.Context, campaignID, milestoneID string) (*domain.MilestoneProof, error) {
	p, err := scanProof(q.db.QueryRow(ctx,
		`SELECT `+proofColumns+` FROM milestone_proofs WHERE campaign_id = $1 AND milestone_id = $2`,
		campaignID, milestoneID))
	if err != nil {
		return nil, fmt.Errorf("get proof for milestone %s: %w", milestoneID, mapErr(err))
	}
	return p, nil
}

func (q *Queries) ListProofs(ctx context.Context, campaignID string) ([]*domain.MilestoneProof, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+proofColumns+` FROM milestone_proofs WHERE campaign_id = $1 ORDER BY created_at`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list proofs for %s: %w", campaignID, err)
	}
	defer rows.Close()

	var out []*domain.MilestoneProof
	for rows.Next() {
		p, err := scanProof(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proof: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ResubmitProof resets a rejected proof to pending in place.
func (q *Queries) ResubmitProof(ctx context.Context, id, description, proof string, at time.Time) (bool, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE milestone_proofs SET description = $2, proof = $3, status = 'pending',
			admin_id = '', admin_response = '', updated_at = $4
		 WHERE id = $1 AND status = 'rejected'`,
		id, description, proof, at,
	)
	if err != nil {
		return false, fmt.Errorf("resubmit proof %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (q *Queries) TransitionProof(ctx context.Context, id string, from domain.ProofStatus, d repository.ProofDecision) (bool, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE milestone_proofs SET status = $3, admin_id = $4, admin_response = $5, updated_at = $6
		 WHERE id = $1 AND status = $2`,
		id, string(from), string(d.Status), d.AdminID, d.AdminResponse, d.At,
	)
	if err != nil {
		return false, fmt.Errorf("transition proof %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanProof(row scanner) (*domain.MilestoneProof, error) {
	var (
		p      domain.MilestoneProof
		status string
	)
	if err := row.Scan(&p.ID, &p.CampaignID, &p.ArtistID, &p.MilestoneID, &p.Description, &p.Proof, &status,
		&p.AdminID, &p.AdminResponse, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = domain.ProofStatus(status)
	return &p, nil
}

// InsertLedgerEntry records a transfer. One entry per request.
func (q *Queries) InsertLedgerEntry(ctx context.Context, e *domain.LedgerEntry) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO ledger_entries (id, type, campaign_id, artist_id, milestone_id, request_id, amount, transfer_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, string(e.Type), e.CampaignID, e.ArtistID, e.MilestoneID, e.RequestID, e.Amount, e.TransferID, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry for request %s: %w", e.RequestID, mapErr(err))
	}
	return nil
}

func (q *Queries) GetPayoutDestination(ctx context.Context, artistID string) (*domain.PayoutDestination, error) {
	var d domain.PayoutDestination
	err := q.db.QueryRow(ctx,
		`SELECT artist_id, account_ref, verified, connected_at FROM payout_destinations WHERE artist_id = $1`,
		artistID,
	).Scan(&d.ArtistID, &d.AccountRef, &d.Verified, &d.ConnectedAt)
	if err != nil {
		return nil, fmt.Errorf("get payout destination for %s: %w", artistID, mapErr(err))
	}
	return &d, nil
}

func (q *Queries) UpsertPayoutDestination(ctx context.Context, d *domain.PayoutDestination) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO payout_destinations (artist_id, account_ref, verified, connected_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (artist_id) DO UPDATE SET
			account_ref = EXCLUDED.account_ref,
			verified = EXCLUDED.verified,
			connected_at = EXCLUDED.connected_at`,
		d.ArtistID, d.AccountRef, d.Verified, d.ConnectedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert payout destination for %s: %w", d.ArtistID, err)
	}
	return nil
}
