package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"soundstake.io/soundstake/internal/domain"
	"soundstake.io/soundstake/internal/governance/audit"
	"soundstake.io/soundstake/internal/notification"
	apperrors "soundstake.io/soundstake/internal/pkg/errors"
	"soundstake.io/soundstake/internal/pkg/logger"
	"soundstake.io/soundstake/internal/repository"
)

// FanOutEnqueuer schedules a fan-out retry in the background job queue.
type FanOutEnqueuer interface {
	EnqueueFanOut(ctx context.Context, revenueID string) error
}

// RevenueInput is confirmed income for a campaign.
type RevenueInput struct {
	CampaignID  string          `json:"campaign_id" validate:"required"`
	Source      string          `json:"source" validate:"required,max=50"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	StreamCount int64           `json:"stream_count" validate:"gte=0"`
	Country     string          `json:"country" validate:"omitempty,max=50"`
}

// FanOutResult is the outcome of one distribution.
type FanOutResult struct {
	RevenueID string           `json:"revenue_id"`
	Payouts   []*domain.Payout `json:"payouts"`
	TotalPaid decimal.Decimal  `json:"total_paid"`
}

// RevenueResult is returned by ProcessRevenue. Queued means the fan-out hit a
// transient error and was handed to the job queue.
type RevenueResult struct {
	Event  *domain.RevenueEvent `json:"event"`
	FanOut *FanOutResult        `json:"fan_out,omitempty"`
	Queued bool                 `json:"queued"`
}

// PayoutUseCase distributes revenue to investors pro rata.
type PayoutUseCase struct {
	store       repository.Store
	enqueuer    FanOutEnqueuer
	auditLogger *audit.Logger
	notifier    *notification.Triggers
	events      *domain.EventDispatcher
	now         func() time.Time
}

// NewPayoutUseCase creates a new PayoutUseCase.
func NewPayoutUseCase(store repository.Store) *PayoutUseCase {
	return &PayoutUseCase{
		store:       store,
		auditLogger: audit.NewLogger(store),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetEnqueuer configures background retries. Without one, transient fan-out
// errors are returned to the caller and the sweep job picks the event up later.
func (uc *PayoutUseCase) SetEnqueuer(e FanOutEnqueuer) { uc.enqueuer = e }

// SetNotifier configures the notification trigger service.
func (uc *PayoutUseCase) SetNotifier(n *notification.Triggers) { uc.notifier = n }

// SetEventDispatcher configures where domain events go after commit.
func (uc *PayoutUseCase) SetEventDispatcher(d *domain.EventDispatcher) { uc.events = d }

// ProcessRevenue records a revenue event and distributes it.
func (uc *PayoutUseCase) ProcessRevenue(ctx context.Context, in RevenueInput) (*RevenueResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, err := loadCampaign(ctx, uc.store, in.CampaignID); err != nil {
		return nil, err
	}

	country := strings.TrimSpace(in.Country)
	if country == "" {
		country = "US"
	}
	now := uc.now()
	ev := &domain.RevenueEvent{
		ID:          newID(),
		CampaignID:  in.CampaignID,
		Source:      in.Source,
		Amount:      in.Amount,
		StreamCount: in.StreamCount,
		Country:     country,
		PayoutRate:  payoutRate(in.Amount, in.StreamCount),
		CreatedAt:   now,
	}
	if err := uc.store.InsertRevenueEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("insert revenue event: %w", err)
	}
	uc.events.Emit(ctx, domain.EventRevenueRecorded, domain.AggregateRevenue, ev.ID, "", domain.RevenueDistributedPayload{
		RevenueID:  ev.ID,
		CampaignID: ev.CampaignID,
		Amount:     ev.Amount.StringFixed(2),
	})

	res, err := uc.FanOut(ctx, ev.ID)
	if err == nil {
		ev.IsProcessed = true
		ev.ProcessedAt = &now
		return &RevenueResult{Event: ev, FanOut: res}, nil
	}
	if _, isDomain := apperrors.IsAppError(err); isDomain || uc.enqueuer == nil {
		return nil, err
	}

	logger.Warn("Revenue fan-out failed, queued for retry",
		zap.String("revenue_id", ev.ID),
		zap.String("campaign_id", ev.CampaignID),
		zap.Error(err),
	)
	if qerr := uc.enqueuer.EnqueueFanOut(ctx, ev.ID); qerr != nil {
		return nil, fmt.Errorf("fan out revenue %s: %w (enqueue retry: %v)", ev.ID, err, qerr)
	}
	return &RevenueResult{Event: ev, Queued: true}, nil
}

// FanOut distributes one revenue event in a single transaction. The processed
// flag, every payout and every actual_return increment commit together, and
// payouts are unique per (investment, revenue), so retries never pay twice.
func (uc *PayoutUseCase) FanOut(ctx context.Context, revenueID string) (*FanOutResult, error) {
	res := &FanOutResult{RevenueID: revenueID, TotalPaid: decimal.Zero}
	var campaignID string
	var revenueAmount decimal.Decimal

	err := uc.store.InTx(ctx, func(tx repository.Tx) error {
		ev, err := tx.GetRevenueEvent(ctx, revenueID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NotFound(apperrors.CodeRevenueNotFound,
					fmt.Sprintf("revenue event %s not found", revenueID))
			}
			return fmt.Errorf("load revenue event: %w", err)
		}
		campaignID = ev.CampaignID
		revenueAmount = ev.Amount

		ok, err := tx.MarkRevenueProcessed(ctx, revenueID, uc.now())
		if err != nil {
			return fmt.Errorf("mark revenue processed: %w", err)
		}
		if !ok {
			return apperrors.Conflict(apperrors.CodeRevenueAlreadyProcessed,
				fmt.Sprintf("revenue event %s was already distributed", revenueID))
		}

		investments, err := tx.ListActiveInvestments(ctx, ev.CampaignID)
		if err != nil {
			return fmt.Errorf("list investments: %w", err)
		}
		for _, inv := range investments {
			amount := domain.PayoutFor(ev.Amount, *inv)
			if !amount.IsPositive() {
				continue
			}
			p := &domain.Payout{
				ID:             newID(),
				InvestmentID:   inv.ID,
				InvestorID:     inv.InvestorID,
				CampaignID:     ev.CampaignID,
				RevenueID:      ev.ID,
				Amount:         amount,
				OwnershipShare: inv.OwnershipPercentage,
				CreatedAt:      uc.now(),
			}
			inserted, err := tx.InsertPayout(ctx, p)
			if err != nil {
				return fmt.Errorf("insert payout for investment %s: %w", inv.ID, err)
			}
			if !inserted {
				continue
			}
			if err := tx.IncrementActualReturn(ctx, inv.ID, amount); err != nil {
				return fmt.Errorf("credit investment %s: %w", inv.ID, err)
			}
			res.Payouts = append(res.Payouts, p)
			res.TotalPaid = res.TotalPaid.Add(amount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = uc.auditLogger.LogAction(ctx, "revenue.distributed", domain.AggregateRevenue, revenueID, "system",
		map[string]interface{}{
			"campaign_id":  campaignID,
			"amount":       revenueAmount.StringFixed(2),
			"payout_count": len(res.Payouts),
			"total_paid":   res.TotalPaid.StringFixed(2),
		})
	uc.notifier.OnPayoutsDistributed(ctx, revenueID, res.Payouts)
	uc.events.Emit(ctx, domain.EventRevenueDistributed, domain.AggregateRevenue, revenueID, "system",
		domain.RevenueDistributedPayload{
			RevenueID:   revenueID,
			CampaignID:  campaignID,
			Amount:      revenueAmount.StringFixed(2),
			PayoutCount: len(res.Payouts),
			TotalPaid:   res.TotalPaid.StringFixed(2),
		})

	logger.Info("Revenue distributed",
		zap.String("revenue_id", revenueID),
		zap.String("campaign_id", campaignID),
		zap.Int("payouts", len(res.Payouts)),
		zap.String("total_paid", res.TotalPaid.StringFixed(2)),
	)
	return res, nil
}

// PendingRevenueIDs lists events still undistributed after olderThan.
func (uc *PayoutUseCase) PendingRevenueIDs(ctx context.Context, olderThan time.Duration, limit int) ([]string, error) {
	events, err := uc.store.ListUnprocessedRevenueEvents(ctx, uc.now().Add(-olderThan), limit)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed revenue: %w", err)
	}
	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	return ids, nil
}

// payoutRate is amount per stream, with zero streams counted as one.
func payoutRate(amount decimal.Decimal, streams int64) decimal.Decimal {
	if streams < 1 {
		streams = 1
	}
	return amount.Div(decimal.NewFromInt(streams)).Round(6)
}
