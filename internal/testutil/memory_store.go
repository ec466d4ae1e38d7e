package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"soundstake.io/soundstake/internal/domain"
	"soundstake.io/soundstake/internal/repository"
)

// MemoryStore is an in-memory repository.Store for tests.
//
// InTx holds a single lock for the whole callback and works on a copy of the
// state, so transactions are serializable and a returned error discards every
// write. Calls outside InTx auto-commit. Never call the store itself from
// inside an InTx callback; use the tx argument.
type MemoryStore struct {
	memTx

	mu     sync.Mutex
	state  *memState
	faults map[string][]error
}

var _ repository.Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{state: newMemState(), faults: make(map[string][]error)}
	s.memTx = memTx{store: s}
	return s
}

// InTx runs fn against a private copy of the state and publishes it on success.
func (s *MemoryStore) InTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&memTx{store: s, st: work, inTx: true}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// FailNext makes the next calls to op return errs, one per call.
func (s *MemoryStore) FailNext(op string, errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = append(s.faults[op], errs...)
}

// AuditLogs returns a copy of the audit trail in insertion order.
func (s *MemoryStore) AuditLogs() []repository.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repository.AuditLog, 0, len(s.state.audit))
	for _, a := range s.state.audit {
		out = append(out, *a)
	}
	return out
}

// LedgerEntries returns a copy of the transfer ledger.
func (s *MemoryStore) LedgerEntries() []domain.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.LedgerEntry, 0, len(s.state.ledger))
	for _, e := range s.state.ledger {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Investment returns a copy of one investment.
func (s *MemoryStore) Investment(id string) (domain.Investment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.state.investments[id]
	if !ok {
		return domain.Investment{}, false
	}
	return *inv, true
}

// Contributions returns a copy of the campaign's payment rows.
func (s *MemoryStore) Contributions(campaignID string) []domain.Contribution {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Contribution
	for _, c := range s.state.contributions {
		if c.CampaignID == campaignID {
			out = append(out, *c)
		}
	}
	return out
}

type memState struct {
	campaigns     map[string]*domain.Campaign
	contributions map[string]*domain.Contribution
	requests      map[string]*domain.FundUnlockRequest
	proofs        map[string]*domain.MilestoneProof
	ledger        map[string]*domain.LedgerEntry
	destinations  map[string]*domain.PayoutDestination
	investments   map[string]*domain.Investment
	revenue       map[string]*domain.RevenueEvent
	payouts       map[string]*domain.Payout
	audit         []*repository.AuditLog
	notifications []*repository.Notification
}

func newMemState() *memState {
	return &memState{
		campaigns:     make(map[string]*domain.Campaign),
		contributions: make(map[string]*domain.Contribution),
		requests:      make(map[string]*domain.FundUnlockRequest),
		proofs:        make(map[string]*domain.MilestoneProof),
		ledger:        make(map[string]*domain.LedgerEntry),
		destinations:  make(map[string]*domain.PayoutDestination),
		investments:   make(map[string]*domain.Investment),
		revenue:       make(map[string]*domain.RevenueEvent),
		payouts:       make(map[string]*domain.Payout),
	}
}

func (m *memState) clone() *memState {
	c := newMemState()
	for k, v := range m.campaigns {
		c.campaigns[k] = copyCampaign(v)
	}
	copyMap(c.contributions, m.contributions)
	copyMap(c.requests, m.requests)
	copyMap(c.proofs, m.proofs)
	copyMap(c.ledger, m.ledger)
	copyMap(c.destinations, m.destinations)
	copyMap(c.investments, m.investments)
	copyMap(c.revenue, m.revenue)
	copyMap(c.payouts, m.payouts)
	c.audit = append(c.audit, m.audit...)
	c.notifications = append(c.notifications, m.notifications...)
	return c
}

func copyMap[T any](dst, src map[string]*T) {
	for k, v := range src {
		cp := *v
		dst[k] = &cp
	}
}

func copyCampaign(c *domain.Campaign) *domain.Campaign {
	cp := *c
	cp.Milestones = append([]domain.Milestone(nil), c.Milestones...)
	return &cp
}

type memTx struct {
	store *MemoryStore
	st    *memState
	inTx  bool
}

// begin returns the state to operate on. Outside a transaction it takes the
// store lock and the returned func releases it.
func (t *memTx) begin(op string) (*memState, func(), error) {
	if t.inTx {
		return t.st, func() {}, t.store.takeFault(op)
	}
	t.store.mu.Lock()
	return t.store.state, t.store.mu.Unlock, t.store.takeFault(op)
}

// takeFault must be called with mu held.
func (s *MemoryStore) takeFault(op string) error {
	errs := s.faults[op]
	if len(errs) == 0 {
		return nil
	}
	s.faults[op] = errs[1:]
	return errs[0]
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, repository.ErrNotFound)
}

func conflict(what string) error {
	return fmt.Errorf("%s: %w", what, repository.ErrConflict)
}

func (t *memTx) CreateCampaign(_ context.Context, c *domain.Campaign) error {
	st, done, err := t.begin("CreateCampaign")
	defer done()
	if err != nil {
		return err
	}
	if _, ok := st.campaigns[c.ID]; ok {
		return conflict("campaign " + c.ID)
	}
	cp := copyCampaign(c)
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = cp.CreatedAt
	}
	st.campaigns[c.ID] = cp
	return nil
}

func (t *memTx) GetCampaign(_ context.Context, id string) (*domain.Campaign, error) {
	st, done, err := t.begin("GetCampaign")
	defer done()
	if err != nil {
		return nil, err
	}
	c, ok := st.campaigns[id]
	if !ok || c.DeletedAt != nil {
		return nil, notFound("campaign", id)
	}
	return copyCampaign(c), nil
}

func (t *memTx) LockCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	return t.GetCampaign(ctx, id)
}

func (t *memTx) ListCampaignsByArtist(_ context.Context, artistID string) ([]*domain.Campaign, error) {
	st, done, err := t.begin("ListCampaignsByArtist")
	defer done()
	if err != nil {
		return nil, err
	}
	var out []*domain.Campaign
	for _, c := range st.campaigns {
		if c.ArtistID == artistID && c.DeletedAt == nil {
			out = append(out, copyCampaign(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (t *memTx) UpdateCampaignStatus(_ context.Context, id string, from, to domain.CampaignStatus) (bool, error) {
	st, done, err := t.begin("UpdateCampaignStatus")
	defer done()
	if err != nil {
		return false, err
	}
	c, ok := st.campaigns[id]
	if !ok || c.DeletedAt != nil || c.Status != from {
		return false, nil
	}
	c.Status = to
	c.IsActive = to == domain.CampaignStatusActive
	c.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (t *memTx) SetMilestoneStatus(_ context.Context, campaignID, milestoneID string, from, to domain.MilestoneStatus) (bool, error) {
	st, done, err := t.begin("SetMilestoneStatus")
	defer done()
	if err != nil {
		return false, err
	}
	c, ok := st.campaigns[campaignID]
	if !ok {
		return false, nil
	}
	for i := range c.Milestones {
		if c.Milestones[i].ID == milestoneID && c.Milestones[i].Status == from {
			c.Milestones[i].Status = to
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) InsertContribution(_ context.Context, c *domain.Contribution) error {
	st, done, err := t.begin("InsertContribution")
	defer done()
	if err != nil {
		return err
	}
	if _, ok := st.contributions[c.ID]; ok {
		return conflict("contribution " + c.ID)
	}
	if c.PaymentIntentID != "" {
		for _, existing := range st.contributions {
			if existing.PaymentIntentID == c.PaymentIntentID {
				return conflict("payment intent " + c.PaymentIntentID)
			}
		}
	}
	cp := *c
	st.contributions[c.ID] = &cp
	return nil
}

func (t *memTx) SumSuccessfulContributions(_ context.Context, campaignID string) (decimal.Decimal, error) {
	st, done, err := t.begin("SumSuccessfulContributions")
	defer done()
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, c := range st.contributions {
		if c.CampaignID == campaignID && c.Status == domain.ContributionStatusSuccess {
			total = total.Add(c.Amount)
		}
	}
	return total, nil
}

func (t *memTx) UpdateContributionStatus(_ context.Context, paymentIntentID string, status domain.ContributionStatus) (*domain.Contribution, error) {
	st, done, err := t.begin("UpdateContributionStatus")
	defer done()
	if err != nil {
		return nil, err
	}
	for _, c := range st.contributions {
		if paymentIntentID != "" && c.PaymentIntentID == paymentIntentID {
			c.Status = status
			cp := *c
			return &cp, nil
		}
	}
	return nil, notFound("contribution", paymentIntentID)
}

func (t *memTx) InsertUnlockRequest(_ context.Context, r *domain.FundUnlockRequest) error {
	st, done, err := t.begin("InsertUnlockRequest")
	defer done()
	if err != nil {
		return err
	}
	if r.Status.IsOpen() {
		for _, existing := range st.requests {
			if existing.CampaignID == r.CampaignID && existing.Status.IsOpen() {
				return conflict("open unlock request for campaign " + r.CampaignID)
			}
		}
	}
	cp := *r
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = cp.RequestedAt
	}
	st.requests[r.ID] = &cp
	return nil
}

func (t *memTx) GetUnlockRequest(_ context.Context, id string) (*domain.FundUnlockRequest, error) {
	st, done, err := t.begin("GetUnlockRequest")
	defer done()
	if err != nil {
		return nil, err
	}
	r, ok := st.requests[id]
	if !ok {
		return nil, notFound("unlock request", id)
	}
	cp := *r
	return &cp, nil
}

func (t *memTx) GetOpenUnlockRequest(_ context.Context, campaignID string) (*domain.FundUnlockRequest, error) {
	st, done, err := t.begin("GetOpenUnlockRequest")
	defer done()
	if err != nil {
		return nil, err
	}
	for _, r := range st.requests {
		if r.CampaignID == campaignID && r.Status.IsOpen() {
			cp := *r
			return &cp, nil
		}
	}
	return nil, notFound("open unlock request", campaignID)
}

func (t *memTx) ListUnlockRequests(_ context.Context, f repository.UnlockRequestFilter) ([]*domain.FundUnlockRequest, error) {
	st, done, err := t.begin("ListUnlockRequests")
	defer done()
	if err != nil {
		return nil, err
	}
	var out []*domain.FundUnlockRequest
	for _, r := range st.requests {
		if f.CampaignID != "" && r.CampaignID != f.CampaignID {
			continue
		}
		if f.Status != "" && r.Status.Public() != f.Status {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (t *memTx) TransitionUnlockRequest(_ context.Context, id string, from domain.UnlockRequestStatus, upd repository.UnlockRequestUpdate) (bool, error) {
	st, done, err := t.begin("TransitionUnlockRequest")
	defer done()
	if err != nil {
		return false, err
	}
	r, ok := st.requests[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = upd.Status
	if upd.AdminID != "" {
		r.AdminID = upd.AdminID
	}
	if upd.AdminResponse != "" {
		r.AdminResponse = upd.AdminResponse
	}
	if upd.TransferID != "" {
		r.TransferID = upd.TransferID
	}
	if upd.RespondedAt != nil {
		at := *upd.RespondedAt
		r.RespondedAt = &at
	}
	r.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (t *memTx) ListStaleTransferring(_ context.Context, before time.Time, limit int) ([]*domain.FundUnlockRequest, error) {
	st, done, err := t.begin("ListStaleTransferring")
	defer done()
	if err != nil {
		return nil, err
	}
	var out []*domain.FundUnlockRequest
	for _, r := range st.requests {
		if r.Status == domain.UnlockStatusTransferring && r.UpdatedAt.Before(before) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// BackdateUnlockRequest moves a request's updated_at into the past.
func (s *MemoryStore) BackdateUnlockRequest(id string, by time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.state.requests[id]; ok {
		r.UpdatedAt = r.UpdatedAt.Add(-by)
	}
}

func (t *memTx) InsertProof(_ context.Context, p *domain.MilestoneProof) error {
	st, done, err := t.begin("InsertProof")
	defer done()
	if err != nil {
		return err
	}
	for _, existing := range st.proofs {
		if existing.CampaignID == p.CampaignID && existing.MilestoneID == p.MilestoneID {
			return conflict("proof for milestone " + p.MilestoneID)
		}
	}
	cp := *p
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = cp.CreatedAt
	}
	st.proofs[p.ID] = &cp
	return nil
}

func (t *memTx) GetProof(_ context.Context, id string) (*domain.MilestoneProof, error) {
	st, done, err := t.begin("GetProof")
	defer done()
	if err != nil {
		return nil, err
	}
	p, ok := st.proofs[id]
	if !ok {
		return nil, notFound("proof", id)
	}
	cp := *p
	return &cp, nil
}

func (t *memTx) GetProofForMilestone(_ context.Context, campaignID, milestoneID string) (*domain.MilestoneProof, error) {
	st, done, err := t.begin("GetProofForMilestone")
	defer done()
	if err != nil {
		return nil, err
	}
	for _, p := range st.proofs {
		if p.CampaignID == campaignID && p.MilestoneID == milestoneID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, notFound("proof for milestone", milestoneID)
}

func (t *memTx) ListProofs(_ context.Context, campaignID string) ([]*domain.MilestoneProof, error) {
	st, done, err := t.begin("ListProofs")
	defer done()
	if err != nil {
		return nil, err
	}
	var out []*domain.MilestoneProof
	for _, p := range st.proofs {
		if p.CampaignID == campaignID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (t *memTx) ResubmitProof(_ context.Context, id, description, proof string, at time.Time) (bool, error) {
	st, done, err := t.begin("ResubmitProof")
	defer done()
	if err != nil {
		return false, err
	}
	p, ok := st.proofs[id]
	if !ok || p.Status != domain.ProofStatusRejected {
		return false, nil
	}
	p.Description = description
	p.Proof = proof
	p.Status = domain.ProofStatusPending
	p.AdminID = ""
	p.AdminResponse = ""
	p.UpdatedAt = at
	return true, nil
}

func (t *memTx) TransitionProof(_ context.Context, id string, from domain.ProofStatus, d repository.ProofDecision) (bool, error) {
	st, done, err := t.begin("TransitionProof")
	defer done()
	if err != nil {
		return false, err
	}
	p, ok := st.proofs[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = d.Status
	p.AdminID = d.AdminID
	p.AdminResponse = d.AdminResponse
	p.UpdatedAt = d.At
	return true, nil
}

func (t *memTx) InsertLedgerEntry(_ context.Context, e *domain.LedgerEntry) error {
	st, done, err := t.begin("InsertLedgerEntry")
	defer done()
	if err != nil {
		return err
	}
	if _, ok := st.ledger[e.RequestID]; ok {
		return conflict("ledger entry for request " + e.RequestID)
	}
	cp := *e
	st.ledger[e.RequestID] = &cp
	return nil
}

func (t *memTx) GetPayoutDestination(_ context.Context, artistID string) (*domain.PayoutDestination, error) {
	st, done, err := t.begin("GetPayoutDestination")
	defer done()
	if err != nil {
		return nil, err
	}
	d, ok := st.destinations[artistID]
	if !ok {
		return nil, notFound("payout destination", artistID)
	}
	cp := *d
	return &cp, nil
}

func (t *memTx) UpsertPayoutDestination(_ context.Context, d *domain.PayoutDestination) error {
	st, done, err := t.begin("UpsertPayoutDestination")
	defer done()
	if err != nil {
		return err
	}
	cp := *d
	st.destinations[d.ArtistID] = &cp
	return nil
}

func (t *memTx) InsertInvestment(_ context.Context, inv *domain.Investment) error {
	st, done, err := t.begin("InsertInvestment")
	defer done()
	if err != nil {
		return err
	}
	if _, ok := st.investments[inv.ID]; ok {
		return conflict("investment " + inv.ID)
	}
	cp := *inv
	st.investments[inv.ID] = &cp
	return nil
}

func (t *memTx) ListActiveInvestments(_ context.Context, campaignID string) ([]*domain.Investment, error) {
	st, done, err := t.begin("ListActiveInvestments")
	defer done()
	if err != nil {
		return nil, err
	}
	var out []*domain.Investment
	for _, inv := range st.investments {
		if inv.CampaignID == campaignID && inv.Status == domain.InvestmentStatusActive {
			cp := *inv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (t *memTx) IncrementActualReturn(_ context.Context, investmentID string, amount decimal.Decimal) error {
	st, done, err := t.begin("IncrementActualReturn")
	defer done()
	if err != nil {
		return err
	}
	inv, ok := st.investments[investmentID]
	if !ok {
		return notFound("investment", investmentID)
	}
	inv.ActualReturn = inv.ActualReturn.Add(amount)
	return nil
}

func (t *memTx) InsertRevenueEvent(_ context.Context, ev *domain.RevenueEvent) error {
	st, done, err := t.begin("InsertRevenueEvent")
	defer done()
	if err != nil {
		return err
	}
	if _, ok := st.revenue[ev.ID]; ok {
		return conflict("revenue event " + ev.ID)
	}
	cp := *ev
	st.revenue[ev.ID] = &cp
	return nil
}

func (t *memTx) GetRevenueEvent(_ context.Context, id string) (*domain.RevenueEvent, error) {
	st, done, err := t.begin("GetRevenueEvent")
	defer done()
	if err != nil {
		return nil, err
	}
	ev, ok := st.revenue[id]
	if !ok {
		return nil, notFound("revenue event", id)
	}
	cp := *ev
	return &cp, nil
}

func (t *memTx) MarkRevenueProcessed(_ context.Context, id string, at time.Time) (bool, error) {
	st, done, err := t.begin("MarkRevenueProcessed")
	defer done()
	if err != nil {
		return false, err
	}
	ev, ok := st.revenue[id]
	if !ok || ev.IsProcessed {
		return false, nil
	}
	ev.IsProcessed = true
	ev.ProcessedAt = &at
	return true, nil
}

func (t *memTx) ListUnprocessedRevenueEvents(_ context.Context, before time.Time, limit int) ([]*domain.RevenueEvent, error) {
	st, done, err := t.begin("ListUnprocessedRevenueEvents")
	defer done()
	if err != nil {
		return nil, err
	}
	var out []*domain.RevenueEvent
	for _, ev := range st.revenue {
		if !ev.IsProcessed && ev.CreatedAt.Before(before) {
			cp := *ev
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (t *memTx) InsertPayout(_ context.Context, p *domain.Payout) (bool, error) {
	st, done, err := t.begin("InsertPayout")
	defer done()
	if err != nil {
		return false, err
	}
	key := p.InvestmentID + "|" + p.RevenueID
	if _, ok := st.payouts[key]; ok {
		return false, nil
	}
	cp := *p
	st.payouts[key] = &cp
	return true, nil
}

func (t *memTx) ListPayoutsByRevenue(_ context.Context, revenueID string) ([]*domain.Payout, error) {
	st, done, err := t.begin("ListPayoutsByRevenue")
	defer done()
	if err != nil {
		return nil, err
	}
	var out []*domain.Payout
	for _, p := range st.payouts {
		if p.RevenueID == revenueID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvestmentID < out[j].InvestmentID })
	return out, nil
}

func (t *memTx) InsertAuditLog(_ context.Context, entry *repository.AuditLog) error {
	st, done, err := t.begin("InsertAuditLog")
	defer done()
	if err != nil {
		return err
	}
	cp := *entry
	st.audit = append(st.audit, &cp)
	return nil
}

func (t *memTx) InsertNotification(_ context.Context, n *repository.Notification) error {
	st, done, err := t.begin("InsertNotification")
	defer done()
	if err != nil {
		return err
	}
	cp := *n
	st.notifications = append(st.notifications, &cp)
	return nil
}

func (t *memTx) ListNotifications(_ context.Context, userID string, limit int) ([]*repository.Notification, error) {
	st, done, err := t.begin("ListNotifications")
	defer done()
	if err != nil {
		return nil, err
	}
	var out []*repository.Notification
	for i := len(st.notifications) - 1; i >= 0; i-- {
		n := st.notifications[i]
		if n.UserID != userID {
			continue
		}
		cp := *n
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (t *memTx) DeleteNotificationsBefore(_ context.Context, before time.Time) (int64, error) {
	st, done, err := t.begin("DeleteNotificationsBefore")
	defer done()
	if err != nil {
		return 0, err
	}
	kept := st.notifications[:0:0]
	var deleted int64
	for _, n := range st.notifications {
		if n.CreatedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	st.notifications = kept
	return deleted, nil
}
