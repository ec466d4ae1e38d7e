package unlock_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundstake.io/soundstake/internal/domain"
	"soundstake.io/soundstake/internal/governance/unlock"
	"soundstake.io/soundstake/internal/notification"
	apperrors "soundstake.io/soundstake/internal/pkg/errors"
	"soundstake.io/soundstake/internal/pkg/logger"
	"soundstake.io/soundstake/internal/provider"
	"soundstake.io/soundstake/internal/repository"
	"soundstake.io/soundstake/internal/testutil"
)

func TestMain(m *testing.M) {
	_ = logger.Init("error", "json")
	os.Exit(m.Run())
}

const (
	artistID = "artist-1"
	adminID  = "admin-1"
)

type fixture struct {
	ctx      context.Context
	store    *testutil.MemoryStore
	gateway  *provider.MockPaymentGateway
	files    *provider.MemoryFileStore
	protocol *unlock.Protocol

	mu     sync.Mutex
	events []domain.EventType
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:     context.Background(),
		store:   testutil.NewMemoryStore(),
		gateway: provider.NewMockPaymentGateway(),
		files:   provider.NewMemoryFileStore(),
	}
	f.protocol = unlock.NewProtocol(f.store, f.gateway, f.files, unlock.Config{
		MinFundingPercent:  decimal.NewFromInt(50),
		TransferTimeout:    time.Second,
		TransferStaleAfter: time.Minute,
	})
	f.protocol.SetNotifier(notification.NewTriggers(notification.NewInboxSender(f.store)))

	dispatcher := domain.NewEventDispatcher()
	dispatcher.RegisterAll(func(_ context.Context, e *domain.DomainEvent) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.events = append(f.events, e.EventType)
		return nil
	})
	f.protocol.SetEventDispatcher(dispatcher)

	require.NoError(t, f.store.CreateCampaign(f.ctx, &domain.Campaign{
		ID:          "c-1",
		ArtistID:    artistID,
		Title:       "Debut single",
		SongTitle:   "Night Drive",
		ArtistName:  "The Echoes",
		Duration:    domain.Duration1Year,
		FundingGoal: decimal.NewFromInt(10000),
		Status:      domain.CampaignStatusActive,
		IsActive:    true,
		Milestones: []domain.Milestone{
			{ID: "m-1", Name: "Recording", Amount: decimal.NewFromInt(6000), Order: 1, Status: domain.MilestoneStatusPending},
			{ID: "m-2", Name: "Marketing", Amount: decimal.NewFromInt(4000), Order: 2, Status: domain.MilestoneStatusPending},
		},
		CreatedAt: time.Now().UTC(),
	}))
	return f
}

var contributionSeq int

func (f *fixture) contribute(t *testing.T, amount int64) {
	t.Helper()
	contributionSeq++
	require.NoError(t, f.store.InsertContribution(f.ctx, &domain.Contribution{
		ID:              fmt.Sprintf("contrib-%d", contributionSeq),
		InvestorID:      "investor-1",
		CampaignID:      "c-1",
		Amount:          decimal.NewFromInt(amount),
		Status:          domain.ContributionStatusSuccess,
		TransactionDate: time.Now().UTC(),
		CreatedAt:       time.Now().UTC(),
	}))
}

func (f *fixture) connectDestination(t *testing.T) {
	t.Helper()
	require.NoError(t, f.store.UpsertPayoutDestination(f.ctx, &domain.PayoutDestination{
		ArtistID:    artistID,
		AccountRef:  "acct_123",
		Verified:    true,
		ConnectedAt: time.Now().UTC(),
	}))
}

func (f *fixture) milestone(t *testing.T, id string) domain.Milestone {
	t.Helper()
	c, err := f.store.GetCampaign(f.ctx, "c-1")
	require.NoError(t, err)
	m, ok := c.Milestone(id)
	require.True(t, ok)
	return m
}

func (f *fixture) sawEvent(et domain.EventType) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e == et {
			return true
		}
	}
	return false
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Truef(t, apperrors.HasCode(err, code), "want %s, got %v", code, err)
}

func TestSubmit_Preconditions(t *testing.T) {
	tests := []struct {
		name     string
		artist   string
		campaign string
		raised   int64
		wantCode string
	}{
		{name: "unknown campaign", artist: artistID, campaign: "missing", raised: 6000, wantCode: apperrors.CodeCampaignNotFound},
		{name: "not the owner", artist: "artist-2", campaign: "c-1", raised: 6000, wantCode: apperrors.CodeNotCampaignOwner},
		{name: "below threshold", artist: artistID, campaign: "c-1", raised: 4000, wantCode: apperrors.CodeFundingThresholdNotMet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.contribute(t, tt.raised)
			_, err := f.protocol.SubmitFundUnlockRequest(f.ctx, tt.artist, tt.campaign)
			assertCode(t, err, tt.wantCode)
		})
	}
}

func TestSubmit_InactiveCampaign(t *testing.T) {
	f := newFixture(t)
	f.contribute(t, 6000)
	ok, err := f.store.UpdateCampaignStatus(f.ctx, "c-1", domain.CampaignStatusActive, domain.CampaignStatusRejected)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.protocol.SubmitFundUnlockRequest(f.ctx, artistID, "c-1")
	assertCode(t, err, apperrors.CodeCampaignNotActive)
}

func TestSubmit_DuplicatePending(t *testing.T) {
	f := newFixture(t)
	f.contribute(t, 6000)

	req, err := f.protocol.SubmitFundUnlockRequest(f.ctx, artistID, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "m-1", req.MilestoneID)
	assert.Equal(t, domain.UnlockStatusPending, req.Status)
	assert.True(t, f.sawEvent(domain.EventUnlockRequested))

	_, err = f.protocol.SubmitFundUnlockRequest(f.ctx, artistID, "c-1")
	assertCode(t, err, apperrors.CodeDuplicateRequest)
}

func TestSubmit_ConcurrentOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	f.contribute(t, 6000)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.protocol.SubmitFundUnlockRequest(f.ctx, artistID, "c-1")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assertCode(t, err, apperrors.CodeDuplicateRequest)
	}
	assert.Equal(t, 1, succeeded)

	reqs, err := f.protocol.ListFundUnlockRequests(f.ctx, repository.UnlockRequestFilter{CampaignID: "c-1"})
	require.NoError(t, err)
	assert.Len(t, reqs, 1)
}

func TestStatus_ReportsDerivedView(t *testing.T) {
	f := newFixture(t)
	f.contribute(t, 6000)

	status, err := f.protocol.GetFundUnlockRequestStatus(f.ctx, artistID, "c-1")
	require.NoError(t, err)
	assert.True(t, status.CanRequestUnlock)
	assert.Empty(t, status.BlockingReason)
	require.NotNil(t, status.TargetMilestone)
	assert.Equal(t, "m-1", status.TargetMilestone.ID)
	require.NotNil(t, status.NextMilestone)
	assert.Equal(t, "m-1", status.NextMilestone.ID)
	assert.True(t, status.FundingStats.FundingPercentage.Equal(decimal.NewFromInt(60)))
	assert.True(t, status.Shortfall.IsZero())

	_, err = f.protocol.SubmitFundUnlockRequest(f.ctx, artistID, "c-1")
	require.NoError(t, err)

	status, err = f.protocol.GetFundUnlockRequestStatus(f.ctx, artistID, "c-1")
	require.NoError(t, err)
	assert.False(t, status.CanRequestUnlock)
	assert.Equal(t, apperrors.CodeDuplicateRequest, status.BlockingReason)
	assert.True(t, status.HasPendingRequest)
	require.NotNil(t, status.PendingRequest)
	assert.Equal(t, domain.UnlockStatusPending, status.PendingRequest.Status)
}

// Full lifecycle: first tranche, proof gate, shortfall, second tranche.
func TestLifecycle_TwoMilestones(t *testing.T) {
	f := newFixture(t)
	f.contribute(t, 6000)

	req, err := f.protocol.SubmitFundUnlockRequest(f.ctx, artistID, "c-1")
	require.NoError(t, err)

	_, err = f.protocol.ApproveRejectFundRequest(f.ctx, adminID, req.ID, "approve", "")
	assertCode(t, err, apperrors.CodePayoutDestinationMissing)

	f.connectDestination(t)
	approved, err := f.protocol.ApproveRejectFundRequest(f.ctx, adminID, req.ID, "approved", "looks good")
	require.NoError(t, err)
	assert.Equal(t, domain.UnlockStatusApproved, approved.Status)
	assert.NotEmpty(t, approved.TransferID)
	assert.Equal(t, adminID, approved.AdminID)
	assert.Equal(t, "looks good", approved.AdminResponse)
	require.NotNil(t, approved.RespondedAt)
	assert.True(t, f.milestone(t, "m-1").IsApproved())

	transfers := f.gateway.Requests()
	require.Len(t, transfers, 1)
	assert.Equal(t, req.ID, transfers[0].IdempotencyKey)
	assert.Equal(t, "acct_123", transfers[0].Destination)
	assert.True(t, transfers[0].Amount.Equal(decimal.NewFromInt(6000)))

	ledger := f.store.LedgerEntries()
	require.Len(t, ledger, 1)
	assert.Equal(t, domain.LedgerEntryMilestoneTransfer, ledger[0].Type)
	assert.Equal(t, approved.TransferID, ledger[0].TransferID)
	assert.Equal(t, req.ID, ledger[0].RequestID)

	// next request waits on proof for m-1
	_, err = f.protocol.SubmitFundUnlockRequest(f.ctx, artistID, "c-1")
	assertCode(t, err, apperrors.CodeMilestoneProofRequired)

	proof, err := f.protocol.AddMilestoneProof(f.ctx, unlock.ProofInput{
		ArtistID:    artistID,
		CampaignID:  "c-1",
		MilestoneID: "m-1",
		Description: "Masters delivered",
		ArtifactRef: "s3://proofs/masters.zip",
	})
	require.NoError(t, err)
	_, err = f.protocol.ApproveRejectMilestoneProof(f.ctx, adminID, proof.ID, "approve", "")
	require.NoError(t, err)

	_, err = f.protocol.SubmitFundUnlockRequest(f.ctx, artistID, "c-1")
	assertCode(t, err, apperrors.CodeFundingShortfall)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "4000", appErr.Params["shortfall"])
	assert.True(t, strings.Contains(appErr.Message, "need 4000 more"))

	f.contribute(t, 4000)
	second, err := f.protocol.SubmitFundUnlockRequest(f.ctx, artistID, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "m-2", second.MilestoneID)

	_, err = f.protocol.ApproveRejectFundRequest(f.ctx, adminID, second.ID, "approve", "")
	require.NoError(t, err)
	assert.True(t, f.milestone(t, "m-2").IsApproved())
	assert.Len(t, f.store.LedgerEntries(), 2)
	assert.Equal(t, 2, f.gateway.TransferCount())

	notes, err := f.store.ListNotifications(f.ctx, artistID, 20)
	require.NoError(t, err)
	var types []string
	for _, n := range notes {
		types = append(types, n.Type)
	}
	assert.Contains(t, types, notification.TypeUnlockApproved)
	assert.Contains(t, types, notification.TypeProofReviewed)
	assert.True(t, f.sawEvent(domain.EventUnlockApproved))
}

func TestApprove_DeclinedTransferRevertsToPending(t *testing.T) {
	f := newFixture(t)
	f.contribute(t, 6000)
	f.connectDestination(t)
	req, err := f.protocol.SubmitFundUnlockRequest(f.ctx, artistID, "c-1")
	require.NoError(t, err)

	f.gateway.FailNext(fmt.Errorf("%w: account closed", provider.ErrTransferDeclined))
	_, err = f.protocol.ApproveRejectFundRequest(f.ctx, adminID, req.ID, "approve", "")
	assertCode(t, err, apperrors.CodeTransferFailed)
	assert.False(t, apperrors.IsRetryable(err))

	got, err := f.store.GetUnlockRequest(f.ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UnlockStatusPending, got.Status)
	assert.Empty(t, got.TransferID)
	assert.False(t, f.milestone(t, "m-1").IsApproved())
	assert.Empty(t, f.store.LedgerEntries())
	assert.True(t, f.sawEvent(domain.EventUnlockTransferFailed))

	// retry goes through once the gateway recovers
	approved, err := f.protocol.ApproveRejectFundRequest(f.ctx, adminID, req.ID, "approve", "")
	require.NoError(t, err)
	assert.Equal(t, domain.UnlockStatusApproved, approved.Status)
}

// paidThenTimeoutGateway moves the money but reports a deadline on its first
// call, like a gateway whose response is lost.
type paidThenTimeoutGateway struct {
	*provider.MockPaymentGateway
	mu    sync.Mutex
	calls int
}

func (g *paidThenTimeoutGateway) CreateTransfer(ctx context.Context, req provider.TransferRequest) (provider.TransferResult, error) {
	res, err := g.MockPaymentGateway.CreateTransfer(ctx, req)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.calls == 1 && err == nil {
		return provider.TransferResult{}, context.DeadlineExceeded
	}
	return res, err
}

func TestApprove_UnconfirmedTransferIsNeverPaidTwice(t *testing.T) {
	f := newFixture(t)
	gw := &paidThenTimeoutGateway{MockPaymentGateway: provider.NewMockPaymentGateway()}
	f.protocol = unlock.NewProtocol(f.store, gw, f.files, unlock.Config{
		MinFundingPercent:  decimal.NewFromInt(50),
		TransferTimeout:    time.Second,
		TransferStaleAfter: time.Minute,
	})
	f.contribute(t, 6000)
	f.connectDestination(t)
	req, err := f.protocol.SubmitFundUnlockRequest(f.ctx, artistID, "c-1")
	require.NoError(t, err)

	_, err = f.protocol.ApproveRejectFundRequest(f.ctx, adminID, req.ID, "approve", "")
	assertCode(t, err, apperrors.CodeTransferFailed)
	assert.True(t, apperrors.IsRetryable(err))

	got, err := f.store.GetUnlockRequest(f.ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UnlockStatusTransferring, got.Status)

	// neither reject nor a second approve may touch it
	_, err = f.protocol.ApproveRejectFundRequest(f.ctx, adminID, req.ID, "reject", "try again")
	assertCode(t, err, apperrors.CodeRequestNotPending)
	_, err = f.protocol.ApproveRejectFundRequest(f.ctx, adminID, req.ID, "approve", "")
	assertCode(t, err, apperrors.CodeRequestNotPending)

	// and the artist cannot open a fresh request for the same milestone
	_, err = f.protocol.SubmitFundUnlockRequest(f.ctx, artistID, "c-1")
	assertCode(t, err, apperrors.CodeDuplicateRequest)

	f.store.BackdateUnlockRequest(req.ID, time.Hour)
	n, err := f.protocol.ReconcileStaleTransfers(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err = f.store.GetUnlockRequest(f.ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UnlockStatusApproved, got.Status)
	assert.Equal(t, 1, gw.TransferCount(), "distinct transfers for m-1")
	for _, r := range gw.Requests() {
		assert.Equal(t, req.ID, r.IdempotencyKey)
	}
	assert.Len(t, f.store.LedgerEntries(), 1)
	assert.True(t, f.milestone(t, "m-1").IsApproved())
}

func TestApprove_ConcurrentOnlyOneTransfers(t *testing.T) {
	f := newFixture(t)
	f.contribute(t, 6000)
	f.connectDestination(t)
	req, err := f.protocol.SubmitFundUnlockRequest(f.ctx, artistID, "c-1")
	require.NoError(t, err)
	f.gateway.Delay = 20 * time.Millisecond

	const n = 4
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.protocol.ApproveRejectFundRequest(f.ctx, fmt.Sprintf("admin-%d", i), req.ID, "approve", "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assertCode(t, err, apperrors.CodeRequestNotPending)
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, f.gateway.Requests(), 1)
	assert.Len(t, f.store.LedgerEntries(), 1)
}

func TestReject(t *testing.T) {
	f := newFixture(t)
	f.contribute(t, 6000)
	req, err := f.protocol.SubmitFundUnlockRequest(f.ctx, artistID, "c-1")
	require.NoError(t, err)

	_, err = f.protocol.ApproveRejectFundRequest(f.ctx, adminID, req.ID, "maybe", "")
	assertCode(t, err, apperrors.CodeInvalidDecision)

	_, err = f.protocol.ApproveRejectFundRequest(f.ctx, adminID, "missing", "reject", "")
	assertCode(t, err, apperrors.CodeUnlockRequestNotFound)

	rejected, err := f.protocol.ApproveRejectFundRequest(f.ctx, adminID, req.ID, "reject", "needs a budget breakdown")
	require.NoError(t, err)
	assert.Equal(t, domain.UnlockStatusRejected, rejected.Status)
	assert.Equal(t, "needs a budget breakdown", rejected.AdminResponse)
	assert.Zero(t, f.gateway.TransferCount())

	_, err = f.protocol.ApproveRejectFundRequest(f.ctx, adminID, req.ID, "approve", "")
	assertCode(t, err, apperrors.CodeRequestNotPending)

	// a rejected request no longer blocks a new one
	_, err = f.protocol.SubmitFundUnlockRequest(f.ctx, artistID, "c-1")
	require.NoError(t, err)

	var actions []string
	for _, a := range f.store.AuditLogs() {
		actions = append(actions, a.Action)
	}
	assert.Contains(t, actions, "unlock_request.rejected")
}

func TestReconcileStaleTransfers(t *testing.T) {
	f := newFixture(t)
	f.contribute(t, 6000)
	f.connectDestination(t)
	req, err := f.protocol.SubmitFundUnlockRequest(f.ctx, artistID, "c-1")
	require.NoError(t, err)

	// simulate a crash after the transfer went out but before finalize
	ok, err := f.store.TransitionUnlockRequest(f.ctx, req.ID, domain.UnlockStatusPending, repository.UnlockRequestUpdate{
		Status:  domain.UnlockStatusTransferring,
		AdminID: adminID,
	})
	require.NoError(t, err)
	require.True(t, ok)
	_, err = f.gateway.CreateTransfer(f.ctx, provider.TransferRequest{
		Destination:    "acct_123",
		Amount:         decimal.NewFromInt(6000),
		IdempotencyKey: req.ID,
	})
	require.NoError(t, err)

	// still fresh: left alone
	n, err := f.protocol.ReconcileStaleTransfers(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.store.BackdateUnlockRequest(req.ID, time.Hour)
	n, err = f.protocol.ReconcileStaleTransfers(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.store.GetUnlockRequest(f.ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UnlockStatusApproved, got.Status)
	assert.Equal(t, 1, f.gateway.TransferCount())
	assert.True(t, f.milestone(t, "m-1").IsApproved())
	assert.Len(t, f.store.LedgerEntries(), 1)
}

func TestReconcileStaleTransfers_Failure(t *testing.T) {
	tests := []struct {
		name       string
		gatewayErr error
		wantStatus domain.UnlockRequestStatus
	}{
		{name: "unconfirmed stays transferring", gatewayErr: errors.New("connection reset"), wantStatus: domain.UnlockStatusTransferring},
		{name: "declined reverts", gatewayErr: fmt.Errorf("%w: account closed", provider.ErrTransferDeclined), wantStatus: domain.UnlockStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.contribute(t, 6000)
			f.connectDestination(t)
			req, err := f.protocol.SubmitFundUnlockRequest(f.ctx, artistID, "c-1")
			require.NoError(t, err)

			_, err = f.store.TransitionUnlockRequest(f.ctx, req.ID, domain.UnlockStatusPending, repository.UnlockRequestUpdate{
				Status: domain.UnlockStatusTransferring,
			})
			require.NoError(t, err)
			f.store.BackdateUnlockRequest(req.ID, time.Hour)
			f.gateway.FailNext(tt.gatewayErr)

			n, err := f.protocol.ReconcileStaleTransfers(f.ctx)
			require.NoError(t, err)
			assert.Zero(t, n)

			got, err := f.store.GetUnlockRequest(f.ctx, req.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Empty(t, f.store.LedgerEntries())
		})
	}
}

func TestAddMilestoneProof(t *testing.T) {
	f := newFixture(t)
	f.contribute(t, 6000)
	f.connectDestination(t)

	input := unlock.ProofInput{
		ArtistID:    artistID,
		CampaignID:  "c-1",
		MilestoneID: "m-1",
		Description: "Masters delivered",
		ArtifactRef: "s3://proofs/masters.zip",
	}

	_, err := f.protocol.AddMilestoneProof(f.ctx, input)
	assertCode(t, err, apperrors.CodeMilestoneNotApproved)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.HTTPStatus)

	unknown := input
	unknown.MilestoneID = "m-9"
	_, err = f.protocol.AddMilestoneProof(f.ctx, unknown)
	assertCode(t, err, apperrors.CodeMilestoneNotFound)

	req, err := f.protocol.SubmitFundUnlockRequest(f.ctx, artistID, "c-1")
	require.NoError(t, err)
	_, err = f.protocol.ApproveRejectFundRequest(f.ctx, adminID, req.ID, "approve", "")
	require.NoError(t, err)

	uploaded := input
	uploaded.ArtifactRef = ""
	uploaded.Artifact = strings.NewReader("wav bytes")
	uploaded.ArtifactName = "masters.wav"
	proof, err := f.protocol.AddMilestoneProof(f.ctx, uploaded)
	require.NoError(t, err)
	assert.Equal(t, domain.ProofStatusPending, proof.Status)
	body, ok := f.files.Get(proof.Proof)
	require.True(t, ok)
	assert.Equal(t, "wav bytes", string(body))

	_, err = f.protocol.AddMilestoneProof(f.ctx, input)
	assertCode(t, err, apperrors.CodeProofAlreadySubmitted)

	// a refused upload stores nothing
	again := uploaded
	again.Artifact = strings.NewReader("second take")
	_, err = f.protocol.AddMilestoneProof(f.ctx, again)
	assertCode(t, err, apperrors.CodeProofAlreadySubmitted)
	assert.Equal(t, 1, f.files.Len())

	rejected, err := f.protocol.ApproveRejectMilestoneProof(f.ctx, adminID, proof.ID, "reject", "blurry scan")
	require.NoError(t, err)
	assert.Equal(t, domain.ProofStatusRejected, rejected.Status)

	_, err = f.protocol.ApproveRejectMilestoneProof(f.ctx, adminID, proof.ID, "approve", "")
	assertCode(t, err, apperrors.CodeProofNotPending)

	resubmitted, err := f.protocol.AddMilestoneProof(f.ctx, input)
	require.NoError(t, err)
	assert.Equal(t, proof.ID, resubmitted.ID)
	assert.Equal(t, domain.ProofStatusPending, resubmitted.Status)
	assert.Empty(t, resubmitted.AdminResponse)
	assert.Equal(t, "s3://proofs/masters.zip", resubmitted.Proof)

	proofs, err := f.protocol.ListMilestoneProofs(f.ctx, artistID, "c-1")
	require.NoError(t, err)
	assert.Len(t, proofs, 1)

	_, err = f.protocol.ListMilestoneProofs(f.ctx, "artist-2", "c-1")
	assertCode(t, err, apperrors.CodeNotCampaignOwner)
}

func TestApproveRejectMilestoneProof_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.protocol.ApproveRejectMilestoneProof(f.ctx, adminID, "missing", "approve", "")
	assertCode(t, err, apperrors.CodeProofNotFound)

	_, err = f.protocol.ApproveRejectMilestoneProof(f.ctx, adminID, "missing", "shrug", "")
	assertCode(t, err, apperrors.CodeInvalidDecision)
}

func TestAddMilestoneProof_RequiresArtifact(t *testing.T) {
	f := newFixture(t)
	_, err := f.protocol.AddMilestoneProof(f.ctx, unlock.ProofInput{
		ArtistID:    artistID,
		CampaignID:  "c-1",
		MilestoneID: "m-1",
		Description: "done",
	})
	assertCode(t, err, apperrors.CodeValidationFailed)
}
