// Package notification implements the in-app notification inbox.
//
// Notifications are synchronous DB writes issued after the business
// transaction commits. A failed write is logged, never silently dropped.
//
// Import Path: soundstake.io/soundstake/internal/notification
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"soundstake.io/soundstake/internal/pkg/logger"
	"soundstake.io/soundstake/internal/repository"
)

// Notification types.
const (
	TypeCampaignReviewed = "CAMPAIGN_REVIEWED"
	TypeUnlockApproved   = "UNLOCK_APPROVED"
	TypeUnlockRejected   = "UNLOCK_REJECTED"
	TypeTransferFailed   = "UNLOCK_TRANSFER_FAILED"
	TypeProofReviewed    = "PROOF_REVIEWED"
	TypePayoutReceived   = "PAYOUT_RECEIVED"
)

var knownTypes = map[string]struct{}{
	TypeCampaignReviewed: {},
	TypeUnlockApproved:   {},
	TypeUnlockRejected:   {},
	TypeTransferFailed:   {},
	TypeProofReviewed:    {},
	TypePayoutReceived:   {},
}

// Params holds the required fields for creating a notification.
type Params struct {
	RecipientID  string // User ID of the recipient
	Type         string // One of Type* constants above
	Title        string
	Message      string
	ResourceType string // e.g. "fund_unlock_request", "campaign"
	ResourceID   string
}

// Sender defines the interface for sending notifications.
type Sender interface {
	// Send creates a notification for a single recipient.
	Send(ctx context.Context, params Params) error

	// SendToMany creates notifications for multiple recipients.
	// Best-effort: logs errors but does not abort on individual failures.
	SendToMany(ctx context.Context, recipientIDs []string, params Params) error
}

// Writer is the persistence the inbox needs.
type Writer interface {
	InsertNotification(ctx context.Context, n *repository.Notification) error
}

// InboxSender writes notifications to the database.
type InboxSender struct {
	store Writer
}

// NewInboxSender creates a new inbox sender.
func NewInboxSender(store Writer) *InboxSender {
	return &InboxSender{store: store}
}

// Send stores a single notification to the database.
func (s *InboxSender) Send(ctx context.Context, params Params) error {
	if err := validateParams(params); err != nil {
		return fmt.Errorf("notification params invalid: %w", err)
	}

	err := s.store.InsertNotification(ctx, &repository.Notification{
		ID:           uuid.NewString(),
		UserID:       params.RecipientID,
		Type:         params.Type,
		Title:        params.Title,
		Message:      params.Message,
		ResourceType: params.ResourceType,
		ResourceID:   params.ResourceID,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("create notification for user %s: %w", params.RecipientID, err)
	}

	logger.Debug("notification sent",
		zap.String("recipient", params.RecipientID),
		zap.String("type", params.Type),
		zap.String("title", params.Title),
	)

	return nil
}

// SendToMany creates notifications for multiple recipients (best-effort).
// Failures are logged but do not prevent delivery to other recipients.
func (s *InboxSender) SendToMany(ctx context.Context, recipientIDs []string, params Params) error {
	if len(recipientIDs) == 0 {
		return nil
	}

	var failCount int
	for _, recipientID := range recipientIDs {
		p := params
		p.RecipientID = recipientID
		if err := s.Send(ctx, p); err != nil {
			failCount++
			logger.Error("notification delivery failed",
				zap.String("recipient", recipientID),
				zap.String("type", params.Type),
				zap.Error(err),
			)
		}
	}

	if failCount > 0 {
		return fmt.Errorf("notification delivery failed for %d/%d recipients", failCount, len(recipientIDs))
	}
	return nil
}

var _ Sender = (*InboxSender)(nil)

func validateParams(p Params) error {
	if p.RecipientID == "" {
		return fmt.Errorf("recipient_id is required")
	}
	if _, ok := knownTypes[p.Type]; !ok {
		return fmt.Errorf("unknown notification type: %s", p.Type)
	}
	if p.Title == "" {
		return fmt.Errorf("title is required")
	}
	if p.Message == "" {
		return fmt.Errorf("message is required")
	}
	return nil
}
