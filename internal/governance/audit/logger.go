// Package audit implements the audit logging service.
//
// Audit logs are append-only compliance records. Every funding decision
// (campaign review, unlock approval, proof review, revenue distribution)
// produces one. Hard-delete is NOT allowed.
//
// Import Path: soundstake.io/soundstake/internal/governance/audit
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"soundstake.io/soundstake/internal/pkg/logger"
	"soundstake.io/soundstake/internal/repository"
)

// Writer is the persistence the logger needs.
type Writer interface {
	InsertAuditLog(ctx context.Context, entry *repository.AuditLog) error
}

// Logger writes audit records to the database.
type Logger struct {
	store Writer
	now   func() time.Time
}

// NewLogger creates a new audit Logger.
func NewLogger(store Writer) *Logger {
	return &Logger{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// LogAction records an auditable action.
func (l *Logger) LogAction(ctx context.Context, action, resourceType, resourceID, actor string, details map[string]interface{}) error {
	if l == nil || l.store == nil {
		return nil
	}
	err := l.store.InsertAuditLog(ctx, &repository.AuditLog{
		ID:           generateAuditID(),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Actor:        actor,
		Details:      details,
		CreatedAt:    l.now(),
	})
	if err != nil {
		logger.Error("Failed to write audit log",
			zap.String("action", action),
			zap.String("resource_type", resourceType),
			zap.String("resource_id", resourceID),
			zap.Error(err),
		)
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// LogUnlockDecision records an admin decision on a fund unlock request.
func (l *Logger) LogUnlockDecision(ctx context.Context, requestID, decision, actor string, details map[string]interface{}) error {
	return l.LogAction(ctx, "unlock_request."+decision, "fund_unlock_request", requestID, actor, details)
}

// LogProofDecision records an admin decision on a milestone proof.
func (l *Logger) LogProofDecision(ctx context.Context, proofID, decision, actor string) error {
	return l.LogAction(ctx, "milestone_proof."+decision, "milestone_proof", proofID, actor, map[string]interface{}{
		"decision": decision,
	})
}

// LogCampaignAction records a campaign lifecycle action.
func (l *Logger) LogCampaignAction(ctx context.Context, operation, campaignID, actor string, details map[string]interface{}) error {
	return l.LogAction(ctx, "campaign."+operation, "campaign", campaignID, actor, details)
}

func generateAuditID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return fmt.Sprintf("audit-%s", id.String())
}
