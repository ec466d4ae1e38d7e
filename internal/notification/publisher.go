package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"soundstake.io/soundstake/internal/domain"
	"soundstake.io/soundstake/internal/pkg/logger"
)

// Publisher sends raw messages to a subject.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// EventForwarder republishes domain events on a message bus.
// Subjects are <prefix>.<aggregate_type>.<event_type>, lowercased.
type EventForwarder struct {
	pub    Publisher
	prefix string
}

// NewEventForwarder creates a forwarder. An empty prefix defaults to "soundstake".
func NewEventForwarder(pub Publisher, prefix string) *EventForwarder {
	if prefix == "" {
		prefix = "soundstake"
	}
	return &EventForwarder{pub: pub, prefix: prefix}
}

// Subject returns the subject an event is published on.
func (f *EventForwarder) Subject(event *domain.DomainEvent) string {
	return strings.ToLower(fmt.Sprintf("%s.%s.%s", f.prefix, event.AggregateType, event.EventType))
}

// Handle is a domain.EventHandler.
func (f *EventForwarder) Handle(_ context.Context, event *domain.DomainEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.EventID, err)
	}
	subject := f.Subject(event)
	if err := f.pub.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	logger.Debug("Domain event published",
		zap.String("subject", subject),
		zap.String("event_id", event.EventID),
	)
	return nil
}

// ConnectNATS opens a NATS connection that reconnects forever.
func ConnectNATS(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("soundstake"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return nc, nil
}

var _ Publisher = (*nats.Conn)(nil)
