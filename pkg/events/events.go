// Package events publishes report lifecycle notifications for downstream
// consumers (push notifications, analytics).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	SubjectReportCreated       = "reports.created"
	SubjectReportStatusChanged = "reports.status_changed"
	SubjectReportDeleted       = "reports.deleted"
)

// ReportEvent is the payload of every report subject.
type ReportEvent struct {
	ReportID   string    `json:"report_id"`
	AuthorID   string    `json:"author_id,omitempty"`
	ActorID    string    `json:"actor_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, subject string, event ReportEvent) error
	Close()
}

// NATSPublisher publishes JSON events on a NATS connection.
type NATSPublisher struct {
	conn *nats.Conn
	log  *zap.Logger
}

func NewNATSPublisher(url string, log *zap.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("civic-report-api"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}

	return &NATSPublisher{conn: conn, log: log.With(zap.String("component", "events"))}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, event ReportEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", subject, err)
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	p.log.Debug("Event published",
		zap.String("subject", subject),
		zap.String("report_id", event.ReportID),
	)
	return nil
}

func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.log.Warn("Failed to drain NATS connection", zap.Error(err))
	}
}

// NopPublisher drops events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, subject string, event ReportEvent) error {
	return nil
}

func (NopPublisher) Close() {}
