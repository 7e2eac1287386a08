// Package natsbus publishes status-change notifications on NATS subjects.
package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"eventapp/internal/domain"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "events"

// msgPublisher is the part of *nats.Conn the publisher needs.
type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// Message is the JSON body of a published notification.
type Message struct {
	ID          string             `json:"id"`
	EventID     string             `json:"event_id"`
	EventName   string             `json:"event_name"`
	Participant string             `json:"participant"`
	OldStatus   domain.EventStatus `json:"old_status"`
	NewStatus   domain.EventStatus `json:"new_status"`
	Text        string             `json:"text"`
	PublishedAt time.Time          `json:"published_at"`
}

// Publisher is a domain.NotificationSink that publishes each notification on <prefix>.<eventID>.status.
type Publisher struct {
	conn   msgPublisher
	nc     *nats.Conn
	prefix string
	now    func() time.Time
	logger *slog.Logger
}

// Connect dials NATS and returns a publisher on it. Close releases the connection.
func Connect(url, prefix string, logger *slog.Logger) (*Publisher, error) {
	nc, err := nats.Connect(
		url,
		nats.Name("eventapp"),
		nats.Timeout(10*time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	p := newPublisher(nc, prefix, logger)
	p.nc = nc
	return p, nil
}

func newPublisher(conn msgPublisher, prefix string, logger *slog.Logger) *Publisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Publisher{conn: conn, prefix: prefix, now: time.Now, logger: logger}
}

// Subject returns the subject notifications of eventID are published on.
func (p *Publisher) Subject(eventID string) string {
	return fmt.Sprintf("%s.%s.status", p.prefix, eventID)
}

func (p *Publisher) Deliver(ctx context.Context, n domain.Notification) error {
	msg := Message{
		ID:          uuid.NewString(),
		EventID:     n.EventID,
		EventName:   n.EventName,
		OldStatus:   n.OldStatus,
		NewStatus:   n.NewStatus,
		Text:        n.Message,
		PublishedAt: p.now().UTC(),
	}
	if n.Participant != nil {
		msg.Participant = n.Participant.Name
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	out := nats.NewMsg(p.Subject(n.EventID))
	out.Data = data
	out.Header.Set(nats.MsgIdHdr, msg.ID)
	if err := p.conn.PublishMsg(out); err != nil {
		return fmt.Errorf("failed to publish notification to NATS: %w", err)
	}
	p.logger.DebugContext(ctx, "notification published", "subject", out.Subject, "id", msg.ID)
	return nil
}

// Close drains and closes the connection opened by Connect.
func (p *Publisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
	}
}
