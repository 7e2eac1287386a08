package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventapp/internal/domain"
)

type fakeConn struct {
	msgs []*nats.Msg
	err  error
}

func (f *fakeConn) PublishMsg(m *nats.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, m)
	return nil
}

func TestPublisher_Deliver(t *testing.T) {
	conn := &fakeConn{}
	p := newPublisher(conn, "", slog.New(slog.NewTextHandler(io.Discard, nil)))
	fixed := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	e := &domain.Event{ID: "ev-1", Name: "Meetup", Status: domain.StatusCanceled}
	n := domain.NewNotification(e, domain.NewParticipant("alice", nil), domain.StatusScheduled, domain.StatusCanceled)
	require.NoError(t, p.Deliver(context.Background(), n))

	require.Len(t, conn.msgs, 1)
	got := conn.msgs[0]
	assert.Equal(t, "events.ev-1.status", got.Subject)

	var body Message
	require.NoError(t, json.Unmarshal(got.Data, &body))
	assert.Equal(t, "alice", body.Participant)
	assert.Equal(t, domain.StatusCanceled, body.NewStatus)
	assert.Equal(t, "alice: the event Meetup has updated its status to CANCELED", body.Text)
	assert.Equal(t, fixed, body.PublishedAt)
	assert.Equal(t, body.ID, got.Header.Get(nats.MsgIdHdr))
	_, err := uuid.Parse(body.ID)
	assert.NoError(t, err)
}

func TestPublisher_DeliverError(t *testing.T) {
	p := newPublisher(&fakeConn{err: errors.New("nats: connection closed")}, "lifecycle", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, "lifecycle.ev-9.status", p.Subject("ev-9"))

	err := p.Deliver(context.Background(), domain.Notification{EventID: "ev-9"})
	require.Error(t, err)
}
