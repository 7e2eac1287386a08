package services

import (
	"context"
	"errors"
	"testing"

	"eventapp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to+"|"+subject)
	return nil
}

type fakeRenderer struct{}

func (fakeRenderer) Render(name string, data any) (string, string, string, error) {
	d := data.(*domain.StatusChangeEmailData)
	return name + ":" + string(d.NewStatus), "<p>" + d.Message + "</p>", d.Message, nil
}

func notificationFor(name string, email *string) domain.Notification {
	e := &domain.Event{ID: "ev-1", Name: "Meetup", Status: domain.StatusCanceled}
	return domain.NewNotification(e, domain.NewParticipant(name, email), domain.StatusScheduled, domain.StatusCanceled)
}

func TestNotificationDispatcher_Dispatch(t *testing.T) {
	ok := &recordingSink{}
	broken := &recordingSink{err: errors.New("bus down")}
	d := NewNotificationDispatcher(discardLogger(), broken, ok)

	failed := d.Dispatch(context.Background(), []domain.Notification{
		notificationFor("alice", nil),
		notificationFor("bob", nil),
	})
	assert.Equal(t, 2, failed)
	require.Len(t, ok.delivered, 2)
	assert.Equal(t, "bob", ok.delivered[1].Participant.Name)

	assert.Zero(t, NewNotificationDispatcher(discardLogger()).Dispatch(context.Background(), nil))
}

func TestEmailNotificationSink(t *testing.T) {
	mailer := &fakeMailer{}
	sink := NewEmailNotificationSink(NewEmailService(mailer, fakeRenderer{}, discardLogger()))
	email := "alice@example.com"
	blank := " "

	require.NoError(t, sink.Deliver(context.Background(), notificationFor("alice", &email)))
	require.NoError(t, sink.Deliver(context.Background(), notificationFor("bob", nil)))
	require.NoError(t, sink.Deliver(context.Background(), notificationFor("carol", &blank)))
	assert.Equal(t, []string{"alice@example.com|status_change:CANCELED"}, mailer.sent)

	mailer.err = errors.New("ses throttled")
	require.Error(t, sink.Deliver(context.Background(), notificationFor("alice", &email)))
}

func TestEmailService_NilData(t *testing.T) {
	svc := NewEmailService(&fakeMailer{}, fakeRenderer{}, discardLogger())
	require.Error(t, svc.SendStatusChange(context.Background(), nil))
}
