package services

import (
	"context"
	"log/slog"

	"eventapp/internal/domain"
)

// NotificationDispatcher hands the notifications produced by a transition to every configured sink.
// Delivery is best effort: a failing sink is logged and never fails the transition.
type NotificationDispatcher struct {
	logger *slog.Logger
	sinks  []domain.NotificationSink
}

// NewNotificationDispatcher returns a dispatcher over sinks. With no sinks, notifications are only logged.
func NewNotificationDispatcher(logger *slog.Logger, sinks ...domain.NotificationSink) *NotificationDispatcher {
	return &NotificationDispatcher{logger: logger, sinks: sinks}
}

// Dispatch delivers notifications in order and returns how many sink deliveries failed.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, notifications []domain.Notification) int {
	failed := 0
	for _, n := range notifications {
		d.logger.InfoContext(ctx, n.Message, "event_id", n.EventID, "status", n.NewStatus)
		for _, sink := range d.sinks {
			if err := sink.Deliver(ctx, n); err != nil {
				failed++
				d.logger.WarnContext(ctx, "notification delivery failed",
					"event", n.EventName, "participant", n.Participant.Name, "err", err)
			}
		}
	}
	return failed
}
