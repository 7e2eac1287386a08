package domain

import (
	"context"
	"fmt"
	"strings"
)

// ArchiveNotificationPolicy decides whether participants hear about an archive before being removed.
type ArchiveNotificationPolicy int

const (
	// ClearParticipantsFirst empties the participant list before collecting notification targets,
	// so archiving never notifies anyone. This is the default.
	ClearParticipantsFirst ArchiveNotificationPolicy = iota
	// NotifyBeforeClear notifies the enrolled participants, then empties the list.
	NotifyBeforeClear
)

// ParseArchiveNotificationPolicy accepts "clear-first" (or empty) and "notify-first".
func ParseArchiveNotificationPolicy(s string) (ArchiveNotificationPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clear-first":
		return ClearParticipantsFirst, nil
	case "notify-first":
		return NotifyBeforeClear, nil
	}
	return ClearParticipantsFirst, invalidArgument("unknown archive notification policy %q", s)
}

func (p ArchiveNotificationPolicy) String() string {
	if p == NotifyBeforeClear {
		return "notify-first"
	}
	return "clear-first"
}

// Notification is one status-change message addressed to one participant.
// swagger:model Notification
type Notification struct {
	EventID     string       `json:"event_id"`
	EventName   string       `json:"event_name"`
	Participant *Participant `json:"participant"`
	OldStatus   EventStatus  `json:"old_status"`
	NewStatus   EventStatus  `json:"new_status"`
	Message     string       `json:"message"`
}

// NewNotification builds the message a participant produces when told about a status change.
func NewNotification(e *Event, p *Participant, oldStatus, newStatus EventStatus) Notification {
	return Notification{
		EventID:     e.ID,
		EventName:   e.Name,
		Participant: p,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		Message:     fmt.Sprintf("%s: the event %s has updated its status to %s", p.Name, e.Name, newStatus),
	}
}

// NotificationSink delivers a notification somewhere outside the process (mail, message bus).
type NotificationSink interface {
	Deliver(ctx context.Context, n Notification) error
}
