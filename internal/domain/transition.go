package domain

import (
	"fmt"
	"time"
)

// allowedTransitions maps a source status to the statuses it may move to.
var allowedTransitions = map[EventStatus]map[EventStatus]bool{
	StatusScheduled: {StatusCanceled: true, StatusPast: true, StatusArchived: true},
	StatusPast:      {StatusScheduled: true, StatusArchived: true},
	StatusCanceled:  {StatusScheduled: true, StatusArchived: true},
	StatusArchived:  {},
}

// CanTransition reports whether an event in status from may move to status to.
func CanTransition(from, to EventStatus) bool {
	return allowedTransitions[from][to]
}

// TransitionResult is the new event plus the notifications the caller must dispatch.
type TransitionResult struct {
	Event         *Event
	Notifications []Notification
}

// Transition moves e to status to. The source event is never modified.
// date is required when to is SCHEDULED and is checked against the window ending one year after now.
func Transition(e *Event, to EventStatus, date *time.Time, now time.Time, policy ArchiveNotificationPolicy) (*TransitionResult, error) {
	if e == nil {
		return nil, invalidArgument("event is nil")
	}
	if !to.Valid() {
		return nil, invalidArgument("unknown status %q", to)
	}
	if !CanTransition(e.Status, to) {
		return nil, fmt.Errorf("%w: %s event %q cannot become %s", ErrInvalidTransition, e.Status, e.Name, to)
	}

	switch to {
	case StatusScheduled:
		if date == nil {
			return nil, invalidArgument("date is required to reschedule event %q", e.Name)
		}
		if err := CheckScheduleWindow(*date, now); err != nil {
			return nil, err
		}
		next := e.clone()
		next.Date = *date
		next.Status = StatusScheduled
		return &TransitionResult{Event: next, Notifications: []Notification{}}, nil
	case StatusArchived:
		next := e.clone()
		next.Status = StatusArchived
		var notes []Notification
		if policy == NotifyBeforeClear {
			notes = notify(next, e.Status)
			next.Participants = []*Participant{}
		} else {
			next.Participants = []*Participant{}
			notes = notify(next, e.Status)
		}
		return &TransitionResult{Event: next, Notifications: notes}, nil
	default:
		next := e.clone()
		next.Status = to
		return &TransitionResult{Event: next, Notifications: notify(next, e.Status)}, nil
	}
}

// notify collects one notification per participant currently enrolled in e.
func notify(e *Event, oldStatus EventStatus) []Notification {
	notes := make([]Notification, 0, len(e.Participants))
	for _, p := range e.Participants {
		notes = append(notes, NewNotification(e, p, oldStatus, e.Status))
	}
	return notes
}

// Cancel moves a SCHEDULED event to CANCELED.
func Cancel(e *Event) (*TransitionResult, error) {
	return Transition(e, StatusCanceled, nil, time.Time{}, ClearParticipantsFirst)
}

// Happen moves a SCHEDULED event to PAST.
func Happen(e *Event) (*TransitionResult, error) {
	return Transition(e, StatusPast, nil, time.Time{}, ClearParticipantsFirst)
}

// Archive moves any non-archived event to ARCHIVED and drops its participants.
func Archive(e *Event, policy ArchiveNotificationPolicy) (*TransitionResult, error) {
	return Transition(e, StatusArchived, nil, time.Time{}, policy)
}

// Reschedule moves a PAST or CANCELED event back to SCHEDULED on date.
func Reschedule(e *Event, date, now time.Time) (*TransitionResult, error) {
	return Transition(e, StatusScheduled, &date, now, ClearParticipantsFirst)
}
