package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// EventStatus is the lifecycle tag of an event. It is stored as the event_status discriminator.
type EventStatus string

const (
	StatusScheduled EventStatus = "SCHEDULED"
	StatusPast      EventStatus = "PAST"
	StatusCanceled  EventStatus = "CANCELED"
	StatusArchived  EventStatus = "ARCHIVED"
)

// Statuses lists every lifecycle status in declaration order.
var Statuses = []EventStatus{StatusScheduled, StatusPast, StatusCanceled, StatusArchived}

// Valid reports whether s is one of the four lifecycle statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusPast, StatusCanceled, StatusArchived:
		return true
	}
	return false
}

// ParseEventStatus converts a case-insensitive status name into an EventStatus.
func ParseEventStatus(s string) (EventStatus, error) {
	status := EventStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", invalidArgument("unknown status %q", s)
	}
	return status, nil
}

// Cost bounds, inclusive.
const (
	MinCost = 0.0
	MaxCost = 999.0
)

// EventType groups events under a shared, name-keyed type.
// swagger:model EventType
type EventType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Location is owned by a single event and created/destroyed with it.
// Latitude and longitude are kept as returned by the lookup service.
// swagger:model Location
type Location struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  *string `json:"latitude,omitempty"`
	Longitude *string `json:"longitude,omitempty"`
}

// Participant is identified by name across the store.
// swagger:model Participant
type Participant struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
}

// NewParticipant returns a participant with the given name and optional email. ID is set on persist.
func NewParticipant(name string, email *string) *Participant {
	return &Participant{Name: name, Email: email}
}

// Event is a single lifecycle record. Status selects the variant; the transition functions in
// transition.go are the only way to move an event between statuses.
// swagger:model Event
type Event struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Cost         float64        `json:"cost"`
	Date         time.Time      `json:"date"`
	Type         *EventType     `json:"type"`
	Participants []*Participant `json:"participants"`
	Location     *Location      `json:"location,omitempty"`
	Status       EventStatus    `json:"status"`
}

// NewScheduledEvent returns an unpersisted SCHEDULED event. Inputs are assumed already validated.
func NewScheduledEvent(name, description string, date time.Time, typeName string, cost float64, location *Location) *Event {
	return &Event{
		Name:         name,
		Description:  description,
		Cost:         cost,
		Date:         date,
		Type:         &EventType{Name: typeName},
		Participants: []*Participant{},
		Location:     location,
		Status:       StatusScheduled,
	}
}

// HasParticipant reports whether a participant with the given name is enrolled.
func (e *Event) HasParticipant(name string) bool {
	for _, p := range e.Participants {
		if p.Name == name {
			return true
		}
	}
	return false
}

// AddParticipant enrolls p unless a participant with the same name is already enrolled.
// It returns false when p was skipped.
func (e *Event) AddParticipant(p *Participant) bool {
	if e.HasParticipant(p.Name) {
		return false
	}
	e.Participants = append(e.Participants, p)
	return true
}

// clone copies e into a new value with its own participant slice and location.
// Participants and the event type are shared references.
func (e *Event) clone() *Event {
	out := *e
	out.Participants = make([]*Participant, len(e.Participants))
	copy(out.Participants, e.Participants)
	if e.Location != nil {
		loc := *e.Location
		out.Location = &loc
	}
	return &out
}

func (e *Event) String() string {
	return fmt.Sprintf("%s {id=%q name=%q date=%s cost=%.2f}", e.Status, e.ID, e.Name, e.Date.Format("02/01/2006"), e.Cost)
}

// ValidateCost checks the inclusive [MinCost, MaxCost] range. NaN is outside every range.
func ValidateCost(cost float64) error {
	if !(cost >= MinCost && cost <= MaxCost) {
		return invalidArgument("cost '%v' is not between 0 and 999 (inclusive)", cost)
	}
	return nil
}

// CheckScheduleWindow checks that date lies strictly between now and one year after now.
func CheckScheduleWindow(date, now time.Time) error {
	limit := now.AddDate(1, 0, 0)
	if !date.After(now) || !date.Before(limit) {
		return fmt.Errorf("%w: %s is in the past or later than one year", ErrInvalidDate, date.Format("02/01/2006"))
	}
	return nil
}

// EventRepository persists events together with their type, location and participant links.
// Every method runs in its own transaction.
type EventRepository interface {
	// Persist writes the event row. New events (empty ID) fail with ErrDuplicateName when the name is taken.
	Persist(ctx context.Context, event *Event) error
	// PersistWithParticipants upserts participants by name and replaces the event's links, then writes the event.
	PersistWithParticipants(ctx context.Context, event *Event) error
	// PersistTransition is the status-changing save: row, links and discriminator in one statement set.
	PersistTransition(ctx context.Context, event *Event, status EventStatus) error
	ExistsWithName(ctx context.Context, name string) (bool, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	GetWithParticipants(ctx context.Context, id string) (*Event, error)
	// ListByStatus returns events (with participants) filtered by status; empty status returns all.
	ListByStatus(ctx context.Context, status EventStatus) ([]*Event, error)
}

// EventTypeRepository stores name-keyed event types.
type EventTypeRepository interface {
	GetOrCreate(ctx context.Context, name string) (*EventType, error)
	List(ctx context.Context) ([]*EventType, error)
}

// ParticipantRepository stores participants with upsert-by-name semantics.
type ParticipantRepository interface {
	// Persist inserts p or reuses the existing row with the same name, and sets p.ID.
	Persist(ctx context.Context, p *Participant) (string, error)
	GetByName(ctx context.Context, name string) (*Participant, error)
	GetByID(ctx context.Context, id string) (*Participant, error)
}

// CreateEventInput carries raw creation input; the date is the user-supplied dd/MM/yyyy string.
type CreateEventInput struct {
	Name        string
	Description string
	Date        string
	Type        string
	Cost        float64
	Location    *Location
}

// EventService is the event handler: validation, transitions, refresh and persistence orchestration.
type EventService interface {
	CreateEvent(ctx context.Context, in CreateEventInput) (*Event, error)
	SaveEvent(ctx context.Context, event *Event) error
	AddParticipants(ctx context.Context, event *Event, participants []*Participant) error
	UpdateEventStatus(ctx context.Context, event *Event, status EventStatus, date *time.Time) (*Event, error)
	ChangeStatus(ctx context.Context, eventID string, status EventStatus, date *time.Time) (*Event, error)
	RefreshEvents(ctx context.Context) (int, error)
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	ListEvents(ctx context.Context, status EventStatus) ([]*Event, error)
	ListEventTypes(ctx context.Context) ([]*EventType, error)
	FindParticipant(ctx context.Context, name string) (*Participant, error)
	ResolveLocation(ctx context.Context, query string) *Location
	ParseDate(s string) (time.Time, error)
	// SetCurrentDate moves the simulated date and refreshes events, returning the date and the moved count.
	SetCurrentDate(ctx context.Context, s string) (time.Time, int, error)
}
