package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventapp/internal/clock"
	"eventapp/internal/domain"
)

// settableClock is implemented by clocks whose current date can be moved, such as clock.Simulated.
type settableClock interface {
	clock.Clock
	SetCurrentDate(date string) (time.Time, error)
}

type eventService struct {
	eventRepo       domain.EventRepository
	eventTypeRepo   domain.EventTypeRepository
	participantRepo domain.ParticipantRepository
	dispatcher      *NotificationDispatcher
	clock           clock.Clock
	dates           *clock.DateValidator
	locations       domain.LocationLookup
	archivePolicy   domain.ArchiveNotificationPolicy
	refreshPolicy   domain.RefreshPolicy
	contextTimeout  time.Duration
	logger          *slog.Logger
}

// NewEventService returns the event handler. locations may be nil, in which case no location is
// ever resolved.
func NewEventService(eventRepo domain.EventRepository,
	eventTypeRepo domain.EventTypeRepository,
	participantRepo domain.ParticipantRepository,
	dispatcher *NotificationDispatcher,
	clk clock.Clock,
	locations domain.LocationLookup,
	archivePolicy domain.ArchiveNotificationPolicy,
	refreshPolicy domain.RefreshPolicy,
	timeout time.Duration,
	logger *slog.Logger,
) domain.EventService {
	return &eventService{
		eventRepo:       eventRepo,
		eventTypeRepo:   eventTypeRepo,
		participantRepo: participantRepo,
		dispatcher:      dispatcher,
		clock:           clk,
		dates:           clock.NewDateValidator(clk),
		locations:       locations,
		archivePolicy:   archivePolicy,
		refreshPolicy:   refreshPolicy,
		contextTimeout:  timeout,
		logger:          logger,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, in domain.CreateEventInput) (*domain.Event, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: event name cannot be blank", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: event description cannot be blank", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(in.Type) == "" {
		return nil, fmt.Errorf("%w: event type cannot be blank", domain.ErrInvalidArgument)
	}
	if err := domain.ValidateCost(in.Cost); err != nil {
		return nil, err
	}
	date, err := s.dates.ParseScheduled(in.Date)
	if err != nil {
		return nil, err
	}
	if in.Location != nil && strings.TrimSpace(in.Location.Name) == "" {
		return nil, fmt.Errorf("%w: location name cannot be blank", domain.ErrInvalidArgument)
	}

	e := domain.NewScheduledEvent(in.Name, in.Description, date, strings.TrimSpace(in.Type), in.Cost, in.Location)
	s.logger.DebugContext(ctx, "event created", "event", e.String())
	return e, nil
}

func (s *eventService) SaveEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event == nil {
		return fmt.Errorf("%w: event is nil", domain.ErrInvalidArgument)
	}
	if err := s.eventRepo.PersistWithParticipants(ctx, event); err != nil {
		return fmt.Errorf("save event: %w", err)
	}
	return nil
}

// AddParticipants enrolls every participant whose name is not already on the event.
// All entries are checked before any is added.
func (s *eventService) AddParticipants(ctx context.Context, event *domain.Event, participants []*domain.Participant) error {
	if event == nil {
		return fmt.Errorf("%w: event is nil", domain.ErrInvalidArgument)
	}
	if participants == nil {
		return fmt.Errorf("%w: participant list is nil", domain.ErrInvalidArgument)
	}
	if event.Status == domain.StatusArchived {
		return fmt.Errorf("%w: archived event %q cannot take participants", domain.ErrInvalidArgument, event.Name)
	}
	for _, p := range participants {
		if p == nil || strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: participant is nil or has a blank name", domain.ErrInvalidArgument)
		}
	}
	for _, p := range participants {
		if !event.AddParticipant(p) {
			s.logger.DebugContext(ctx, "participant already enrolled", "event", event.Name, "participant", p.Name)
		}
	}
	return nil
}

func (s *eventService) UpdateEventStatus(ctx context.Context, event *domain.Event, status domain.EventStatus, date *time.Time) (*domain.Event, error) {
	if event == nil {
		return nil, fmt.Errorf("%w: event is nil", domain.ErrInvalidArgument)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidArgument, status)
	}
	if status == domain.StatusScheduled && date == nil {
		return nil, fmt.Errorf("%w: rescheduling needs a date", domain.ErrInvalidArgument)
	}

	res, err := domain.Transition(event, status, date, s.clock.Now(), s.archivePolicy)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "event status changed",
		"event", event.Name, "from", event.Status, "to", res.Event.Status, "notifications", len(res.Notifications))
	s.dispatcher.Dispatch(ctx, res.Notifications)
	return res.Event, nil
}

// ChangeStatus loads an event, applies the transition and stores the new variant in one transaction.
func (s *eventService) ChangeStatus(ctx context.Context, eventID string, status domain.EventStatus, date *time.Time) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	next, err := s.UpdateEventStatus(ctx, event, status, date)
	if err != nil {
		return nil, err
	}
	if err := s.eventRepo.PersistTransition(ctx, next, next.Status); err != nil {
		return nil, fmt.Errorf("persist status change: %w", err)
	}
	return next, nil
}

// RefreshEvents moves to PAST every SCHEDULED event the refresh policy marks as due against the clock's
// current time. A failure on one event does not stop the sweep; the returned count covers the events
// that were stored.
func (s *eventService) RefreshEvents(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	scheduled, err := s.eventRepo.ListByStatus(ctx, domain.StatusScheduled)
	if err != nil {
		return 0, fmt.Errorf("list scheduled events: %w", err)
	}

	now := s.clock.Now()
	moved := 0
	var errs []error
	for _, e := range scheduled {
		if !s.refreshPolicy.Due(e.Date, now) {
			continue
		}
		next, err := s.UpdateEventStatus(ctx, e, domain.StatusPast, nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("refresh %q: %w", e.Name, err))
			continue
		}
		if err := s.eventRepo.PersistTransition(ctx, next, domain.StatusPast); err != nil {
			s.logger.ErrorContext(ctx, "failed to store refreshed event", "event", e.Name, "err", err)
			errs = append(errs, fmt.Errorf("refresh %q: %w", e.Name, err))
			continue
		}
		moved++
	}
	if moved > 0 {
		s.logger.InfoContext(ctx, "refreshed events", "moved", moved, "now", clock.FormatDate(now), "policy", s.refreshPolicy.String())
	}
	return moved, errors.Join(errs...)
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.getEvent(ctx, eventID)
}

func (s *eventService) getEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetWithParticipants(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, status domain.EventStatus) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidArgument, status)
	}
	events, err := s.eventRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) ListEventTypes(ctx context.Context) ([]*domain.EventType, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	types, err := s.eventTypeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list event types: %w", err)
	}
	if types == nil {
		types = []*domain.EventType{}
	}
	return types, nil
}

func (s *eventService) FindParticipant(ctx context.Context, name string) (*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := s.participantRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidArgument) {
			return nil, err
		}
		return nil, fmt.Errorf("find participant: %w", err)
	}
	return p, nil
}

// ResolveLocation asks the lookup collaborator for a place. Lookup errors and misses both yield nil.
func (s *eventService) ResolveLocation(ctx context.Context, query string) *domain.Location {
	if s.locations == nil || strings.TrimSpace(query) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	loc, err := s.locations.Lookup(ctx, strings.TrimSpace(query))
	if err != nil {
		s.logger.WarnContext(ctx, "location lookup failed", "query", query, "err", err)
		return nil
	}
	return loc
}

func (s *eventService) ParseDate(str string) (time.Time, error) {
	return s.dates.Parse(str)
}

// SetCurrentDate moves the simulated current date, then runs the refresh sweep against it.
// It fails when the service runs on a fixed or system clock. A sweep failure is returned with the
// new date, which stays set.
func (s *eventService) SetCurrentDate(ctx context.Context, str string) (time.Time, int, error) {
	c, ok := s.clock.(settableClock)
	if !ok {
		return time.Time{}, 0, fmt.Errorf("%w: the current date cannot be changed on this clock", domain.ErrInvalidArgument)
	}
	t, err := c.SetCurrentDate(str)
	if err != nil {
		return time.Time{}, 0, err
	}
	s.logger.InfoContext(ctx, "current date changed", "date", clock.FormatDate(t))

	moved, err := s.RefreshEvents(ctx)
	if err != nil {
		return t, moved, fmt.Errorf("refresh after date change: %w", err)
	}
	return t, moved, nil
}
