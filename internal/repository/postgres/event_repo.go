package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventapp/internal/domain"

	"github.com/lib/pq"
)

type eventRepository struct {
	DB  *sql.DB
	loc *time.Location
}

// NewEventRepository returns a domain.EventRepository implemented with Postgres.
// Event dates are read back as midnight in loc (UTC when nil), the location the clock works in.
func NewEventRepository(db *sql.DB, loc *time.Location) domain.EventRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &eventRepository{
		DB:  db,
		loc: loc,
	}
}

const selectEventQuery = `
	SELECT e.id, e.name, e.description, e.cost, e.event_date, e.event_status,
	       t.id, t.name, l.id, l.name, l.latitude, l.longitude
	FROM event e
	JOIN event_type t ON t.id = e.id_event_type
	LEFT JOIN location l ON l.id = e.id_location
`

// writtenIDs holds identifiers produced inside a transaction. They are copied onto the
// in-memory event only after commit so a rolled-back save leaves the event untouched.
type writtenIDs struct {
	event        string
	eventType    string
	location     string
	participants []string
}

func (w *writtenIDs) apply(e *domain.Event, withParticipants bool) {
	e.ID = w.event
	e.Type.ID = w.eventType
	if e.Location != nil {
		e.Location.ID = w.location
	}
	if withParticipants {
		for i, p := range e.Participants {
			p.ID = w.participants[i]
		}
	}
}

func (r *eventRepository) Persist(ctx context.Context, e *domain.Event) error {
	return r.save(ctx, e, false)
}

func (r *eventRepository) PersistWithParticipants(ctx context.Context, e *domain.Event) error {
	return r.save(ctx, e, true)
}

// PersistTransition writes the new variant produced by a transition. The discriminator is part of
// the same row write as every other column, so the stored row never shows the old status next to
// the new content.
func (r *eventRepository) PersistTransition(ctx context.Context, e *domain.Event, status domain.EventStatus) error {
	if e == nil {
		return fmt.Errorf("%w: event is nil", domain.ErrInvalidArgument)
	}
	if !status.Valid() || status != e.Status {
		return fmt.Errorf("%w: status %q does not match event status %q", domain.ErrInvalidArgument, status, e.Status)
	}
	return r.save(ctx, e, true)
}

func (r *eventRepository) save(ctx context.Context, e *domain.Event, withParticipants bool) error {
	if err := checkPersistable(e); err != nil {
		return err
	}
	var ids writtenIDs
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		return writeEvent(ctx, tx, e, withParticipants, &ids)
	})
	if err != nil {
		return err
	}
	ids.apply(e, withParticipants)
	return nil
}

func checkPersistable(e *domain.Event) error {
	if e == nil {
		return fmt.Errorf("%w: event is nil", domain.ErrInvalidArgument)
	}
	if e.Type == nil || strings.TrimSpace(e.Type.Name) == "" {
		return fmt.Errorf("%w: event %q has no type", domain.ErrInvalidArgument, e.Name)
	}
	if !e.Status.Valid() {
		return fmt.Errorf("%w: event %q has unknown status %q", domain.ErrInvalidArgument, e.Name, e.Status)
	}
	return nil
}

func writeEvent(ctx context.Context, tx *sql.Tx, e *domain.Event, withParticipants bool, ids *writtenIDs) error {
	if e.ID == "" {
		exists, err := existsWithName(ctx, tx, e.Name)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: event with name %s already exists", domain.ErrDuplicateName, e.Name)
		}
	}

	ids.eventType = e.Type.ID
	if ids.eventType == "" {
		id, err := upsertEventType(ctx, tx, e.Type.Name)
		if err != nil {
			return err
		}
		ids.eventType = id
	}

	if withParticipants {
		ids.participants = make([]string, len(e.Participants))
		for i, p := range e.Participants {
			ids.participants[i] = p.ID
			if p.ID != "" {
				continue
			}
			id, err := upsertParticipant(ctx, tx, p)
			if err != nil {
				return err
			}
			ids.participants[i] = id
		}
	}

	var locationID sql.NullString
	if e.Location != nil {
		id, err := writeLocation(ctx, tx, e.Location)
		if err != nil {
			return err
		}
		ids.location = id
		locationID = sql.NullString{String: id, Valid: true}
	}

	if e.ID == "" {
		query := `
			INSERT INTO event (name, description, cost, event_date, id_event_type, id_location, event_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`
		err := tx.QueryRowContext(ctx, query, e.Name, e.Description, e.Cost, e.Date, ids.eventType, locationID, string(e.Status)).Scan(&ids.event)
		if err != nil {
			return mapEventWriteError(e, err)
		}
	} else {
		query := `
			UPDATE event
			SET name = $1, description = $2, cost = $3, event_date = $4, id_event_type = $5,
			    id_location = $6, event_status = $7, updated_at = NOW()
			WHERE id = $8
		`
		result, err := tx.ExecContext(ctx, query, e.Name, e.Description, e.Cost, e.Date, ids.eventType, locationID, string(e.Status), e.ID)
		if err != nil {
			return mapEventWriteError(e, err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return domain.ErrNotFound
		}
		ids.event = e.ID
	}

	if withParticipants {
		if _, err := tx.ExecContext(ctx, `DELETE FROM event_participant WHERE event_id = $1`, ids.event); err != nil {
			return fmt.Errorf("clear participants of event %q: %w", e.Name, err)
		}
		for _, participantID := range ids.participants {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO event_participant (event_id, participant_id) VALUES ($1, $2) ON CONFLICT (event_id, participant_id) DO NOTHING`,
				ids.event, participantID)
			if err != nil {
				return fmt.Errorf("link participant to event %q: %w", e.Name, err)
			}
		}
	}
	return nil
}

func writeLocation(ctx context.Context, tx *sql.Tx, loc *domain.Location) (string, error) {
	if loc.ID == "" {
		var id string
		err := tx.QueryRowContext(ctx,
			`INSERT INTO location (name, latitude, longitude) VALUES ($1, $2, $3) RETURNING id`,
			loc.Name, nullString(loc.Latitude), nullString(loc.Longitude)).Scan(&id)
		if err != nil {
			return "", fmt.Errorf("insert location %q: %w", loc.Name, err)
		}
		return id, nil
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE location SET name = $2, latitude = $3, longitude = $4 WHERE id = $1`,
		loc.ID, loc.Name, nullString(loc.Latitude), nullString(loc.Longitude))
	if err != nil {
		return "", fmt.Errorf("update location %q: %w", loc.Name, err)
	}
	return loc.ID, nil
}

// mapEventWriteError turns a unique violation on the event name into ErrDuplicateName.
func mapEventWriteError(e *domain.Event, err error) error {
	var perr *pq.Error
	if errors.As(err, &perr) && perr.Code == "23505" {
		return fmt.Errorf("%w: event with name %s already exists", domain.ErrDuplicateName, e.Name)
	}
	return fmt.Errorf("write event %q: %w", e.Name, err)
}

func existsWithName(ctx context.Context, q querier, name string) (bool, error) {
	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM event WHERE name = $1)`, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("check event name %q: %w", name, err)
	}
	return exists, nil
}

func (r *eventRepository) ExistsWithName(ctx context.Context, name string) (bool, error) {
	return existsWithName(ctx, r.DB, name)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanEvent reads one event row. DATE columns arrive as midnight UTC and are moved to midnight in loc
// on the same calendar day.
func scanEvent(s rowScanner, loc *time.Location) (*domain.Event, error) {
	e := &domain.Event{Type: &domain.EventType{}, Participants: []*domain.Participant{}}
	var status string
	var locID, locName, lat, lng sql.NullString
	err := s.Scan(&e.ID, &e.Name, &e.Description, &e.Cost, &e.Date, &status,
		&e.Type.ID, &e.Type.Name, &locID, &locName, &lat, &lng)
	if err != nil {
		return nil, err
	}
	e.Date = time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), 0, 0, 0, 0, loc)
	e.Status = domain.EventStatus(status)
	if locID.Valid {
		e.Location = &domain.Location{
			ID:        locID.String,
			Name:      locName.String,
			Latitude:  stringPtr(lat),
			Longitude: stringPtr(lng),
		}
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx, selectEventQuery+` WHERE e.id = $1`, id), r.loc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetWithParticipants(ctx context.Context, id string) (*domain.Event, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.loadParticipants(ctx, []*domain.Event{e}); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListByStatus(ctx context.Context, status domain.EventStatus) ([]*domain.Event, error) {
	query := selectEventQuery
	args := []any{}
	if status != "" {
		query += ` WHERE e.event_status = $1`
		args = append(args, string(status))
	}
	query += ` ORDER BY e.event_date, e.name`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows, r.loc)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadParticipants(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

// loadParticipants fills Participants for every event with a single query.
func (r *eventRepository) loadParticipants(ctx context.Context, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Event, len(events))
	ids := make([]string, 0, len(events))
	for _, e := range events {
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT ep.event_id, p.id, p.name, p.email
		 FROM event_participant ep
		 JOIN participant p ON p.id = ep.participant_id
		 WHERE ep.event_id = ANY($1)
		 ORDER BY p.name`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var eventID string
		var email sql.NullString
		p := &domain.Participant{}
		if err := rows.Scan(&eventID, &p.ID, &p.Name, &email); err != nil {
			return err
		}
		p.Email = stringPtr(email)
		if e, ok := byID[eventID]; ok {
			e.Participants = append(e.Participants, p)
		}
	}
	return rows.Err()
}
