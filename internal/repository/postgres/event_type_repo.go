package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"eventapp/internal/domain"
)

type eventTypeRepository struct {
	DB *sql.DB
}

// NewEventTypeRepository returns a domain.EventTypeRepository implemented with Postgres.
func NewEventTypeRepository(db *sql.DB) domain.EventTypeRepository {
	return &eventTypeRepository{DB: db}
}

const upsertEventTypeQuery = `
	INSERT INTO event_type (name) VALUES ($1)
	ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
	RETURNING id
`

// upsertEventType returns the id of the type with the given name, creating it if missing.
// The unique constraint on name makes this a single idempotent statement.
func upsertEventType(ctx context.Context, q querier, name string) (string, error) {
	var id string
	if err := q.QueryRowContext(ctx, upsertEventTypeQuery, name).Scan(&id); err != nil {
		return "", fmt.Errorf("upsert event type %q: %w", name, err)
	}
	return id, nil
}

func (r *eventTypeRepository) GetOrCreate(ctx context.Context, name string) (*domain.EventType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: event type name cannot be blank", domain.ErrInvalidArgument)
	}
	id, err := upsertEventType(ctx, r.DB, name)
	if err != nil {
		return nil, err
	}
	return &domain.EventType{ID: id, Name: name}, nil
}

func (r *eventTypeRepository) List(ctx context.Context) ([]*domain.EventType, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name FROM event_type ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := []*domain.EventType{}
	for rows.Next() {
		var t domain.EventType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		types = append(types, &t)
	}
	return types, rows.Err()
}
