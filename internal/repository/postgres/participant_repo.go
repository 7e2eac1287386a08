package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventapp/internal/domain"
)

type participantRepository struct {
	DB *sql.DB
}

// NewParticipantRepository returns a domain.ParticipantRepository implemented with Postgres.
func NewParticipantRepository(db *sql.DB) domain.ParticipantRepository {
	return &participantRepository{DB: db}
}

// upsertParticipantQuery reuses the row of an existing participant with the same name.
// A known email is never overwritten with NULL.
const upsertParticipantQuery = `
	INSERT INTO participant (name, email) VALUES ($1, $2)
	ON CONFLICT (name) DO UPDATE SET email = COALESCE(EXCLUDED.email, participant.email)
	RETURNING id
`

func upsertParticipant(ctx context.Context, q querier, p *domain.Participant) (string, error) {
	var id string
	if err := q.QueryRowContext(ctx, upsertParticipantQuery, p.Name, nullString(p.Email)).Scan(&id); err != nil {
		return "", fmt.Errorf("upsert participant %q: %w", p.Name, err)
	}
	return id, nil
}

func (r *participantRepository) Persist(ctx context.Context, p *domain.Participant) (string, error) {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return "", fmt.Errorf("%w: cannot save nil or blank participant", domain.ErrInvalidArgument)
	}
	id, err := upsertParticipant(ctx, r.DB, p)
	if err != nil {
		return "", err
	}
	p.ID = id
	return id, nil
}

func (r *participantRepository) GetByName(ctx context.Context, name string) (*domain.Participant, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: participant name cannot be blank", domain.ErrInvalidArgument)
	}
	return r.getOne(ctx, `SELECT id, name, email FROM participant WHERE name = $1`, name)
}

func (r *participantRepository) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	return r.getOne(ctx, `SELECT id, name, email FROM participant WHERE id = $1`, id)
}

func (r *participantRepository) getOne(ctx context.Context, query string, arg string) (*domain.Participant, error) {
	p := &domain.Participant{}
	var email sql.NullString
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(&p.ID, &p.Name, &email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Email = stringPtr(email)
	return p, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
