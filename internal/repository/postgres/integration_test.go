//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"eventapp/internal/domain"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// RepositorySuite runs the repositories against a real Postgres container.
type RepositorySuite struct {
	suite.Suite
	DB          *sql.DB
	pgContainer *tcpostgres.PostgresContainer
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("eventapp"),
		tcpostgres.WithUsername("eventapp"),
		tcpostgres.WithPassword("eventapp"),
		tcpostgres.WithInitScripts("schema.sql"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err, "start postgres container")
	s.pgContainer = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := Open(ctx, connStr, 30*time.Second, logger)
	s.Require().NoError(err)
	s.DB = db

	// schema is idempotent; applying it again must succeed
	s.Require().NoError(Migrate(ctx, db))
}

func (s *RepositorySuite) TearDownSuite() {
	if s.DB != nil {
		_ = s.DB.Close()
	}
	if s.pgContainer != nil {
		s.Require().NoError(s.pgContainer.Terminate(context.Background()))
	}
}

func (s *RepositorySuite) SetupTest() {
	_, err := s.DB.Exec(`TRUNCATE TABLE event_participant, event, location, participant, event_type CASCADE`)
	s.Require().NoError(err)
}

func (s *RepositorySuite) newEvent(name string) *domain.Event {
	date := time.Date(2026, 12, 5, 0, 0, 0, 0, time.UTC)
	lat, lng := "-43.53", "172.63"
	return domain.NewScheduledEvent(name, "integration", date, "Social", 25, &domain.Location{
		Name: "Christchurch", Latitude: &lat, Longitude: &lng,
	})
}

func (s *RepositorySuite) TestPersistAndLoad() {
	ctx := context.Background()
	repo := NewEventRepository(s.DB, time.UTC)

	e := s.newEvent("Meetup")
	e.AddParticipant(domain.NewParticipant("alice", nil))
	e.AddParticipant(domain.NewParticipant("bob", nil))
	s.Require().NoError(repo.PersistWithParticipants(ctx, e))
	s.NotEmpty(e.ID)
	s.NotEmpty(e.Location.ID)

	got, err := repo.GetWithParticipants(ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusScheduled, got.Status)
	s.Equal("Social", got.Type.Name)
	s.Len(got.Participants, 2)
	s.Equal("alice", got.Participants[0].Name)
	s.Equal("172.63", *got.Location.Longitude)
}

func (s *RepositorySuite) TestDuplicateName() {
	ctx := context.Background()
	repo := NewEventRepository(s.DB, time.UTC)

	s.Require().NoError(repo.Persist(ctx, s.newEvent("Meetup")))
	dup := s.newEvent("Meetup")
	err := repo.Persist(ctx, dup)
	s.ErrorIs(err, domain.ErrDuplicateName)
	s.Empty(dup.ID)
}

func (s *RepositorySuite) TestParticipantsSharedAcrossEvents() {
	ctx := context.Background()
	repo := NewEventRepository(s.DB, time.UTC)

	first := s.newEvent("First")
	first.AddParticipant(domain.NewParticipant("alice", nil))
	s.Require().NoError(repo.PersistWithParticipants(ctx, first))

	second := s.newEvent("Second")
	second.AddParticipant(domain.NewParticipant("alice", nil))
	s.Require().NoError(repo.PersistWithParticipants(ctx, second))

	s.Equal(first.Participants[0].ID, second.Participants[0].ID)
}

func (s *RepositorySuite) TestArchiveTransitionClearsLinks() {
	ctx := context.Background()
	repo := NewEventRepository(s.DB, time.UTC)

	e := s.newEvent("Meetup")
	e.AddParticipant(domain.NewParticipant("alice", nil))
	s.Require().NoError(repo.PersistWithParticipants(ctx, e))

	res, err := domain.Archive(e, domain.ClearParticipantsFirst)
	s.Require().NoError(err)
	s.Require().NoError(repo.PersistTransition(ctx, res.Event, domain.StatusArchived))

	archived, err := repo.ListByStatus(ctx, domain.StatusArchived)
	s.Require().NoError(err)
	s.Require().Len(archived, 1)
	s.Empty(archived[0].Participants)

	scheduled, err := repo.ListByStatus(ctx, domain.StatusScheduled)
	s.Require().NoError(err)
	s.Empty(scheduled)

	alice, err := NewParticipantRepository(s.DB).GetByName(ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice", alice.Name)
}

func (s *RepositorySuite) TestEventTypes() {
	ctx := context.Background()
	types := NewEventTypeRepository(s.DB)

	a, err := types.GetOrCreate(ctx, "Social")
	s.Require().NoError(err)
	b, err := types.GetOrCreate(ctx, "Social")
	s.Require().NoError(err)
	s.Equal(a.ID, b.ID)

	all, err := types.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}
