package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventapp/internal/delivery/http/controllers"
	"eventapp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService answers the handful of calls routed in these tests; anything else panics on the nil embed.
type stubService struct {
	domain.EventService
}

func (stubService) ListEvents(ctx context.Context, status domain.EventStatus) ([]*domain.Event, error) {
	return []*domain.Event{}, nil
}

func (stubService) RefreshEvents(ctx context.Context) (int, error) { return 0, nil }

func (stubService) ListEventTypes(ctx context.Context) ([]*domain.EventType, error) {
	return []*domain.EventType{}, nil
}

func TestNewRouter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := stubService{}
	mux := NewRouter(controllers.NewEventController(logger, svc), controllers.NewCatalogController(logger, svc))

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/events", http.StatusOK},
		{http.MethodGet, "/events?status=archived", http.StatusOK},
		{http.MethodPost, "/events/refresh", http.StatusOK},
		{http.MethodGet, "/events/calendar.ics", http.StatusOK},
		{http.MethodGet, "/event-types", http.StatusOK},
		{http.MethodGet, "/events/not-a-uuid", http.StatusBadRequest},
		{http.MethodGet, "/locations", http.StatusBadRequest},
		{http.MethodDelete, "/events", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nowhere", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestNewRouter_Swagger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := NewRouter(controllers.NewEventController(logger, stubService{}), controllers.NewCatalogController(logger, stubService{}))

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/events/{eventID}/status")
}
