package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventapp/internal/delivery/http/helpers"
	"eventapp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogController_ListEventTypes(t *testing.T) {
	svc := &fakeEventService{types: []*domain.EventType{{ID: "t1", Name: "Social"}}}
	ctrl := NewCatalogController(testLogger, svc)

	rr := httptest.NewRecorder()
	ctrl.ListEventTypes(rr, httptest.NewRequest(http.MethodGet, "/event-types", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"Social"`)
}

func TestCatalogController_GetParticipant(t *testing.T) {
	email := "alice@example.com"
	svc := &fakeEventService{participant: &domain.Participant{ID: "p1", Name: "alice", Email: &email}}
	ctrl := NewCatalogController(testLogger, svc)

	tests := []struct {
		name       string
		pathName   string
		wantStatus int
	}{
		{name: "found", pathName: "alice", wantStatus: http.StatusOK},
		{name: "unknown", pathName: "bob", wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/participants/"+tt.pathName, nil)
			req.SetPathValue("name", tt.pathName)
			rr := httptest.NewRecorder()

			ctrl.GetParticipant(rr, req)
			require.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestCatalogController_LookupLocation(t *testing.T) {
	lat, lon := "-43.53", "172.63"
	tests := []struct {
		name       string
		url        string
		location   *domain.Location
		wantStatus int
		wantCode   string
	}{
		{
			name:       "resolved",
			url:        "/locations?q=Christchurch",
			location:   &domain.Location{Name: "Christchurch, New Zealand", Latitude: &lat, Longitude: &lon},
			wantStatus: http.StatusOK,
		},
		{name: "no match", url: "/locations?q=Atlantis", wantStatus: http.StatusNotFound, wantCode: helpers.ErrCodeNotFound},
		{name: "blank query", url: "/locations?q=%20", wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewCatalogController(testLogger, &fakeEventService{location: tt.location})
			rr := httptest.NewRecorder()

			ctrl.LookupLocation(rr, httptest.NewRequest(http.MethodGet, tt.url, nil))

			require.Equal(t, tt.wantStatus, rr.Code)
			data, apiErr := decodeResponse(t, rr)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				return
			}
			assert.Equal(t, "Christchurch, New Zealand", data["name"])
			assert.Equal(t, lat, data["latitude"])
		})
	}
}

func TestCatalogController_SetClock(t *testing.T) {
	t.Run("moves the date and reports refreshed events", func(t *testing.T) {
		ctrl := NewCatalogController(testLogger, &fakeEventService{refreshMoved: 2})
		rr := httptest.NewRecorder()
		ctrl.SetClock(rr, httptest.NewRequest(http.MethodPut, "/clock", strings.NewReader(`{"date":"15/06/2026"}`)))

		require.Equal(t, http.StatusOK, rr.Code)
		data, apiErr := decodeResponse(t, rr)
		require.Nil(t, apiErr)
		assert.Equal(t, "15/06/2026", data["current_date"])
		assert.EqualValues(t, 2, data["moved"])
	})

	t.Run("refresh failure", func(t *testing.T) {
		ctrl := NewCatalogController(testLogger, &fakeEventService{setDateErr: errors.New("refresh after date change: disk full")})
		rr := httptest.NewRecorder()
		ctrl.SetClock(rr, httptest.NewRequest(http.MethodPut, "/clock", strings.NewReader(`{"date":"15/06/2026"}`)))
		require.Equal(t, http.StatusInternalServerError, rr.Code)
	})

	t.Run("missing date", func(t *testing.T) {
		ctrl := NewCatalogController(testLogger, &fakeEventService{})
		rr := httptest.NewRecorder()
		ctrl.SetClock(rr, httptest.NewRequest(http.MethodPut, "/clock", strings.NewReader(`{}`)))
		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("fixed clock", func(t *testing.T) {
		svc := &fakeEventService{setDateErr: fmt.Errorf("%w: the current date cannot be changed on this clock", domain.ErrInvalidArgument)}
		ctrl := NewCatalogController(testLogger, svc)
		rr := httptest.NewRecorder()
		ctrl.SetClock(rr, httptest.NewRequest(http.MethodPut, "/clock", strings.NewReader(`{"date":"15/06/2026"}`)))
		require.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
