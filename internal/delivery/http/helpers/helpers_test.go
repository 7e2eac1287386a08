package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventapp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nameRequest struct {
	Name string `json:"name"`
}

func (n nameRequest) Validate() []string {
	if n.Name == "" {
		return []string{"name is required"}
	}
	return nil
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantOK   bool
		wantCode int
	}{
		{"valid", `{"name":"Meetup"}`, true, http.StatusOK},
		{"unknown field", `{"name":"Meetup","owner":"x"}`, false, http.StatusBadRequest},
		{"fails validation", `{}`, false, http.StatusBadRequest},
		{"not json", `name=Meetup`, false, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(tt.body))
			var dest nameRequest
			ok := DecodeAndValidate(rr, req, &dest)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCode, rr.Code)
		})
	}
}

func TestWriteServiceError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		err      error
		wantCode int
		wantErr  string
	}{
		{fmt.Errorf("wrap: %w", domain.ErrInvalidTransition), http.StatusConflict, ErrCodeInvalidTransition},
		{domain.ErrDuplicateName, http.StatusBadRequest, ErrCodeBadRequest},
		{domain.ErrInvalidDate, http.StatusBadRequest, ErrCodeBadRequest},
		{domain.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.wantErr, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteServiceError(rr, httptest.NewRequest(http.MethodGet, "/events", nil), logger, tt.err)
			require.Equal(t, tt.wantCode, rr.Code)
			var resp APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantErr, resp.Error.Code)
			assert.Nil(t, resp.Data)
		})
	}
}
