package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Lookup(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantName string
		wantNil  bool
		wantErr  bool
	}{
		{
			name:   "first city wins",
			status: http.StatusOK,
			body: `[
				{"place_id": 1, "lat": "-43.5", "lon": "172.6", "display_name": "Christchurch Airport", "class": "aeroway", "type": "aerodrome"},
				{"place_id": 2, "lat": "-43.53", "lon": "172.63", "display_name": "Christchurch, Canterbury, New Zealand", "class": "place", "type": "city"},
				{"place_id": 3, "lat": "50.7", "lon": "-1.7", "display_name": "Christchurch, Dorset", "class": "place", "type": "city"}
			]`,
			wantName: "Christchurch, Canterbury, New Zealand",
		},
		{
			name:    "no city in results",
			status:  http.StatusOK,
			body:    `[{"lat": "1", "lon": "2", "display_name": "Somewhere", "type": "village"}]`,
			wantNil: true,
		},
		{
			name:    "empty results",
			status:  http.StatusOK,
			body:    `[]`,
			wantNil: true,
		},
		{
			name:    "upstream error",
			status:  http.StatusServiceUnavailable,
			body:    `busy`,
			wantErr: true,
		},
		{
			name:    "malformed body",
			status:  http.StatusOK,
			body:    `{`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "json", r.URL.Query().Get("format"))
				assert.Equal(t, "christchurch nz", r.URL.Query().Get("q"))
				assert.Equal(t, "eventapp-test", r.Header.Get("User-Agent"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.Client(), Config{BaseURL: srv.URL, UserAgent: "eventapp-test"})
			loc, err := c.Lookup(context.Background(), "christchurch nz")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, loc)
				return
			}
			require.NotNil(t, loc)
			assert.Equal(t, tt.wantName, loc.Name)
			assert.Equal(t, "-43.53", *loc.Latitude)
			assert.Equal(t, "172.63", *loc.Longitude)
		})
	}
}

func TestClient_LookupHonoursCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), Config{BaseURL: srv.URL, RequestsPerSecond: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Lookup(ctx, "paris")
	require.Error(t, err)
}
