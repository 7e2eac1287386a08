// Package nominatim resolves free-text place names through a Nominatim search endpoint.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"eventapp/internal/domain"
)

// DefaultBaseURL is the public OpenStreetMap search endpoint.
const DefaultBaseURL = "https://nominatim.openstreetmap.org/search"

// cityType is the result type accepted as an event location.
const cityType = "city"

// result is one entry of a Nominatim search response. Coordinates come back as strings.
type result struct {
	Latitude    string `json:"lat"`
	Longitude   string `json:"lon"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
}

type Config struct {
	BaseURL   string
	UserAgent string
	// RequestsPerSecond throttles outgoing calls; the public service allows one per second.
	RequestsPerSecond float64
}

type client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
}

// NewClient returns a domain.LocationLookup backed by Nominatim. A nil httpClient uses http.DefaultClient.
func NewClient(httpClient *http.Client, cfg Config) domain.LocationLookup {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &client{
		http:      httpClient,
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// Lookup returns the first result typed as a city, or nil when there is none.
func (c *client) Lookup(ctx context.Context, query string) (*domain.Location, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for nominatim rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query nominatim: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned status: %d", resp.StatusCode)
	}

	var results []result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}
	for _, r := range results {
		if r.Type == cityType {
			return r.toLocation(), nil
		}
	}
	return nil, nil
}

func (r result) toLocation() *domain.Location {
	loc := &domain.Location{Name: r.DisplayName}
	if r.Latitude != "" {
		lat := r.Latitude
		loc.Latitude = &lat
	}
	if r.Longitude != "" {
		lng := r.Longitude
		loc.Longitude = &lng
	}
	return loc
}
