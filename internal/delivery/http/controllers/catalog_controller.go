package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventapp/internal/clock"
	"eventapp/internal/delivery/http/helpers"
	"eventapp/internal/domain"
)

// CatalogController serves the read-mostly lookups around events: types, participants,
// locations and the simulated current date.
type CatalogController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewCatalogController(logger *slog.Logger, svc domain.EventService) *CatalogController {
	return &CatalogController{Logger: logger, Service: svc}
}

// ListEventTypes godoc
// @Summary List event types
// @Tags catalog
// @Produce json
// @Success 200 {object} helpers.APIResponse{data=[]domain.EventType}
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /event-types [get]
func (c *CatalogController) ListEventTypes(w http.ResponseWriter, r *http.Request) {
	types, err := c.Service.ListEventTypes(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, types)
}

// GetParticipant godoc
// @Summary Find a participant by name
// @Tags catalog
// @Produce json
// @Param name path string true "Participant name"
// @Success 200 {object} helpers.APIResponse{data=domain.Participant}
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /participants/{name} [get]
func (c *CatalogController) GetParticipant(w http.ResponseWriter, r *http.Request) {
	p, err := c.Service.FindParticipant(r.Context(), r.PathValue("name"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, p)
}

// LookupLocation godoc
// @Summary Resolve a place name
// @Description Returns the first city matching q, with coordinates.
// @Tags catalog
// @Produce json
// @Param q query string true "Free-text place"
// @Success 200 {object} helpers.APIResponse{data=domain.Location}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /locations [get]
func (c *CatalogController) LookupLocation(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "q is required")
		return
	}
	loc := c.Service.ResolveLocation(r.Context(), q)
	if loc == nil {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "no city found for "+q)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, loc)
}

// SetClockRequest is the request body for PUT /clock.
type SetClockRequest struct {
	Date string `json:"date"`
}

// Validate implements Validator.
func (s SetClockRequest) Validate() []string {
	if strings.TrimSpace(s.Date) == "" {
		return []string{"date is required"}
	}
	return nil
}

// ClockResponse echoes the current date in dd/MM/yyyy and how many events the follow-up refresh moved to PAST.
type ClockResponse struct {
	CurrentDate string `json:"current_date"`
	Moved       int    `json:"moved"`
}

// SetClock godoc
// @Summary Move the simulated current date
// @Description Sets the date used for scheduling windows and the refresh sweep, then refreshes events against it. Only available when the server runs on a simulated clock.
// @Tags catalog
// @Accept json
// @Produce json
// @Param body body SetClockRequest true "New current date (dd/MM/yyyy)"
// @Success 200 {object} helpers.APIResponse{data=controllers.ClockResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /clock [put]
func (c *CatalogController) SetClock(w http.ResponseWriter, r *http.Request) {
	var req SetClockRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	t, moved, err := c.Service.SetCurrentDate(r.Context(), req.Date)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ClockResponse{CurrentDate: clock.FormatDate(t), Moved: moved})
}
