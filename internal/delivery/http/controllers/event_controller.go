package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventapp/internal/adapters/calendar"
	"eventapp/internal/delivery/http/helpers"
	"eventapp/internal/domain"
)

// emailRegex matches a simple email format (local@domain with at least one dot in domain).
var emailRegex = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// ParticipantRequest names one participant. Email is optional and only used for notifications.
type ParticipantRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
}

func (p ParticipantRequest) toDomain() *domain.Participant {
	var email *string
	if p.Email != nil && strings.TrimSpace(*p.Email) != "" {
		e := strings.TrimSpace(*p.Email)
		email = &e
	}
	return domain.NewParticipant(strings.TrimSpace(p.Name), email)
}

func validateParticipants(ps []ParticipantRequest) []string {
	var errs []string
	for i, p := range ps {
		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, fmt.Sprintf("participants[%d].name is required", i))
		}
		if p.Email != nil && *p.Email != "" && !emailRegex.MatchString(*p.Email) {
			errs = append(errs, fmt.Sprintf("participants[%d].email is invalid", i))
		}
	}
	return errs
}

// CreateEventRequest is the request body for POST /events.
// Date uses dd/MM/yyyy. Location is a free-text place looked up before the event is stored.
type CreateEventRequest struct {
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Date         string               `json:"date"`
	Type         string               `json:"type"`
	Cost         *float64             `json:"cost"`
	Location     *string              `json:"location,omitempty"`
	Participants []ParticipantRequest `json:"participants,omitempty"`
}

// Validate implements Validator. Value rules (cost range, date window) are enforced by the service.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.Date == "" {
		errs = append(errs, "date is required")
	}
	if c.Cost == nil {
		errs = append(errs, "cost is required")
	}
	return append(errs, validateParticipants(c.Participants)...)
}

// EventSuccessResponse is the success envelope for endpoints returning one event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListSuccessResponse is the success envelope for GET /events.
type EventListSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create a scheduled event
// @Description Validates and stores a new SCHEDULED event. The date must be dd/MM/yyyy and strictly within the next year. A location, when given, is resolved through the lookup service; unresolved places are kept by name only.
// @Tags events
// @Accept json
// @Produce json
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the stored event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (validation or duplicate name)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	ctx := r.Context()

	var location *domain.Location
	if req.Location != nil {
		query := strings.TrimSpace(*req.Location)
		location = c.Service.ResolveLocation(ctx, query)
		if location == nil {
			location = &domain.Location{Name: query}
		}
	}

	event, err := c.Service.CreateEvent(ctx, domain.CreateEventInput{
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		Type:        req.Type,
		Cost:        *req.Cost,
		Location:    location,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if len(req.Participants) > 0 {
		participants := make([]*domain.Participant, 0, len(req.Participants))
		for _, p := range req.Participants {
			participants = append(participants, p.toDomain())
		}
		if err := c.Service.AddParticipants(ctx, event, participants); err != nil {
			helpers.WriteServiceError(w, r, c.Logger, err)
			return
		}
	}
	if err := c.Service.SaveEvent(ctx, event); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEvents godoc
// @Summary List events
// @Description Lists events with their participants, ordered by date. Optionally filtered by status.
// @Tags events
// @Produce json
// @Param status query string false "SCHEDULED, PAST, CANCELED or ARCHIVED"
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (unknown status)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	status, ok := c.statusFilter(w, r)
	if !ok {
		return
	}
	events, err := c.Service.ListEvents(r.Context(), status)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

func (c *EventController) statusFilter(w http.ResponseWriter, r *http.Request) (domain.EventStatus, bool) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return "", true
	}
	status, err := domain.ParseEventStatus(raw)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return "", false
	}
	return status, true
}

// GetEvent godoc
// @Summary Get an event by ID
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathEventID(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// AddParticipantsRequest is the request body for POST /events/{eventID}/participants.
type AddParticipantsRequest struct {
	Participants []ParticipantRequest `json:"participants"`
}

// Validate implements Validator.
func (a AddParticipantsRequest) Validate() []string {
	if len(a.Participants) == 0 {
		return []string{"participants must not be empty"}
	}
	return validateParticipants(a.Participants)
}

// AddParticipants godoc
// @Summary Enroll participants
// @Description Adds participants by name. Names already enrolled are skipped. Archived events take no participants.
// @Tags events
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param body body AddParticipantsRequest true "Participants to add"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/participants [post]
func (c *EventController) AddParticipants(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathEventID(w, r)
	if !ok {
		return
	}
	var req AddParticipantsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	ctx := r.Context()
	event, err := c.Service.GetEvent(ctx, eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	participants := make([]*domain.Participant, 0, len(req.Participants))
	for _, p := range req.Participants {
		participants = append(participants, p.toDomain())
	}
	if err := c.Service.AddParticipants(ctx, event, participants); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if err := c.Service.SaveEvent(ctx, event); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ChangeStatusRequest is the request body for POST /events/{eventID}/status.
// Date (dd/MM/yyyy) is required when status is SCHEDULED.
type ChangeStatusRequest struct {
	Status string  `json:"status"`
	Date   *string `json:"date,omitempty"`
}

// Validate implements Validator.
func (s ChangeStatusRequest) Validate() []string {
	if strings.TrimSpace(s.Status) == "" {
		return []string{"status is required"}
	}
	return nil
}

// ChangeStatus godoc
// @Summary Change an event's status
// @Description Cancel (CANCELED), happen (PAST), archive (ARCHIVED) or reschedule (SCHEDULED with date). Enrolled participants are notified; archiving drops participants.
// @Tags events
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param body body ChangeStatusRequest true "Target status"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_transition"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/status [post]
func (c *EventController) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathEventID(w, r)
	if !ok {
		return
	}
	var req ChangeStatusRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	status, err := domain.ParseEventStatus(req.Status)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	var date *time.Time
	if req.Date != nil {
		d, err := c.Service.ParseDate(*req.Date)
		if err != nil {
			helpers.WriteServiceError(w, r, c.Logger, err)
			return
		}
		date = &d
	}
	event, err := c.Service.ChangeStatus(r.Context(), eventID, status, date)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// RefreshResponse reports how many events the sweep moved to PAST.
type RefreshResponse struct {
	Moved int `json:"moved"`
}

// RefreshEvents godoc
// @Summary Move due events to PAST
// @Description Every SCHEDULED event the configured refresh policy marks as due becomes PAST. By default that is every event dated at or after the current date.
// @Tags events
// @Produce json
// @Success 200 {object} helpers.APIResponse{data=controllers.RefreshResponse}
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/refresh [post]
func (c *EventController) RefreshEvents(w http.ResponseWriter, r *http.Request) {
	moved, err := c.Service.RefreshEvents(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RefreshResponse{Moved: moved})
}

// ExportCalendar godoc
// @Summary Export events as iCalendar
// @Tags events
// @Produce text/calendar
// @Param status query string false "Optional status filter"
// @Success 200 {string} string "text/calendar document"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/calendar.ics [get]
func (c *EventController) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	status, ok := c.statusFilter(w, r)
	if !ok {
		return
	}
	events, err := c.Service.ListEvents(r.Context(), status)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	doc, err := calendar.Export(events)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="events.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// pathEventID reads {eventID} and rejects anything that is not a UUID.
func pathEventID(w http.ResponseWriter, r *http.Request) (string, bool) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return "", false
	}
	if _, err := uuid.Parse(eventID); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "eventID must be a UUID")
		return "", false
	}
	return eventID, true
}
