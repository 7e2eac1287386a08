package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventapp/internal/delivery/http/controllers"

	_ "eventapp/docs" // registers the swagger spec served under /swagger/
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(eventController *controllers.EventController, catalogController *controllers.CatalogController) *http.ServeMux {
	mux := http.NewServeMux()

	// Events
	mux.HandleFunc("POST /events", eventController.CreateEvent)
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/calendar.ics", eventController.ExportCalendar)
	mux.HandleFunc("POST /events/refresh", eventController.RefreshEvents)
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEvent)
	mux.HandleFunc("POST /events/{eventID}/participants", eventController.AddParticipants)
	mux.HandleFunc("POST /events/{eventID}/status", eventController.ChangeStatus)

	// Catalog
	mux.HandleFunc("GET /event-types", catalogController.ListEventTypes)
	mux.HandleFunc("GET /participants/{name}", catalogController.GetParticipant)
	mux.HandleFunc("GET /locations", catalogController.LookupLocation)
	mux.HandleFunc("PUT /clock", catalogController.SetClock)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
