// Package calendar renders events as an iCalendar feed.
package calendar

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"eventapp/internal/domain"
)

const productID = "-//eventapp//event lifecycle//EN"

// Export returns an iCalendar document with one all-day VEVENT per event. Canceled events are
// marked CANCELLED, every other status CONFIRMED. Events must be persisted (non-empty ID).
func Export(events []*domain.Event) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName("Events")

	stamp := time.Now().UTC()
	for _, e := range events {
		if e == nil || e.ID == "" {
			return "", fmt.Errorf("%w: only stored events can be exported", domain.ErrInvalidArgument)
		}
		ve := cal.AddEvent(e.ID)
		ve.SetDtStampTime(stamp)
		ve.SetSummary(e.Name)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		ve.SetAllDayStartAt(e.Date)
		ve.SetAllDayEndAt(e.Date.AddDate(0, 0, 1))
		if e.Type != nil && e.Type.Name != "" {
			ve.SetProperty(ics.ComponentPropertyCategories, e.Type.Name)
		}
		if e.Location != nil {
			ve.SetLocation(e.Location.Name)
			if e.Location.Latitude != nil && e.Location.Longitude != nil {
				ve.SetProperty(ics.ComponentProperty("GEO"), *e.Location.Latitude+";"+*e.Location.Longitude)
			}
		}
		if e.Status == domain.StatusCanceled {
			ve.SetStatus(ics.ObjectStatusCancelled)
		} else {
			ve.SetStatus(ics.ObjectStatusConfirmed)
		}
		ve.SetProperty(ics.ComponentProperty("X-EVENTAPP-STATUS"), string(e.Status))
	}
	return cal.Serialize(), nil
}
