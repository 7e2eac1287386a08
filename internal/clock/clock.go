// Package clock provides the time source used for scheduling-window checks, and the date format
// accepted from users.
package clock

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"eventapp/internal/domain"
)

// DateLayout is the dd/MM/yyyy format used for every user-supplied date.
const DateLayout = "02/01/2006"

// shortDateLayout accepts single-digit day and month.
const shortDateLayout = "2/1/2006"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns the wall clock.
func System() Clock { return systemClock{} }

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

// Fixed returns a clock frozen at t.
func Fixed(t time.Time) Clock { return fixedClock(t) }

// Simulated is a clock whose current date can be moved to simulate time passing.
// Until an override is set it reports its base clock.
type Simulated struct {
	base Clock

	mu       sync.RWMutex
	override *time.Time
}

// NewSimulated returns a Simulated clock on top of base (System when nil).
func NewSimulated(base Clock) *Simulated {
	if base == nil {
		base = System()
	}
	return &Simulated{base: base}
}

func (s *Simulated) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.override != nil {
		return *s.override
	}
	return s.base.Now()
}

// SetCurrentDate moves the clock to the start of the given dd/MM/yyyy day.
func (s *Simulated) SetCurrentDate(date string) (time.Time, error) {
	t, err := ParseDate(date, s.base.Now().Location())
	if err != nil {
		return time.Time{}, err
	}
	s.mu.Lock()
	s.override = &t
	s.mu.Unlock()
	return t, nil
}

// Reset drops the override.
func (s *Simulated) Reset() {
	s.mu.Lock()
	s.override = nil
	s.mu.Unlock()
}

// ParseDate parses a dd/MM/yyyy string at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, shortDateLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: '%s' does not follow expected format dd/MM/yyyy", domain.ErrInvalidDate, s)
}

// FormatDate renders t with DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateValidator parses user dates and checks them against the scheduling window of its clock.
type DateValidator struct {
	clock Clock
}

// NewDateValidator returns a validator reading "now" from c.
func NewDateValidator(c Clock) *DateValidator {
	return &DateValidator{clock: c}
}

// Now returns the validator's current time.
func (v *DateValidator) Now() time.Time {
	return v.clock.Now()
}

// Parse parses s in the clock's location.
func (v *DateValidator) Parse(s string) (time.Time, error) {
	return ParseDate(s, v.clock.Now().Location())
}

// ParseScheduled parses s and checks it lies strictly within the next year.
func (v *DateValidator) ParseScheduled(s string) (time.Time, error) {
	t, err := v.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	if err := domain.CheckScheduleWindow(t, v.clock.Now()); err != nil {
		return time.Time{}, err
	}
	return t, nil
}
