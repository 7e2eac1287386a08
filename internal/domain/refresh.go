package domain

import (
	"strings"
	"time"
)

// RefreshPolicy decides which SCHEDULED events the refresh sweep moves to PAST.
type RefreshPolicy int

const (
	// RefreshAtOrAfterNow moves every event dated at or after the current clock reference.
	// This is the default.
	RefreshAtOrAfterNow RefreshPolicy = iota
	// RefreshElapsed moves every event whose date is at or before the current clock reference.
	RefreshElapsed
)

// ParseRefreshPolicy accepts "at-or-after" (or empty) and "elapsed".
func ParseRefreshPolicy(s string) (RefreshPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "at-or-after":
		return RefreshAtOrAfterNow, nil
	case "elapsed":
		return RefreshElapsed, nil
	}
	return RefreshAtOrAfterNow, invalidArgument("unknown refresh policy %q", s)
}

func (p RefreshPolicy) String() string {
	if p == RefreshElapsed {
		return "elapsed"
	}
	return "at-or-after"
}

// Due reports whether an event dated date moves to PAST when the clock reads now.
func (p RefreshPolicy) Due(date, now time.Time) bool {
	if p == RefreshElapsed {
		return !date.After(now)
	}
	return !date.Before(now)
}
