package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by services, repositories and controllers.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrInvalidDate and ErrDuplicateName are invalid-argument failures; errors.Is matches both.
	ErrInvalidDate   = fmt.Errorf("%w: invalid date", ErrInvalidArgument)
	ErrDuplicateName = fmt.Errorf("%w: duplicate name", ErrInvalidArgument)
)

// invalidArgument builds an ErrInvalidArgument carrying a human-readable reason.
func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
