package domain

import "context"

// LocationLookup resolves a free-text place query to a named location with coordinates.
// A nil location with a nil error means no match.
type LocationLookup interface {
	Lookup(ctx context.Context, query string) (*Location, error)
}
