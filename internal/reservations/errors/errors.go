package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	// ErrNoSearchTerm signals a title search without a term. It carries no
	// results rather than falling back to listing everything.
	ErrNoSearchTerm = errors.New("no search term given")
)
