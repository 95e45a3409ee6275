package session

import "errors"

var (
	// ErrViewNotActive is returned when operating on a session whose view is not mounted.
	ErrViewNotActive = errors.New("view not active")

	// ErrItemNotFound is returned when a bench instance id is not on the bench.
	ErrItemNotFound = errors.New("bench item not found")
)
