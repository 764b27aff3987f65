package store

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrInvalidID indicates a supplied id is not a well-formed identifier.
	// Distinct from ErrNotFound: the store is never queried with a bad id.
	ErrInvalidID = errors.New("invalid id")

	// ErrNotFound indicates a well-formed id with no matching resource.
	ErrNotFound = errors.New("not found")
)

// newID returns a fresh server-assigned opaque identifier.
func newID() string {
	return uuid.NewString()
}

// validateID checks that an id is well-formed before it reaches the store.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}
