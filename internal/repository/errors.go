package repository

import "errors"

var (
	// ErrNotFound is wrapped by every lookup that matches no row.
	ErrNotFound = errors.New("not found")

	// ErrPredefinedType is returned when deleting a seeded advance type.
	ErrPredefinedType = errors.New("predefined advance type cannot be deleted")
)
