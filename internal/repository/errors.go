package repository

import "errors"

var (
	// ErrNotFound indicates an entity was not located.
	ErrNotFound = errors.New("repository: not found")

	// ErrUnavailable indicates a database connection could not be acquired.
	ErrUnavailable = errors.New("repository: store unavailable")
)
