package store

import "errors"

// Sentinel kinds for persistence errors.
var (
	// ErrPathExists is returned when the target path segment already holds
	// a fit and neither overwrite nor append was requested.
	ErrPathExists = errors.New("path segment exists: set overwrite or append")

	// ErrNotFound is returned when loading a path segment that holds no fit.
	ErrNotFound = errors.New("no fit at path segment")

	// ErrBadPrefix marks a path segment that cannot name SQL tables.
	ErrBadPrefix = errors.New("path segment must contain only letters, digits and underscores")
)
