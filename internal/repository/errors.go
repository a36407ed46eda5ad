package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a guarded update finds the entity in a
	// different state than expected.
	ErrConflict = errors.New("entity state conflict")
)
