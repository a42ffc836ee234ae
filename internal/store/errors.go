package store

import "errors"

// Sentinel errors returned by Store operations, matching spec.md §7's
// error kinds for the triple store.
var (
	// ErrOutOfRange is returned when a term id is at or beyond the store's
	// configured capacity for its role (subject/predicate/object).
	ErrOutOfRange = errors.New("store: id out of range")

	// ErrInvalidArgument is returned when the reserved sentinel id 0 is
	// passed as a subject, predicate, or object.
	ErrInvalidArgument = errors.New("store: invalid argument")

	// ErrOutOfMemory is the error kind for a failed posting-list allocation.
	// No Store method in this package returns it.
	ErrOutOfMemory = errors.New("store: out of memory")
)
