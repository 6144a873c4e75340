package store

import "errors"

var (
	// ErrNotFound is returned when a lookup matches nothing, including when
	// the id is not a valid ObjectID or UUID.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("store: duplicate")
)
