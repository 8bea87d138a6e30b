package index

import "errors"

var (
	// ErrNotFound is returned by a store when it attempts to look up
	// a document that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMissingID is returned when a store attempts to index a document
	// with an empty ID.
	ErrMissingID = errors.New("document has missing / invalid id")

	// ErrTimeout is returned when a request to the store does not complete
	// before its deadline.
	ErrTimeout = errors.New("connection timeout")

	// ErrPartialUpdate is returned by BulkUpdate for each operation of a
	// batch that the store rejected. Operations that succeeded are still
	// reflected in the returned count.
	ErrPartialUpdate = errors.New("bulk update item failed")
)
