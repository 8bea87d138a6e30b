package handoff

import (
	"context"
	"errors"
)

// ErrClosed is returned when a message is enqueued after the queue was closed.
var ErrClosed = errors.New("queue closed")

// Queue should be implemented by types that can hand document IDs over
// from a single producer to a single consumer.
type Queue interface {
	// Enqueue adds a new message at the end of the queue. It never blocks.
	Enqueue(id string) error

	// PendingMessages checks the queue for unconsumed messages.
	PendingMessages() bool

	// Messages returns an iterator of queued messages.
	Messages() Iterator

	// Close marks the end of input. Messages enqueued before Close are
	// still delivered; the iterator stops once they are drained.
	Close() error
}

// Iterator should be implemented by types that deliver queued messages.
type Iterator interface {
	// Next blocks until a message is available and returns true, or
	// returns false once the queue is closed and drained or ctx is done.
	Next(ctx context.Context) bool

	// Message returns the current message.
	Message() string

	// Error returns the last error encountered by the iterator.
	Error() error
}

// Factory creates new Queue instances.
type Factory func() Queue
