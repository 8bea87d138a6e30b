package handoff

import (
	"context"
	"sync"
)

// Static and compile-time check to ensure inMemoryQueue implements
// Queue interface.
var _ Queue = (*inMemoryQueue)(nil)

// inMemoryQueue stores messages in an unbounded FIFO buffer. Messages can be
// enqueued concurrently but the returned iterator is not safe for
// concurrent access.
type inMemoryQueue struct {
	mu     sync.Mutex
	msgs   []string
	msg    string
	closed bool
	err    error

	// Wakes up a consumer blocked in Next. Buffered so that producers
	// never wait for the consumer.
	notify chan struct{}
	done   chan struct{}
}

// NewInMemoryQueue creates a new in-memory queue instance. This function can
// serve as a Factory.
func NewInMemoryQueue() Queue {
	return &inMemoryQueue{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Enqueue adds a new message at the end of the queue.
func (q *inMemoryQueue) Enqueue(id string) error {
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()

		return ErrClosed
	}

	q.msgs = append(q.msgs, id)

	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}

	return nil
}

// PendingMessages checks the queue for unconsumed messages.
func (q *inMemoryQueue) PendingMessages() bool {
	q.mu.Lock()

	pending := len(q.msgs) != 0

	q.mu.Unlock()

	return pending
}

// Messages returns an iterator of queued messages.
func (q *inMemoryQueue) Messages() Iterator {
	return q
}

// Close marks the end of input. Calling Close more than once is a no-op.
func (q *inMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.done)
	}

	return nil
}

// Next dequeues the oldest message, blocking while the queue is empty
// and still open.
func (q *inMemoryQueue) Next(ctx context.Context) bool {
	for {
		q.mu.Lock()

		if len(q.msgs) != 0 {
			q.msg = q.msgs[0]
			// Clear the slot so the backing array does not pin the string.
			q.msgs[0] = ""
			q.msgs = q.msgs[1:]

			q.mu.Unlock()

			return true
		}

		if q.closed {
			q.mu.Unlock()

			return false
		}

		q.mu.Unlock()

		select {
		case <-ctx.Done():
			q.mu.Lock()
			q.err = ctx.Err()
			q.mu.Unlock()

			return false
		case <-q.notify:
		case <-q.done:
		}
	}
}

// Message returns the current message.
func (q *inMemoryQueue) Message() string {
	q.mu.Lock()

	msg := q.msg

	q.mu.Unlock()

	return msg
}

// Error returns the last error encountered by the iterator.
func (q *inMemoryQueue) Error() error {
	q.mu.Lock()

	err := q.err

	q.mu.Unlock()

	return err
}
