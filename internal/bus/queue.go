// Package bus is the bounded in-memory event queue between the platform and
// its consumers (journal, archive, metrics). Publishing never blocks the
// matching path; a full queue drops the event and reports it.
package bus

import (
	"context"
	"errors"
	"sync"

	"gxcoin/internal/schema"
)

var (
	ErrQueueFull   = errors.New("event queue full")
	ErrQueueClosed = errors.New("event queue closed")
)

// Queue is a bounded, non-blocking event queue.
type Queue struct {
	mu     sync.RWMutex
	ch     chan schema.Event
	closed bool
}

// NewQueue allocates a queue with the given capacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{ch: make(chan schema.Event, capacity)}
}

// TryPublish enqueues an event without blocking. The read lock keeps the
// send from racing Close's close of the channel.
func (q *Queue) TryPublish(ev schema.Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops the queue from accepting new events. Buffered events remain
// readable until drained.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}

// Run consumes events until the context is done or the queue is closed and
// drained.
func (q *Queue) Run(ctx context.Context, handler func(schema.Event)) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-q.ch:
			if !ok {
				return
			}
			handler(ev)
		}
	}
}
