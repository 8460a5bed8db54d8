package core

import (
	"context"
	"errors"
	"sync"
)

// Frame is one serialized signaling message.
type Frame []byte

var ErrOutboxClosed = errors.New("outbox closed")

// Outbox is the per-peer outbound queue drained by the connection's writer.
// Push never blocks, so a stalled reader on one connection cannot delay
// delivery to any other peer. The queue is unbounded; a truly unresponsive
// peer grows it without limit until its connection is torn down.
type Outbox struct {
	mu     sync.Mutex
	queue  []Frame
	wake   chan struct{}
	closed bool
}

func NewOutbox() *Outbox {
	return &Outbox{wake: make(chan struct{}, 1)}
}

// Push enqueues a frame. It fails only after Close.
func (o *Outbox) Push(f Frame) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrOutboxClosed
	}
	o.queue = append(o.queue, f)
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
	return nil
}

// Pop returns the next frame in FIFO order, blocking until one is enqueued,
// the outbox is closed and drained, or ctx is done. Single consumer.
func (o *Outbox) Pop(ctx context.Context) (Frame, error) {
	for {
		o.mu.Lock()
		if len(o.queue) > 0 {
			f := o.queue[0]
			o.queue = o.queue[1:]
			o.mu.Unlock()
			return f, nil
		}
		closed := o.closed
		o.mu.Unlock()

		if closed {
			return nil, ErrOutboxClosed
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-o.wake:
		}
	}
}

// Close rejects further pushes. Frames already enqueued can still be popped.
func (o *Outbox) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}
