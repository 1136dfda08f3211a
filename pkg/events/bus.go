package events

import (
	"context"
	"errors"
)

// DefaultChannelCapacity bounds the in-memory queue when no capacity is
// configured. The bound caps memory under event storms; full producers block.
const DefaultChannelCapacity = 10000

var ErrBusClosed = errors.New("event bus closed")

// Bus is the bounded FIFO channel between committed units of work and the
// dispatcher. Many producers, exactly one consumer. Delivery is at-most-once
// and memory-resident: events still queued when the process dies are lost.
type Bus struct {
	ch chan Event
}

func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultChannelCapacity
	}
	return &Bus{ch: make(chan Event, capacity)}
}

// Publish enqueues the event, blocking while the channel is full. A canceled
// context aborts the wait; the event is then dropped by the caller's choice,
// never silently by the bus.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	if event == nil {
		return errors.New("event is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case b.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive exposes the consumer side. Only the dispatcher may read from it.
func (b *Bus) Receive() <-chan Event {
	return b.ch
}

// Depth returns the number of queued events, for metrics.
func (b *Bus) Depth() int {
	return len(b.ch)
}

// Capacity returns the configured bound.
func (b *Bus) Capacity() int {
	return cap(b.ch)
}
