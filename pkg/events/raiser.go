package events

// Raiser is implemented by aggregates that buffer domain events until the
// unit-of-work boundary flushes them after a successful commit.
type Raiser interface {
	PullEvents() []Event
}

// Buffer holds the not-yet-published events of a single aggregate instance.
// It is transient bookkeeping and is never persisted.
type Buffer struct {
	pending []Event
}

// Raise appends the event to the buffer. No I/O happens here.
func (b *Buffer) Raise(event Event) {
	if event == nil {
		return
	}
	b.pending = append(b.pending, event)
}

// PullEvents drains the buffer, returning events in insertion order. The
// unit-of-work boundary calls this exactly once per commit.
func (b *Buffer) PullEvents() []Event {
	drained := b.pending
	b.pending = nil
	return drained
}

// HasPending reports whether any events are buffered.
func (b *Buffer) HasPending() bool {
	return len(b.pending) > 0
}
