package event

// Buffer holds events raised by an aggregate until its repository drains
// them. Draining is destructive: the same event is never surfaced twice.
type Buffer struct {
	events []DomainEvent
}

func (b *Buffer) Raise(e DomainEvent) {
	b.events = append(b.events, e)
}

// Drain returns buffered events in raise order and empties the buffer.
func (b *Buffer) Drain() []DomainEvent {
	drained := b.events
	b.events = nil
	return drained
}

func (b *Buffer) Len() int {
	return len(b.events)
}
