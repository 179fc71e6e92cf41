package events

import (
	"log/slog"
	"sync"
)

// Handler receives events. Handlers run synchronously on the emitting
// goroutine, in subscription order.
type Handler func(Event)

// Handle identifies a subscription for explicit removal.
type Handle struct {
	eventType Type
	id        uint64
}

type subscriber struct {
	id uint64
	fn Handler
}

// Bus dispatches events to subscribers. A panicking handler is recovered and
// logged; it neither aborts emission to later subscribers nor unsubscribes
// the handler.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   [numTypes][]subscriber
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// On registers a handler for the given event type and returns its Handle.
func (b *Bus) On(t Type, fn Handler) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	h := Handle{eventType: t, id: b.nextID}
	b.subs[t] = append(b.subs[t], subscriber{id: h.id, fn: fn})
	return h
}

// Off removes the subscription identified by h. Unknown handles are ignored.
func (b *Bus) Off(h Handle) {
	if h.eventType >= numTypes {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[h.eventType]
	for i, s := range subs {
		if s.id == h.id {
			b.subs[h.eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Emit delivers ev to all current subscribers of ev.Type, synchronously and
// in subscription order.
func (b *Bus) Emit(ev Event) {
	if ev.Type >= numTypes {
		return
	}

	// Snapshot under lock so handlers may subscribe/unsubscribe freely.
	b.mu.Lock()
	subs := make([]subscriber, len(b.subs[ev.Type]))
	copy(subs, b.subs[ev.Type])
	b.mu.Unlock()

	for _, s := range subs {
		safeCall(s.fn, ev)
	}
}

func safeCall(fn Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked", "event", ev.Type.String(), "panic", r)
		}
	}()
	fn(ev)
}
