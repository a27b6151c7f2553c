// Package eventbus implements the process-wide publish/subscribe channel the
// orchestration core is built around. Handlers for one publish run to
// completion in registration order; a publish issued from inside a handler is
// queued and dispatched after the current fan-out finishes.
package eventbus

import (
	"context"
	"fmt"
	"sync"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/events"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/logging"
)

// Handler receives the payload published under a topic. Payloads are frozen
// by contract: handlers must not mutate them.
type Handler func(payload any)

type subscription struct {
	id      uint64
	topic   string
	handler Handler
	removed bool
}

type envelope struct {
	topic   string
	payload any
}

// Bus is a synchronous broker with run-to-completion dispatch semantics.
// It is safe for concurrent use; publishes from multiple goroutines are
// serialized onto one dispatch queue.
type Bus struct {
	mu          sync.Mutex
	subs        map[string][]*subscription
	queue       []envelope
	dispatching bool
	nextID      uint64
	logger      logging.Logger
}

// New returns an empty bus. A nil logger is replaced with a no-op one.
func New(logger logging.Logger) *Bus {
	return &Bus{
		subs:   make(map[string][]*subscription),
		logger: logging.OrNop(logger),
	}
}

// Subscribe registers handler for topic and returns a disposer. Handlers for
// the same topic are invoked in registration order.
func (b *Bus) Subscribe(topic string, handler Handler) func() {
	if handler == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	sub := &subscription{id: b.nextID, topic: topic, handler: handler}
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()

	return func() { b.remove(sub) }
}

// Once registers handler for a single delivery, then disposes itself.
func (b *Bus) Once(topic string, handler Handler) func() {
	if handler == nil {
		return func() {}
	}

	var once sync.Once
	var dispose func()
	dispose = b.Subscribe(topic, func(payload any) {
		once.Do(func() {
			dispose()
			handler(payload)
		})
	})
	return dispose
}

// Publish enqueues payload for topic and, unless a dispatch is already in
// flight, drains the queue. A handler that panics is reported on the reserved
// handler-error topic; the remaining handlers still run.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.Lock()
	b.queue = append(b.queue, envelope{topic: topic, payload: payload})
	if b.dispatching {
		b.mu.Unlock()
		return
	}
	b.dispatching = true

	for len(b.queue) > 0 {
		next := b.queue[0]
		b.queue = b.queue[1:]
		handlers := b.snapshot(next.topic)
		b.mu.Unlock()

		for _, sub := range handlers {
			b.invoke(sub, next)
		}

		b.mu.Lock()
	}
	b.dispatching = false
	b.mu.Unlock()
}

func (b *Bus) invoke(sub *subscription, ev envelope) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error(context.Background(), "event handler panicked",
				"topic", ev.topic, "panic", r)
			if ev.topic != events.TopicHandlerError {
				// Enqueue directly: Publish would start a nested drain.
				b.mu.Lock()
				b.queue = append(b.queue, envelope{
					topic: events.TopicHandlerError,
					payload: events.HandlerError{
						Topic:   ev.topic,
						Message: fmt.Sprintf("handler panic: %v", r),
					},
				})
				b.mu.Unlock()
			}
		}
	}()
	sub.handler(ev.payload)
}

// snapshot copies the live handler list for topic. Must be called with the
// lock held.
func (b *Bus) snapshot(topic string) []*subscription {
	live := b.subs[topic]
	out := make([]*subscription, 0, len(live))
	for _, sub := range live {
		if !sub.removed {
			out = append(out, sub)
		}
	}
	return out
}

func (b *Bus) remove(target *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if target.removed {
		return
	}
	target.removed = true

	live := b.subs[target.topic]
	for i, sub := range live {
		if sub.id == target.id {
			b.subs[target.topic] = append(live[:i:i], live[i+1:]...)
			break
		}
	}
	if len(b.subs[target.topic]) == 0 {
		delete(b.subs, target.topic)
	}
}
