// Package eventbus delivers domain events from producers (the simulated feed,
// transition handlers, a websocket reader) to subscribers without either side
// knowing about transport. It is the seam that lets the lifecycle controller
// swap a real push channel for the in-process feed without changing its merge
// logic.
package eventbus

import (
	"sync"

	"github.com/njnj03/homewatch/pkg/models"
)

// Token identifies a subscription so it can be cancelled later.
type Token int

// Handler receives published events.
type Handler func(models.Event)

// Subscriber is the consumer-facing half of the bus.
type Subscriber interface {
	Subscribe(Handler) Token
	Unsubscribe(Token)
}

// Publisher is the producer-facing half of the bus.
type Publisher interface {
	Publish(models.Event)
}

type subscription struct {
	token   Token
	handler Handler
}

// Bus is an in-process publish/subscribe channel. Handlers run synchronously,
// in subscription order, on the publishing goroutine. Publishing with zero
// subscribers is a no-op.
type Bus struct {
	mu   sync.Mutex
	next Token
	subs []subscription
}

var (
	_ Subscriber = (*Bus)(nil)
	_ Publisher  = (*Bus)(nil)
)

// New returns an empty bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers a handler and returns the token needed to unsubscribe.
func (b *Bus) Subscribe(h Handler) Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.subs = append(b.subs, subscription{token: b.next, handler: h})
	return b.next
}

// Unsubscribe removes the handler registered under token. Events published
// after Unsubscribe returns are never delivered to it. Unknown tokens are
// ignored.
func (b *Bus) Unsubscribe(token Token) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub.token == token {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to every current subscriber in subscription
// order. The subscriber list is snapshotted first so handlers may subscribe
// or unsubscribe without deadlocking.
func (b *Bus) Publish(evt models.Event) {
	b.mu.Lock()
	handlers := make([]Handler, len(b.subs))
	for i, sub := range b.subs {
		handlers[i] = sub.handler
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(evt)
	}
}
