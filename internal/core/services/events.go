package services

import (
	"sync"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

type subscriber struct {
	id int
	fn func(domain.Event)
}

// Emitter fans events out to subscribers. Services hold an *Emitter rather
// than references to each other's callbacks. A nil Emitter drops events.
type Emitter struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscriber
}

// NewEmitter creates an emitter with no subscribers.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Subscribe registers fn for every subsequent event and returns a function
// that removes it.
func (e *Emitter) Subscribe(fn func(domain.Event)) func() {
	if e == nil || fn == nil {
		return func() {}
	}
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.subs = append(e.subs, subscriber{id: id, fn: fn})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers ev to every subscriber in registration order.
// Subscribers run on the caller's goroutine.
func (e *Emitter) Emit(ev domain.Event) {
	if e == nil {
		return
	}
	e.mu.RLock()
	subs := e.subs
	e.mu.RUnlock()

	for _, s := range subs {
		s.fn(ev)
	}
}

// Toast emits a user-facing notification.
func (e *Emitter) Toast(level domain.ToastLevel, title, message string) {
	e.Emit(domain.Event{Kind: domain.EventToast, Level: level, Title: title, Message: message})
}
