// Package state owns the in-memory state containers of the sync engine:
// the conversation registry, the member roster, the message timeline,
// the latest-message previews, and the notification side channel.
//
// Each container has exactly one mutation path (the engine) and any
// number of passive subscribers. Subscribers receive snapshots, never
// references into container internals.
package state

import (
	"sync"

	"github.com/google/uuid"
)

// Subscriber receives a snapshot whenever the observed container changes.
type Subscriber[T any] func(T)

// Store is an observable value. Subscriptions are keyed by generated ids
// so multiple views can attach and detach independently.
type Store[T any] struct {
	mu    sync.RWMutex
	value T
	subs  map[string]Subscriber[T]
}

// NewStore creates a Store holding initial.
func NewStore[T any](initial T) *Store[T] {
	return &Store[T]{
		value: initial,
		subs:  make(map[string]Subscriber[T]),
	}
}

// Get returns the current value.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value and notifies subscribers.
func (s *Store[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	subs := collectSubs(s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Update applies fn to the current value under the container lock, so the
// written value is always derived from a fresh read.
func (s *Store[T]) Update(fn func(T) T) {
	s.mu.Lock()
	s.value = fn(s.value)
	v := s.value
	subs := collectSubs(s.subs)
	s.mu.Unlock()

	for _, f := range subs {
		f(v)
	}
}

// Subscribe registers a read-only subscriber and returns its id.
func (s *Store[T]) Subscribe(fn Subscriber[T]) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.subs[id] = fn
	s.mu.Unlock()
	return id
}

// Unsubscribe removes a subscriber. Unknown ids are a no-op.
func (s *Store[T]) Unsubscribe(id string) {
	s.mu.Lock()
	delete(s.subs, id)
	s.mu.Unlock()
}

// SubscriberCount returns the number of active subscribers.
func (s *Store[T]) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// collectSubs copies the subscriber set so callbacks run outside the
// container lock.
func collectSubs[T any](subs map[string]Subscriber[T]) []Subscriber[T] {
	out := make([]Subscriber[T], 0, len(subs))
	for _, fn := range subs {
		out = append(out, fn)
	}
	return out
}
