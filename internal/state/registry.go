package state

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the ordered conversation store. Order is explicit (an id
// slice alongside the lookup map) and encodes UI recency: the tail of
// the order is the most-recent position, matching list views that grow
// toward the newest conversation.
type Registry struct {
	mu    sync.RWMutex
	order []int
	byID  map[int]Conversation
	subs  map[string]Subscriber[[]Conversation]
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[int]Conversation),
		subs: make(map[string]Subscriber[[]Conversation]),
	}
}

// Get returns the conversation with the given id.
func (r *Registry) Get(id int) (Conversation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	return c, ok
}

// Len returns the number of conversations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Snapshot returns the conversations in recency order.
func (r *Registry) Snapshot() []Conversation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// Upsert inserts or replaces a conversation. A new id is appended at the
// most-recent position; an existing id keeps its position.
func (r *Registry) Upsert(c Conversation) {
	r.mu.Lock()
	if _, ok := r.byID[c.ID]; !ok {
		r.order = append(r.order, c.ID)
	}
	r.byID[c.ID] = c
	snap, subs := r.snapshotLocked(), collectSubs(r.subs)
	r.mu.Unlock()

	notifyAll(subs, snap)
}

// Remove deletes a conversation. Unknown ids are a no-op.
func (r *Registry) Remove(id int) {
	r.mu.Lock()
	if _, ok := r.byID[id]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.byID, id)
	r.order = removeID(r.order, id)
	snap, subs := r.snapshotLocked(), collectSubs(r.subs)
	r.mu.Unlock()

	notifyAll(subs, snap)
}

// MoveToFront pushes the conversation to the most-recent position by
// deleting and reinserting its order entry. Unknown ids are a no-op.
func (r *Registry) MoveToFront(id int) {
	r.mu.Lock()
	if _, ok := r.byID[id]; !ok {
		r.mu.Unlock()
		return
	}
	r.order = append(removeID(r.order, id), id)
	snap, subs := r.snapshotLocked(), collectSubs(r.subs)
	r.mu.Unlock()

	notifyAll(subs, snap)
}

// Subscribe registers a read-only subscriber and returns its id.
func (r *Registry) Subscribe(fn Subscriber[[]Conversation]) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.subs[id] = fn
	r.mu.Unlock()
	return id
}

// Unsubscribe removes a subscriber.
func (r *Registry) Unsubscribe(id string) {
	r.mu.Lock()
	delete(r.subs, id)
	r.mu.Unlock()
}

// SubscriberCount returns the number of active subscribers.
func (r *Registry) SubscriberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

func (r *Registry) snapshotLocked() []Conversation {
	out := make([]Conversation, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

func removeID(order []int, id int) []int {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

func notifyAll[T any](subs []Subscriber[T], v T) {
	for _, fn := range subs {
		fn(v)
	}
}
