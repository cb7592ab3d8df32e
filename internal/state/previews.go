package state

import (
	"sync"

	"github.com/google/uuid"
)

// Previews maps conversation ids to their latest-message preview. Every
// new message overwrites the entry for its conversation, whether or not
// that conversation is currently open.
type Previews struct {
	mu      sync.RWMutex
	entries map[int]Preview
	subs    map[string]Subscriber[map[int]Preview]
}

// NewPreviews creates an empty preview index.
func NewPreviews() *Previews {
	return &Previews{
		entries: make(map[int]Preview),
		subs:    make(map[string]Subscriber[map[int]Preview]),
	}
}

// Set overwrites the preview for a conversation.
func (p *Previews) Set(convoID int, pv Preview) {
	p.mu.Lock()
	p.entries[convoID] = pv
	snap, subs := p.snapshotLocked(), collectSubs(p.subs)
	p.mu.Unlock()

	notifyAll(subs, snap)
}

// Get returns the preview for a conversation.
func (p *Previews) Get(convoID int) (Preview, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pv, ok := p.entries[convoID]
	return pv, ok
}

// Remove drops the preview for a conversation.
func (p *Previews) Remove(convoID int) {
	p.mu.Lock()
	if _, ok := p.entries[convoID]; !ok {
		p.mu.Unlock()
		return
	}
	delete(p.entries, convoID)
	snap, subs := p.snapshotLocked(), collectSubs(p.subs)
	p.mu.Unlock()

	notifyAll(subs, snap)
}

// MarkRead sets the read flag on a conversation's preview, used when the
// user opens that conversation. Unknown ids are a no-op.
func (p *Previews) MarkRead(convoID int) {
	p.mu.Lock()
	pv, ok := p.entries[convoID]
	if !ok || pv.Read {
		p.mu.Unlock()
		return
	}
	pv.Read = true
	p.entries[convoID] = pv
	snap, subs := p.snapshotLocked(), collectSubs(p.subs)
	p.mu.Unlock()

	notifyAll(subs, snap)
}

// Snapshot returns a copy of the preview index.
func (p *Previews) Snapshot() map[int]Preview {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshotLocked()
}

// Subscribe registers a read-only subscriber and returns its id.
func (p *Previews) Subscribe(fn Subscriber[map[int]Preview]) string {
	id := uuid.NewString()
	p.mu.Lock()
	p.subs[id] = fn
	p.mu.Unlock()
	return id
}

// Unsubscribe removes a subscriber.
func (p *Previews) Unsubscribe(id string) {
	p.mu.Lock()
	delete(p.subs, id)
	p.mu.Unlock()
}

// SubscriberCount returns the number of active subscribers.
func (p *Previews) SubscriberCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs)
}

func (p *Previews) snapshotLocked() map[int]Preview {
	out := make(map[int]Preview, len(p.entries))
	for id, pv := range p.entries {
		out[id] = pv
	}
	return out
}
