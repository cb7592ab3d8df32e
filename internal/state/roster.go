package state

import (
	"sync"

	"github.com/google/uuid"
)

// RosterSnapshot is what roster subscribers receive: the server-ordered
// id list plus the member detail map.
type RosterSnapshot struct {
	SortedIDs []int
	Members   map[int]Member
}

// Roster holds the member list for the currently open conversation only.
// Rosters of other conversations are never retained; switching the
// selection replaces the whole roster from a fresh load. The server is
// the source of truth for member ordering, so the id list is always
// taken verbatim and never re-sorted client-side.
type Roster struct {
	mu        sync.RWMutex
	sortedIDs []int
	members   map[int]Member
	subs      map[string]Subscriber[RosterSnapshot]
}

// NewRoster creates an empty Roster.
func NewRoster() *Roster {
	return &Roster{
		members: make(map[int]Member),
		subs:    make(map[string]Subscriber[RosterSnapshot]),
	}
}

// SetMembers replaces the whole roster, used on conversation switch.
func (r *Roster) SetMembers(sortedIDs []int, members map[int]Member) {
	r.mu.Lock()
	r.sortedIDs = append([]int(nil), sortedIDs...)
	r.members = make(map[int]Member, len(members))
	for id, m := range members {
		r.members[id] = m
	}
	snap, subs := r.snapshotLocked(), collectSubs(r.subs)
	r.mu.Unlock()

	notifyAll(subs, snap)
}

// Merge adds the given members to the detail map and replaces the id
// list with the server-provided authoritative ordering.
func (r *Roster) Merge(sortedIDs []int, added []Member) {
	r.mu.Lock()
	for _, m := range added {
		r.members[m.ID] = m
	}
	r.sortedIDs = append([]int(nil), sortedIDs...)
	snap, subs := r.snapshotLocked(), collectSubs(r.subs)
	r.mu.Unlock()

	notifyAll(subs, snap)
}

// RemoveMembers deletes the listed ids from the detail map and replaces
// the id list with the server-provided remainder.
func (r *Roster) RemoveMembers(removed []int, sortedIDs []int) {
	r.mu.Lock()
	for _, id := range removed {
		delete(r.members, id)
	}
	r.sortedIDs = append([]int(nil), sortedIDs...)
	snap, subs := r.snapshotLocked(), collectSubs(r.subs)
	r.mu.Unlock()

	notifyAll(subs, snap)
}

// UpdatePhoto replaces a member's media URL, used when a message carries
// a refreshed presigned URL for its sender. Unknown ids are a no-op.
func (r *Roster) UpdatePhoto(memberID int, url string) {
	r.mu.Lock()
	m, ok := r.members[memberID]
	if !ok {
		r.mu.Unlock()
		return
	}
	m.PhotoURL = url
	r.members[memberID] = m
	snap, subs := r.snapshotLocked(), collectSubs(r.subs)
	r.mu.Unlock()

	notifyAll(subs, snap)
}

// Clear empties the roster.
func (r *Roster) Clear() {
	r.SetMembers(nil, nil)
}

// Member returns the detail entry for one member id.
func (r *Roster) Member(id int) (Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[id]
	return m, ok
}

// SortedIDs returns the server-ordered member id list.
func (r *Roster) SortedIDs() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]int(nil), r.sortedIDs...)
}

// Subscribe registers a read-only subscriber and returns its id.
func (r *Roster) Subscribe(fn Subscriber[RosterSnapshot]) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.subs[id] = fn
	r.mu.Unlock()
	return id
}

// Unsubscribe removes a subscriber.
func (r *Roster) Unsubscribe(id string) {
	r.mu.Lock()
	delete(r.subs, id)
	r.mu.Unlock()
}

// SubscriberCount returns the number of active subscribers.
func (r *Roster) SubscriberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

func (r *Roster) snapshotLocked() RosterSnapshot {
	snap := RosterSnapshot{
		SortedIDs: append([]int(nil), r.sortedIDs...),
		Members:   make(map[int]Member, len(r.members)),
	}
	for id, m := range r.members {
		snap.Members[id] = m
	}
	return snap
}
