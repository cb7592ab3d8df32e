package state

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/babelchat/babel-client/internal/timeutil"
)

// GroupWindow is the window inside which consecutive same-sender messages
// share one avatar/name block. The boundary is exclusive: a delta of
// exactly two hours starts a fresh block.
const GroupWindow = 2 * time.Hour

// Timeline is the paginated message sequence for the currently open
// conversation. New messages append at the tail; older history pages
// prepend at the head. Every insertion runs the display-grouping pass,
// whether the message came from the push channel or a history fetch.
type Timeline struct {
	mu        sync.Mutex
	messages  []Message
	offset    int
	loadedAll bool
	loading   bool
	subs      map[string]Subscriber[[]Message]
}

// NewTimeline creates an empty Timeline.
func NewTimeline() *Timeline {
	return &Timeline{
		subs: make(map[string]Subscriber[[]Message]),
	}
}

// Append adds a new message at the tail, applying the grouping rules
// against the previous entry:
//
//   - same sender and strictly less than GroupWindow apart: the previous
//     entry loses its avatar and the new entry loses its name label;
//   - otherwise the previous entry shows its avatar and the new entry
//     keeps its name.
//
// The newest entry always renders its avatar. The pagination offset
// advances so a later history fetch does not re-serve this message.
func (t *Timeline) Append(msg Message) {
	t.mu.Lock()
	if n := len(t.messages); n > 0 {
		prev := &t.messages[n-1]
		if prev.SenderID == msg.SenderID && msg.SentAt.Sub(prev.SentAt) < GroupWindow {
			prev.DisplayPhoto = false
			msg.SenderName = nil
		} else {
			prev.DisplayPhoto = true
		}
		msg.Separator = timeutil.Separator(prev.SentAt, msg.SentAt, time.Now())
	} else {
		msg.Separator = timeutil.Separator(time.Time{}, msg.SentAt, time.Now())
	}
	msg.DisplayPhoto = true

	t.messages = append(t.messages, msg)
	t.offset++
	snap, subs := t.snapshotLocked(), collectSubs(t.subs)
	t.mu.Unlock()

	notifyAll(subs, snap)
}

// BeginFetch reserves the history-fetch slot. It returns the current
// pagination offset, and false when a fetch is already in flight or all
// history has been loaded, in which case the caller must not fetch.
func (t *Timeline) BeginFetch() (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loading || t.loadedAll {
		return 0, false
	}
	t.loading = true
	return t.offset, true
}

// AbortFetch releases the fetch slot without applying results, used when
// the fetch failed or its conversation is no longer selected.
func (t *Timeline) AbortFetch() {
	t.mu.Lock()
	t.loading = false
	t.mu.Unlock()
}

// Prepend completes a fetch begun with BeginFetch: msgs (ordered oldest
// first) go in front of the existing sequence, the offset advances by
// the fetched count, and loadedAll latches once a page comes back
// shorter than the requested limit.
func (t *Timeline) Prepend(msgs []Message, limit int) {
	t.mu.Lock()
	batch := regroup(msgs)

	if len(batch) > 0 && len(t.messages) > 0 {
		last := &batch[len(batch)-1]
		first := &t.messages[0]

		if first.SenderID == last.SenderID && first.SentAt.Sub(last.SentAt) < GroupWindow {
			last.DisplayPhoto = false
			first.SenderName = nil
		} else {
			last.DisplayPhoto = true
		}
		first.Separator = timeutil.Separator(last.SentAt, first.SentAt, time.Now())
	}

	t.messages = append(batch, t.messages...)
	t.offset += len(msgs)
	t.loadedAll = t.loadedAll || len(msgs) < limit
	t.loading = false
	snap, subs := t.snapshotLocked(), collectSubs(t.subs)
	t.mu.Unlock()

	notifyAll(subs, snap)
}

// Reset clears the timeline, used when the selection changes or the
// user is removed from the open conversation.
func (t *Timeline) Reset() {
	t.mu.Lock()
	t.messages = nil
	t.offset = 0
	t.loadedAll = false
	t.loading = false
	snap, subs := t.snapshotLocked(), collectSubs(t.subs)
	t.mu.Unlock()

	notifyAll(subs, snap)
}

// Snapshot returns the messages in display order.
func (t *Timeline) Snapshot() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Len returns the number of timeline entries.
func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// Offset returns the current pagination offset.
func (t *Timeline) Offset() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.offset
}

// LoadedAll reports whether the full history has been fetched.
func (t *Timeline) LoadedAll() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loadedAll
}

// Subscribe registers a read-only subscriber and returns its id.
func (t *Timeline) Subscribe(fn Subscriber[[]Message]) string {
	id := uuid.NewString()
	t.mu.Lock()
	t.subs[id] = fn
	t.mu.Unlock()
	return id
}

// Unsubscribe removes a subscriber.
func (t *Timeline) Unsubscribe(id string) {
	t.mu.Lock()
	delete(t.subs, id)
	t.mu.Unlock()
}

// SubscriberCount returns the number of active subscribers.
func (t *Timeline) SubscriberCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

func (t *Timeline) snapshotLocked() []Message {
	return append([]Message(nil), t.messages...)
}

// regroup runs the grouping pass and separator stamping over a fetched
// history page. Server-provided display metadata is recomputed so pages
// obey the same rules as live appends.
func regroup(msgs []Message) []Message {
	out := append([]Message(nil), msgs...)
	now := time.Now()

	for i := range out {
		out[i].DisplayPhoto = true
		if i == 0 {
			out[i].Separator = timeutil.Separator(time.Time{}, out[i].SentAt, now)
			continue
		}

		prev := &out[i-1]
		if prev.SenderID == out[i].SenderID && out[i].SentAt.Sub(prev.SentAt) < GroupWindow {
			prev.DisplayPhoto = false
			out[i].SenderName = nil
		}
		out[i].Separator = timeutil.Separator(prev.SentAt, out[i].SentAt, now)
	}
	return out
}
