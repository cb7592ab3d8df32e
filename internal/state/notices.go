package state

// Notices is the notification side channel. Every engine failure path
// terminates here; nothing from the engine ever propagates into UI
// rendering code as an error value.
type Notices struct {
	store *Store[Notice]
}

// NewNotices creates an empty notice channel.
func NewNotices() *Notices {
	return &Notices{store: NewStore(Notice{})}
}

// Publish surfaces a non-fatal notice.
func (n *Notices) Publish(text string) {
	n.store.Set(Notice{Visible: true, Text: text})
}

// PublishFatal surfaces a session-ending notice, telling the user the
// channel is gone and the page must be reloaded.
func (n *Notices) PublishFatal(text string) {
	n.store.Set(Notice{Visible: true, Text: text, Fatal: true})
}

// Reset hides the current notice.
func (n *Notices) Reset() {
	n.store.Set(Notice{})
}

// Current returns the current notice.
func (n *Notices) Current() Notice {
	return n.store.Get()
}

// Subscribe registers a read-only subscriber and returns its id.
func (n *Notices) Subscribe(fn Subscriber[Notice]) string {
	return n.store.Subscribe(fn)
}

// Unsubscribe removes a subscriber.
func (n *Notices) Unsubscribe(id string) {
	n.store.Unsubscribe(id)
}

// SubscriberCount returns the number of active subscribers.
func (n *Notices) SubscriberCount() int {
	return n.store.SubscriberCount()
}
