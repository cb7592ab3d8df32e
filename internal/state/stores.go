package state

// NoSelection is the SelectedID value meaning no conversation is open.
// Conversation ids from the server are positive.
const NoSelection = 0

// Stores aggregates every container owned by one session. Constructed
// per login and discarded with the session, never process-wide.
type Stores struct {
	Conversations *Registry
	SelectedID    *Store[int]
	Roster        *Roster
	Timeline      *Timeline
	Previews      *Previews
	Notices       *Notices

	// CurrentUser is the logged-in member, set during bootstrap.
	CurrentUser *Store[Member]

	// ChatInfoOpen tracks whether the chat-detail panel is showing.
	ChatInfoOpen *Store[bool]

	// ScrollSignal flips true when the view should scroll to the newest
	// message; the UI resets it after scrolling.
	ScrollSignal *Store[bool]
}

// NewStores creates a fresh set of empty containers.
func NewStores() *Stores {
	return &Stores{
		Conversations: NewRegistry(),
		SelectedID:    NewStore(NoSelection),
		Roster:        NewRoster(),
		Timeline:      NewTimeline(),
		Previews:      NewPreviews(),
		Notices:       NewNotices(),
		CurrentUser:   NewStore(Member{}),
		ChatInfoOpen:  NewStore(false),
		ScrollSignal:  NewStore(false),
	}
}
