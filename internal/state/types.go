package state

import "time"

// Conversation is one summary row in the Registry. A conversation exists
// in the Registry iff the current user is a member.
type Conversation struct {
	ID      int
	Name    string
	IsGroup bool

	// PhotoURL is a presigned, expiring media URL. Empty when the
	// conversation has no photo.
	PhotoURL string
}

// Member describes one conversation member.
type Member struct {
	ID             int
	FirstName      string
	LastName       string
	PhotoURL       string
	TargetLanguage string
	IsAdmin        bool
}

// FullName returns the member's display name.
func (m Member) FullName() string {
	if m.FirstName == "" {
		return m.LastName
	}
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

// Message is one timeline entry with its display-grouping metadata.
type Message struct {
	ConversationID int
	SenderID       int
	OriginalText   string
	OrigLanguage   string
	SentAt         time.Time

	// SenderName is nil when the name label is suppressed because the
	// entry groups under the previous same-sender message.
	SenderName *string

	// DisplayPhoto reports whether the sender avatar is rendered next
	// to this entry.
	DisplayPhoto bool

	// Separator is the date-boundary label rendered above this entry,
	// empty when the previous entry falls on the same day.
	Separator string
}

// Preview is the latest-message summary for one conversation, used for
// list previews and unread badges.
type Preview struct {
	Text          string
	TimeLabel     string
	Read          bool
	TranslationID int
}

// Notice is a user-facing system notice. Fatal notices tell the user the
// session is over and the page must be reloaded.
type Notice struct {
	Visible bool
	Text    string
	Fatal   bool
}
