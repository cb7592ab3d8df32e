package api

import "time"

// LatestMessage is the optional latest-message block on a conversation
// response. RelevantTranslation is the message text in the current
// user's language.
type LatestMessage struct {
	ID                  int       `json:"id"`
	ConversationID      int       `json:"conversation_id"`
	SenderID            int       `json:"sender_id"`
	SentAt              time.Time `json:"sent_at"`
	RelevantTranslation string    `json:"relevant_translation"`
	TranslationID       int       `json:"translation_id"`
	IsRead              int       `json:"is_read"`
}

// Conversation is the detail response for one conversation.
type Conversation struct {
	ID               int            `json:"id"`
	ConversationName string         `json:"conversation_name"`
	IsGroupChat      bool           `json:"is_group_chat"`
	PresignedURL     *string        `json:"presigned_url"`
	LatestMessage    *LatestMessage `json:"latest_message"`
}

// Member is one conversation member.
type Member struct {
	ID             int     `json:"id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	ProfilePhoto   *string `json:"profile_photo"`
	TargetLanguage string  `json:"target_language"`
	IsAdmin        bool    `json:"is_admin"`
}

// MembersPage is the roster response for one conversation. SortedIDs is
// the server's authoritative member ordering.
type MembersPage struct {
	SortedIDs []int    `json:"sorted_member_ids"`
	Members   []Member `json:"members"`
}

// User is the current-user response, including conversation summaries in
// recency order (oldest activity first).
type User struct {
	Member
	Conversations []Conversation `json:"conversations"`
}

// HistoryMessage is one row of a message-history page.
type HistoryMessage struct {
	ConversationID int       `json:"conversation_id"`
	SenderID       int       `json:"sender_id"`
	OriginalText   string    `json:"original_text"`
	OrigLanguage   string    `json:"orig_language"`
	SentAt         time.Time `json:"sent_at"`
	SenderName     *string   `json:"sender_name"`
	DisplayPhoto   bool      `json:"display_photo"`
}
