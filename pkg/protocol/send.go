package protocol

import (
	"encoding/json"
	"fmt"
)

// MessageCreate is the outbound message-create payload. It is sent over
// the channel verbatim, without envelope wrapping.
type MessageCreate struct {
	ConversationID int    `json:"conversation_id"`
	SenderID       int    `json:"sender_id"`
	OriginalText   string `json:"original_text"`
	OrigLanguage   string `json:"orig_language"`
}

// Encode encodes the payload as a JSON frame.
func (m *MessageCreate) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return data, nil
}
