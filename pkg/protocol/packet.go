// Package protocol defines the wire contract of the server push channel.
//
// Inbound frames are JSON envelopes {"type": <tag>, "data": <payload>}.
// Decode turns a frame into a Packet exactly once at the boundary; the
// concrete packet types below form a closed sum that dispatchers can
// switch over exhaustively.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PacketType tags an inbound envelope.
type PacketType string

const (
	PacketTypeMessage          PacketType = "message"
	PacketTypeUpdateConvoName  PacketType = "update_convo_name"
	PacketTypeUpdateConvoPhoto PacketType = "update_convo_photo"
	PacketTypeAddSelf          PacketType = "add_self"
	PacketTypeDeleteSelf       PacketType = "delete_self"
	PacketTypeAddMembers       PacketType = "add_members"
	PacketTypeDeleteMembers    PacketType = "delete_members"
	PacketTypeError            PacketType = "error"
)

// ErrUnknownType reports an envelope tag this client does not understand.
// Newer servers may push tags older clients have never heard of; callers
// should skip such frames rather than fail the stream.
var ErrUnknownType = errors.New("unknown packet type")

// Packet is one decoded unit of the push channel stream. The concrete
// types in this package are the only implementations.
type Packet interface {
	Type() PacketType
}

// MessagePacket delivers a new chat message.
type MessagePacket struct {
	ConversationID   int       `json:"conversation_id"`
	ConversationName string    `json:"conversation_name"`
	SenderID         int       `json:"sender_id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	OriginalText     string    `json:"original_text"`
	OrigLanguage     string    `json:"orig_language"`
	SentAt           time.Time `json:"sent_at"`
	TranslationID    int       `json:"translation_id"`
	TargetUserID     int       `json:"target_user_id"`

	// NewPresigned carries a refreshed media URL for the sender's
	// profile photo when the previous presigned URL expired.
	NewPresigned *string `json:"new_presigned"`
}

// ConvoNameUpdate renames a conversation.
type ConvoNameUpdate struct {
	ConvoID          int    `json:"convo_id"`
	ConversationName string `json:"conversation_name"`
}

// ConvoPhotoUpdate replaces a conversation's photo URL.
type ConvoPhotoUpdate struct {
	ConvoID  int    `json:"convo_id"`
	PhotoURL string `json:"photo_url"`
}

// SelfAdded tells the client its user was added to a conversation.
type SelfAdded struct {
	ConvoID int `json:"convo_id"`
}

// SelfRemoved tells the client its user was removed from a conversation.
type SelfRemoved struct {
	ConvoID int `json:"convo_id"`
}

// MemberInfo is the wire shape of one conversation member.
type MemberInfo struct {
	ID             int     `json:"id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	ProfilePhoto   *string `json:"profile_photo"`
	TargetLanguage string  `json:"target_language"`
	IsAdmin        bool    `json:"is_admin"`
}

// MembersAdded announces members joining a conversation. SortedMemberIDs
// is the server's authoritative ordering of the full roster after the
// change; clients must not re-sort.
type MembersAdded struct {
	ConvoID         int          `json:"convo_id"`
	SortedMemberIDs []int        `json:"sorted_member_ids"`
	Members         []MemberInfo `json:"members"`
}

// MembersRemoved announces members leaving a conversation.
// SortedMemberIDs is the server-provided remainder.
type MembersRemoved struct {
	ConvoID         int   `json:"convo_id"`
	MemberIDs       []int `json:"member_ids"`
	SortedMemberIDs []int `json:"sorted_member_ids"`
}

// ErrorPacket carries a human-readable server error. Its envelope data
// is a bare JSON string, not an object.
type ErrorPacket struct {
	Text string
}

func (*MessagePacket) Type() PacketType    { return PacketTypeMessage }
func (*ConvoNameUpdate) Type() PacketType  { return PacketTypeUpdateConvoName }
func (*ConvoPhotoUpdate) Type() PacketType { return PacketTypeUpdateConvoPhoto }
func (*SelfAdded) Type() PacketType        { return PacketTypeAddSelf }
func (*SelfRemoved) Type() PacketType      { return PacketTypeDeleteSelf }
func (*MembersAdded) Type() PacketType     { return PacketTypeAddMembers }
func (*MembersRemoved) Type() PacketType   { return PacketTypeDeleteMembers }
func (*ErrorPacket) Type() PacketType      { return PacketTypeError }

type envelope struct {
	Type PacketType      `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Decode parses one channel frame into a Packet. Unknown tags return
// ErrUnknownType; any other error means the frame is malformed and
// should be dropped.
func Decode(frame []byte) (Packet, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}

	switch env.Type {
	case PacketTypeMessage:
		return decodePayload(env, &MessagePacket{})
	case PacketTypeUpdateConvoName:
		return decodePayload(env, &ConvoNameUpdate{})
	case PacketTypeUpdateConvoPhoto:
		return decodePayload(env, &ConvoPhotoUpdate{})
	case PacketTypeAddSelf:
		return decodePayload(env, &SelfAdded{})
	case PacketTypeDeleteSelf:
		return decodePayload(env, &SelfRemoved{})
	case PacketTypeAddMembers:
		return decodePayload(env, &MembersAdded{})
	case PacketTypeDeleteMembers:
		return decodePayload(env, &MembersRemoved{})
	case PacketTypeError:
		var text string
		if err := json.Unmarshal(env.Data, &text); err != nil {
			return nil, fmt.Errorf("failed to decode %q payload: %w", env.Type, err)
		}
		return &ErrorPacket{Text: text}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

func decodePayload(env envelope, pkt Packet) (Packet, error) {
	if err := json.Unmarshal(env.Data, pkt); err != nil {
		return nil, fmt.Errorf("failed to decode %q payload: %w", env.Type, err)
	}
	return pkt, nil
}
