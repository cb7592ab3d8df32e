package engine

import (
	"github.com/babelchat/babel-client/internal/api"
	"github.com/babelchat/babel-client/internal/state"
	"github.com/babelchat/babel-client/pkg/protocol"
)

func conversationFromAPI(c *api.Conversation) state.Conversation {
	out := state.Conversation{
		ID:      c.ID,
		Name:    c.ConversationName,
		IsGroup: c.IsGroupChat,
	}
	if c.PresignedURL != nil {
		out.PhotoURL = *c.PresignedURL
	}
	return out
}

func memberFromAPI(m api.Member) state.Member {
	out := state.Member{
		ID:             m.ID,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		TargetLanguage: m.TargetLanguage,
		IsAdmin:        m.IsAdmin,
	}
	if m.ProfilePhoto != nil {
		out.PhotoURL = *m.ProfilePhoto
	}
	return out
}

func memberFromWire(m protocol.MemberInfo) state.Member {
	out := state.Member{
		ID:             m.ID,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		TargetLanguage: m.TargetLanguage,
		IsAdmin:        m.IsAdmin,
	}
	if m.ProfilePhoto != nil {
		out.PhotoURL = *m.ProfilePhoto
	}
	return out
}

func messageFromHistory(h api.HistoryMessage) state.Message {
	return state.Message{
		ConversationID: h.ConversationID,
		SenderID:       h.SenderID,
		OriginalText:   h.OriginalText,
		OrigLanguage:   h.OrigLanguage,
		SentAt:         h.SentAt,
		SenderName:     h.SenderName,
		DisplayPhoto:   h.DisplayPhoto,
	}
}
