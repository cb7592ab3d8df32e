package engine

import (
	"context"
	"time"

	"github.com/babelchat/babel-client/internal/state"
	"github.com/babelchat/babel-client/internal/timeutil"
	"github.com/babelchat/babel-client/pkg/protocol"
)

// dispatch routes one decoded packet to its handler. A handler failure
// is reported through the notice channel and never stalls the loop.
func (s *Session) dispatch(ctx context.Context, pkt protocol.Packet) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Interface("panic", r).
				Str("type", string(pkt.Type())).
				Msg("packet handler panicked")
			s.stores.Notices.Publish("Something went wrong while applying a server update.")
		}
	}()

	switch p := pkt.(type) {
	case *protocol.MessagePacket:
		s.handleMessage(ctx, p)
	case *protocol.ConvoNameUpdate:
		s.handleConvoName(p)
	case *protocol.ConvoPhotoUpdate:
		s.handleConvoPhoto(p)
	case *protocol.SelfAdded:
		s.handleSelfAdded(ctx, p)
	case *protocol.SelfRemoved:
		s.handleSelfRemoved(p)
	case *protocol.MembersAdded:
		s.handleMembersAdded(p)
	case *protocol.MembersRemoved:
		s.handleMembersRemoved(p)
	case *protocol.ErrorPacket:
		s.stores.Notices.Publish(p.Text)
	}
}

// handleMessage applies a new chat message: preview entry, timeline
// append and read receipt when the conversation is open, and recency
// reordering of the registry.
func (s *Session) handleMessage(ctx context.Context, p *protocol.MessagePacket) {
	preview := state.Preview{
		Text:          p.OriginalText,
		TimeLabel:     timeutil.RelativeLabel(p.SentAt, time.Now()),
		Read:          true,
		TranslationID: p.TranslationID,
	}

	if s.stores.SelectedID.Get() == p.ConversationID {
		if p.NewPresigned != nil {
			s.stores.Roster.UpdatePhoto(p.SenderID, *p.NewPresigned)
		}

		name := senderName(p)
		s.stores.Timeline.Append(state.Message{
			ConversationID: p.ConversationID,
			SenderID:       p.SenderID,
			OriginalText:   p.OriginalText,
			OrigLanguage:   p.OrigLanguage,
			SentAt:         p.SentAt,
			SenderName:     &name,
			DisplayPhoto:   true,
		})
		s.stores.ScrollSignal.Set(true)

		if err := s.api.MarkRead(ctx, p.TranslationID); err != nil {
			s.log.Error().Err(err).Int("translation_id", p.TranslationID).Msg("read receipt failed")
			s.stores.Notices.Publish("The new message could not be marked as read.")
		}
	} else {
		preview.Read = false
	}

	s.stores.Previews.Set(p.ConversationID, preview)

	// Recency reordering: a known conversation moves to the most-recent
	// position; an unknown one is fetched and inserted there. A failed
	// fetch aborts only this step, the mutations above stand.
	if _, known := s.stores.Conversations.Get(p.ConversationID); !known {
		detail, err := s.api.Conversation(ctx, p.ConversationID, false)
		if err != nil {
			s.log.Error().Err(err).Int("convo_id", p.ConversationID).Msg("conversation fetch failed")
			s.stores.Notices.Publish("A new conversation could not be loaded.")
			return
		}
		s.stores.Conversations.Upsert(conversationFromAPI(detail))
		return
	}
	s.stores.Conversations.MoveToFront(p.ConversationID)
}

// handleConvoName renames a conversation. A conversation this client has
// not loaded yet is a silent no-op.
func (s *Session) handleConvoName(p *protocol.ConvoNameUpdate) {
	c, ok := s.stores.Conversations.Get(p.ConvoID)
	if !ok {
		return
	}
	c.Name = p.ConversationName
	s.stores.Conversations.Upsert(c)
}

// handleConvoPhoto replaces a conversation's media URL, same lookup
// pattern as handleConvoName.
func (s *Session) handleConvoPhoto(p *protocol.ConvoPhotoUpdate) {
	c, ok := s.stores.Conversations.Get(p.ConvoID)
	if !ok {
		return
	}
	c.PhotoURL = p.PhotoURL
	s.stores.Conversations.Upsert(c)
}

// handleSelfAdded loads the conversation the user was just added to. On
// fetch failure nothing is inserted.
func (s *Session) handleSelfAdded(ctx context.Context, p *protocol.SelfAdded) {
	detail, err := s.api.Conversation(ctx, p.ConvoID, true)
	if err != nil {
		s.log.Error().Err(err).Int("convo_id", p.ConvoID).Msg("conversation fetch failed")
		s.stores.Notices.Publish("You were added to a conversation, but it could not be loaded.")
		return
	}

	if lm := detail.LatestMessage; lm != nil && lm.RelevantTranslation != "" {
		s.stores.Previews.Set(detail.ID, state.Preview{
			Text:          lm.RelevantTranslation,
			TimeLabel:     timeutil.RelativeLabel(lm.SentAt, time.Now()),
			Read:          lm.IsRead == 1,
			TranslationID: lm.TranslationID,
		})
	}
	s.stores.Conversations.Upsert(conversationFromAPI(detail))
}

// handleSelfRemoved drops a conversation the user was removed from. If
// it is the open one, the selection, timeline, roster and detail panel
// are cleared first.
func (s *Session) handleSelfRemoved(p *protocol.SelfRemoved) {
	if s.stores.SelectedID.Get() == p.ConvoID {
		s.stores.SelectedID.Set(state.NoSelection)
		s.stores.Timeline.Reset()
		s.stores.Roster.Clear()
		s.stores.ChatInfoOpen.Set(false)
	}
	s.stores.Conversations.Remove(p.ConvoID)
	s.stores.Previews.Remove(p.ConvoID)
}

// handleMembersAdded merges new members into the roster. The roster only
// exists for the open conversation, so packets for any other
// conversation are dropped.
func (s *Session) handleMembersAdded(p *protocol.MembersAdded) {
	if s.stores.SelectedID.Get() != p.ConvoID {
		return
	}

	added := make([]state.Member, 0, len(p.Members))
	for _, m := range p.Members {
		added = append(added, memberFromWire(m))
	}
	s.stores.Roster.Merge(p.SortedMemberIDs, added)
}

// handleMembersRemoved removes members from the roster, symmetric to
// handleMembersAdded.
func (s *Session) handleMembersRemoved(p *protocol.MembersRemoved) {
	if s.stores.SelectedID.Get() != p.ConvoID {
		return
	}
	s.stores.Roster.RemoveMembers(p.MemberIDs, p.SortedMemberIDs)
}

func senderName(p *protocol.MessagePacket) string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
