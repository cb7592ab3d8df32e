package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gobwas/ws/wsutil"

	"github.com/babelchat/babel-client/internal/state"
	"github.com/babelchat/babel-client/internal/timeutil"
	"github.com/babelchat/babel-client/pkg/protocol"
)

// Bootstrap loads the current user and their conversation summaries into
// the registry and preview index. Called once after login, before or
// after Connect.
func (s *Session) Bootstrap(ctx context.Context) error {
	user, err := s.api.Me(ctx)
	if err != nil {
		s.stores.Notices.Publish("Your conversations could not be loaded.")
		return err
	}

	s.stores.CurrentUser.Set(memberFromAPI(user.Member))

	for i := range user.Conversations {
		c := &user.Conversations[i]
		s.stores.Conversations.Upsert(conversationFromAPI(c))

		if lm := c.LatestMessage; lm != nil && lm.RelevantTranslation != "" {
			s.stores.Previews.Set(c.ID, state.Preview{
				Text:          lm.RelevantTranslation,
				TimeLabel:     timeutil.RelativeLabel(lm.SentAt, time.Now()),
				Read:          lm.IsRead == 1,
				TranslationID: lm.TranslationID,
			})
		}
	}

	s.log.Info().Int("conversations", len(user.Conversations)).Msg("bootstrap complete")
	return nil
}

// Select opens a conversation: the timeline resets and the roster plus
// the first history page load fresh from the backend. Selecting the
// already-open conversation is a no-op.
func (s *Session) Select(ctx context.Context, convoID int) error {
	if s.stores.SelectedID.Get() == convoID {
		return nil
	}

	s.stores.SelectedID.Set(convoID)
	s.stores.Timeline.Reset()
	s.stores.Roster.Clear()
	s.stores.ChatInfoOpen.Set(false)
	s.stores.Previews.MarkRead(convoID)

	page, err := s.api.ConversationMembers(ctx, convoID)
	if err != nil {
		s.stores.Notices.Publish("Conversation members could not be loaded.")
		return err
	}

	// The selection may have moved on while the roster was in flight;
	// a superseded load is dropped.
	if s.stores.SelectedID.Get() != convoID {
		return nil
	}

	members := make(map[int]state.Member, len(page.Members))
	for _, m := range page.Members {
		members[m.ID] = memberFromAPI(m)
	}
	s.stores.Roster.SetMembers(page.SortedIDs, members)

	return s.LoadOlder(ctx)
}

// LoadOlder fetches the next history page for the open conversation and
// prepends it. Calls while a fetch is in flight, or after the full
// history has loaded, are no-ops.
func (s *Session) LoadOlder(ctx context.Context) error {
	convoID := s.stores.SelectedID.Get()
	if convoID == state.NoSelection {
		return nil
	}

	offset, ok := s.stores.Timeline.BeginFetch()
	if !ok {
		return nil
	}

	msgs, err := s.api.Messages(ctx, convoID, offset, s.cfg.PageSize)
	if err != nil {
		s.stores.Timeline.AbortFetch()
		s.stores.Notices.Publish("Older messages could not be loaded.")
		return err
	}

	if s.stores.SelectedID.Get() != convoID {
		s.stores.Timeline.AbortFetch()
		return nil
	}

	batch := make([]state.Message, 0, len(msgs))
	for _, m := range msgs {
		batch = append(batch, messageFromHistory(m))
	}
	s.stores.Timeline.Prepend(batch, s.cfg.PageSize)
	return nil
}

// Send submits a new message on the open conversation. The payload goes
// over the channel verbatim and the message is echoed into the timeline
// without waiting for the server round-trip.
func (s *Session) Send(text string) error {
	convoID := s.stores.SelectedID.Get()
	if convoID == state.NoSelection {
		return errors.New("no conversation selected")
	}

	user := s.stores.CurrentUser.Get()
	payload := &protocol.MessageCreate{
		ConversationID: convoID,
		SenderID:       user.ID,
		OriginalText:   text,
		OrigLanguage:   user.TargetLanguage,
	}
	frame, err := payload.Encode()
	if err != nil {
		return err
	}

	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		return errors.New("not connected")
	}

	if err := wsutil.WriteClientText(conn, frame); err != nil {
		s.stores.Notices.Publish("Your message could not be sent.")
		return fmt.Errorf("failed to send message: %w", err)
	}

	now := time.Now()
	name := user.FullName()
	s.stores.Timeline.Append(state.Message{
		ConversationID: convoID,
		SenderID:       user.ID,
		OriginalText:   text,
		OrigLanguage:   user.TargetLanguage,
		SentAt:         now,
		SenderName:     &name,
		DisplayPhoto:   true,
	})
	s.stores.ScrollSignal.Set(true)

	s.stores.Previews.Set(convoID, state.Preview{
		Text:      text,
		TimeLabel: timeutil.RelativeLabel(now, now),
		Read:      true,
	})
	s.stores.Conversations.MoveToFront(convoID)

	return nil
}
