// Package engine owns the push-channel session: connection lifecycle,
// packet dispatch, and the user actions that mutate the shared state
// containers. One Session exists per logged-in user and dies with the
// channel; there is no automatic reconnect.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/rs/zerolog"

	"github.com/babelchat/babel-client/internal/api"
	"github.com/babelchat/babel-client/internal/logging"
	"github.com/babelchat/babel-client/internal/state"
	"github.com/babelchat/babel-client/pkg/protocol"
)

const defaultPageSize = 30

// maxTransportErrors is how many consecutive non-close read errors the
// loop tolerates before treating the channel as dead.
const maxTransportErrors = 3

// Config holds the session parameters.
type Config struct {
	// SocketURL is the push channel endpoint; token and user identity
	// are appended as percent-encoded query parameters.
	SocketURL string
	Token     string
	UserEmail string

	// PageSize is the history page length for LoadOlder.
	PageSize int
}

// Session is the realtime synchronization engine for one login.
type Session struct {
	cfg    Config
	api    *api.Client
	stores *state.Stores
	log    zerolog.Logger

	mu   sync.RWMutex
	conn net.Conn

	selected *state.SelectedConversation
	unsubs   []func()

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewSession creates a Session around the given REST client and state
// containers. The session immediately attaches its internal listeners;
// Close detaches them again.
func NewSession(cfg Config, apiClient *api.Client, stores *state.Stores) *Session {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}

	s := &Session{
		cfg:    cfg,
		api:    apiClient,
		stores: stores,
		log:    logging.Component("engine"),
		done:   make(chan struct{}),
	}

	s.selected = state.DeriveSelectedConversation(stores.Conversations, stores.SelectedID)
	s.unsubs = append(s.unsubs, s.selected.Close)

	noticeSub := stores.Notices.Subscribe(func(n state.Notice) {
		if n.Visible {
			s.log.Debug().Bool("fatal", n.Fatal).Str("text", n.Text).Msg("notice published")
		}
	})
	s.unsubs = append(s.unsubs, func() { stores.Notices.Unsubscribe(noticeSub) })

	return s
}

// Stores returns the session's state containers for read subscriptions.
func (s *Session) Stores() *state.Stores {
	return s.stores
}

// SelectedConversation returns the derived view of the currently open
// conversation.
func (s *Session) SelectedConversation() *state.Store[state.Conversation] {
	return s.selected.Store()
}

// Connect dials the push channel and starts the read loop. Exactly one
// channel exists per session; a second call while connected is an error.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.RLock()
	connected := s.conn != nil
	s.mu.RUnlock()
	if connected {
		return errors.New("already connected")
	}

	endpoint, err := channelURL(s.cfg)
	if err != nil {
		return err
	}

	conn, _, _, err := ws.Dial(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to channel: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	s.wg.Add(1)
	go s.readLoop(conn)

	s.log.Info().Str("user", s.cfg.UserEmail).Msg("channel connected")
	return nil
}

// IsConnected reports whether the channel is up.
func (s *Session) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn != nil
}

// Close tears the session down: internal listeners are detached exactly
// once and the transport is closed if present. Safe to call repeatedly
// or when never connected.
func (s *Session) Close() error {
	s.teardown()
	s.wg.Wait()
	return nil
}

// readLoop is the single consumer of the channel. All packet handling
// runs serially here, so no two handlers' mutations can interleave.
func (s *Session) readLoop(conn net.Conn) {
	defer s.wg.Done()

	errCount := 0
	for {
		frame, err := wsutil.ReadServerText(conn)
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}

			errCount++
			if isClosed(err) || errCount >= maxTransportErrors {
				s.log.Warn().Err(err).Msg("channel closed")
				s.teardown()
				s.stores.Notices.PublishFatal("Connection to the chat server was lost. Please reload the page.")
				return
			}

			s.log.Error().Err(err).Msg("channel transport error")
			s.stores.Notices.Publish("A connection issue occurred. Updates may be delayed.")
			continue
		}
		errCount = 0

		s.handleFrame(frame)
	}
}

// handleFrame decodes one frame and dispatches it. Malformed frames are
// dropped; unknown tags are skipped for forward compatibility.
func (s *Session) handleFrame(frame []byte) {
	pkt, err := protocol.Decode(frame)
	if errors.Is(err, protocol.ErrUnknownType) {
		s.log.Debug().Err(err).Msg("skipping unknown packet")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("dropping malformed frame")
		s.stores.Notices.Publish("Received an unreadable update from the server.")
		return
	}

	s.dispatch(context.Background(), pkt)
}

func (s *Session) teardown() {
	s.closeOnce.Do(func() {
		close(s.done)
		for _, unsub := range s.unsubs {
			unsub()
		}
		s.unsubs = nil
	})

	s.mu.Lock()
	if s.conn != nil {
		_ = wsutil.WriteClientMessage(s.conn, ws.OpClose, nil)
		_ = s.conn.Close()
		s.conn = nil
	}
	s.mu.Unlock()
}

func channelURL(cfg Config) (string, error) {
	u, err := url.Parse(cfg.SocketURL)
	if err != nil {
		return "", fmt.Errorf("invalid socket URL: %w", err)
	}
	q := u.Query()
	q.Set("token", cfg.Token)
	q.Set("user_email", cfg.UserEmail)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func isClosed(err error) bool {
	var closed wsutil.ClosedError
	return errors.As(err, &closed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed)
}
