package engine

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babelchat/babel-client/internal/api"
	"github.com/babelchat/babel-client/internal/state"
)

// newPushServer runs a fake channel endpoint. Each accepted connection
// is handed to serve on its own goroutine.
func newPushServer(t *testing.T, serve func(conn net.Conn)) (wsURL string) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		go serve(conn)
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newConnectedSession(t *testing.T, serve func(conn net.Conn)) (*Session, *state.Stores) {
	t.Helper()

	stores := state.NewStores()
	sess := NewSession(Config{
		SocketURL: newPushServer(t, serve),
		Token:     "tkn",
		UserEmail: "ada@example.com",
	}, api.New("http://127.0.0.1:0", "tkn"), stores)
	t.Cleanup(func() { sess.Close() })

	require.NoError(t, sess.Connect(t.Context()))
	return sess, stores
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for update")
		panic("unreachable")
	}
}

func TestSession_ConnectAndPush(t *testing.T) {
	frames := make(chan []byte, 1)
	sess, stores := newConnectedSession(t, func(conn net.Conn) {
		wsutil.WriteServerText(conn, <-frames)
	})

	assert.True(t, sess.IsConnected())

	// A rename for a known conversation needs no REST round-trip.
	stores.Conversations.Upsert(state.Conversation{ID: 3, Name: "old"})

	updated := make(chan []state.Conversation, 4)
	stores.Conversations.Subscribe(func(snap []state.Conversation) { updated <- snap })

	frames <- []byte(`{"type": "update_convo_name", "data": {"convo_id": 3, "conversation_name": "renamed"}}`)

	snap := waitFor(t, updated)
	require.Len(t, snap, 1)
	assert.Equal(t, "renamed", snap[0].Name)
}

func TestSession_ConnectTwiceFails(t *testing.T) {
	sess, _ := newConnectedSession(t, func(conn net.Conn) {})
	err := sess.Connect(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already connected")
}

func TestSession_SkipsUnknownAndMalformedFrames(t *testing.T) {
	frames := make(chan []byte, 3)
	sess, stores := newConnectedSession(t, func(conn net.Conn) {
		for f := range frames {
			wsutil.WriteServerText(conn, f)
		}
	})
	_ = sess

	stores.Conversations.Upsert(state.Conversation{ID: 1, Name: "old"})

	updated := make(chan []state.Conversation, 4)
	stores.Conversations.Subscribe(func(snap []state.Conversation) { updated <- snap })

	// Neither the unknown tag nor the garbage frame may stall the loop.
	frames <- []byte(`{"type": "typing_indicator", "data": {}}`)
	frames <- []byte(`this is not json`)
	frames <- []byte(`{"type": "update_convo_name", "data": {"convo_id": 1, "conversation_name": "still alive"}}`)
	close(frames)

	snap := waitFor(t, updated)
	require.Len(t, snap, 1)
	assert.Equal(t, "still alive", snap[0].Name)
}

func TestSession_ServerCloseIsFatal(t *testing.T) {
	wsURL := newPushServer(t, func(conn net.Conn) {
		wsutil.WriteServerMessage(conn, ws.OpClose, nil)
		conn.Close()
	})

	stores := state.NewStores()
	notices := make(chan state.Notice, 4)
	stores.Notices.Subscribe(func(n state.Notice) { notices <- n })

	sess := NewSession(Config{
		SocketURL: wsURL,
		Token:     "tkn",
		UserEmail: "ada@example.com",
	}, api.New("http://127.0.0.1:0", "tkn"), stores)
	t.Cleanup(func() { sess.Close() })
	require.NoError(t, sess.Connect(t.Context()))

	for {
		n := waitFor(t, notices)
		if n.Fatal {
			assert.Contains(t, n.Text, "Connection to the chat server was lost")
			break
		}
	}

	require.NoError(t, sess.Close())
	assert.False(t, sess.IsConnected())
}

func TestSession_CloseDetachesListenersOnce(t *testing.T) {
	sess, stores := newConnectedSession(t, func(conn net.Conn) {})

	// The derived selected-conversation view holds subscriptions on the
	// registry and the selection store.
	assert.NotZero(t, stores.Conversations.SubscriberCount())
	assert.NotZero(t, stores.SelectedID.SubscriberCount())

	require.NoError(t, sess.Close())
	require.NoError(t, sess.Close())

	assert.Zero(t, stores.Conversations.SubscriberCount())
	assert.Zero(t, stores.SelectedID.SubscriberCount())
	assert.Zero(t, stores.Notices.SubscriberCount())
	assert.False(t, sess.IsConnected())
}

func TestSession_CloseWithoutConnect(t *testing.T) {
	stores := state.NewStores()
	sess := NewSession(Config{}, api.New("http://127.0.0.1:0", "tkn"), stores)
	require.NoError(t, sess.Close())
}

func TestChannelURL(t *testing.T) {
	u, err := channelURL(Config{
		SocketURL: "ws://localhost:8000/comms",
		Token:     "a b+c",
		UserEmail: "ada@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8000/comms?token=a+b%2Bc&user_email=ada%40example.com", u)

	_, err = channelURL(Config{SocketURL: "://bad"})
	require.Error(t, err)
}
