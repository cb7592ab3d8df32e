package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babelchat/babel-client/internal/api"
)

func TestClient_Me(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users/me", r.URL.Path)
		assert.Equal(t, "Bearer tkn", r.Header.Get("Authorization"))

		io.WriteString(w, `{
			"id": 4,
			"first_name": "ada",
			"last_name": "lovelace",
			"target_language": "english",
			"conversations": [
				{"id": 1, "conversation_name": "maths", "is_group_chat": true,
				 "latest_message": {"id": 2, "conversation_id": 1, "sender_id": 9,
				  "sent_at": "2026-08-30T10:00:00Z", "relevant_translation": "see you",
				  "translation_id": 77, "is_read": 0}}
			]
		}`)
	}))
	defer srv.Close()

	client := api.New(srv.URL, "tkn")
	user, err := client.Me(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 4, user.ID)
	require.Len(t, user.Conversations, 1)
	convo := user.Conversations[0]
	assert.True(t, convo.IsGroupChat)
	require.NotNil(t, convo.LatestMessage)
	assert.Equal(t, 77, convo.LatestMessage.TranslationID)
	assert.Zero(t, convo.LatestMessage.IsRead)
}

func TestClient_Conversation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversations/7", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("get_latest_msg"))
		io.WriteString(w, `{"id": 7, "conversation_name": "trip", "is_group_chat": false, "presigned_url": null, "latest_message": null}`)
	}))
	defer srv.Close()

	client := api.New(srv.URL, "tkn")
	convo, err := client.Conversation(t.Context(), 7, true)
	require.NoError(t, err)

	assert.Equal(t, "trip", convo.ConversationName)
	assert.Nil(t, convo.PresignedURL)
	assert.Nil(t, convo.LatestMessage)
}

func TestClient_Messages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages/3", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("offset"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		io.WriteString(w, `[
			{"conversation_id": 3, "sender_id": 1, "original_text": "hi",
			 "orig_language": "english", "sent_at": "2026-08-30T10:00:00Z",
			 "sender_name": "ada lovelace", "display_photo": true}
		]`)
	}))
	defer srv.Close()

	client := api.New(srv.URL, "tkn")
	msgs, err := client.Messages(t.Context(), 3, 20, 10)
	require.NoError(t, err)

	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].SenderName)
	assert.Equal(t, "ada lovelace", *msgs[0].SenderName)
}

func TestClient_MarkRead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/translations/42", r.URL.Path)

		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]int{"is_read": 1}, body)
	}))
	defer srv.Close()

	client := api.New(srv.URL, "tkn")
	require.NoError(t, client.MarkRead(t.Context(), 42))
}

func TestClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "Convo w/ id 9 doesn't exist"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := api.New(srv.URL, "tkn")
	_, err := client.Conversation(t.Context(), 9, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestClient_ConversationMembers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversations/2/members", r.URL.Path)
		io.WriteString(w, `{
			"sorted_member_ids": [5, 1],
			"members": [
				{"id": 5, "first_name": "grace", "last_name": "hopper", "profile_photo": null, "target_language": "english", "is_admin": true},
				{"id": 1, "first_name": "ada", "last_name": "lovelace", "profile_photo": "https://cdn/x", "target_language": "french", "is_admin": false}
			]
		}`)
	}))
	defer srv.Close()

	client := api.New(srv.URL, "tkn")
	page, err := client.ConversationMembers(t.Context(), 2)
	require.NoError(t, err)

	assert.Equal(t, []int{5, 1}, page.SortedIDs)
	require.Len(t, page.Members, 2)
	require.NotNil(t, page.Members[1].ProfilePhoto)
	assert.Equal(t, "https://cdn/x", *page.Members[1].ProfilePhoto)
}
