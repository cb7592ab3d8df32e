// Package api is the client for the REST collaborator: conversation
// details, message history, read receipts, and the current user.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/babelchat/babel-client/internal/logging"
)

// Client talks to the REST backend. All calls carry the bearer token and
// treat any non-2xx status as an error.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		c.httpc = httpc
	}
}

// New creates a Client for the given base URL and bearer token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		log:     logging.Component("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Me returns the current user with their conversation summaries.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &user); err != nil {
		return nil, fmt.Errorf("failed to fetch current user: %w", err)
	}
	return &user, nil
}

// Conversation fetches one conversation's detail, optionally including
// its latest message.
func (c *Client) Conversation(ctx context.Context, id int, getLatestMsg bool) (*Conversation, error) {
	query := url.Values{"get_latest_msg": {strconv.FormatBool(getLatestMsg)}}

	var convo Conversation
	if err := c.do(ctx, http.MethodGet, "/conversations/"+strconv.Itoa(id), query, nil, &convo); err != nil {
		return nil, fmt.Errorf("failed to fetch conversation %d: %w", id, err)
	}
	return &convo, nil
}

// ConversationMembers fetches the full roster of a conversation in the
// server's authoritative order.
func (c *Client) ConversationMembers(ctx context.Context, id int) (*MembersPage, error) {
	var page MembersPage
	if err := c.do(ctx, http.MethodGet, "/conversations/"+strconv.Itoa(id)+"/members", nil, nil, &page); err != nil {
		return nil, fmt.Errorf("failed to fetch members of conversation %d: %w", id, err)
	}
	return &page, nil
}

// Messages fetches a history page for a conversation, ordered oldest
// first within the page.
func (c *Client) Messages(ctx context.Context, convoID, offset, limit int) ([]HistoryMessage, error) {
	query := url.Values{
		"offset": {strconv.Itoa(offset)},
		"limit":  {strconv.Itoa(limit)},
	}

	var msgs []HistoryMessage
	if err := c.do(ctx, http.MethodGet, "/messages/"+strconv.Itoa(convoID), query, nil, &msgs); err != nil {
		return nil, fmt.Errorf("failed to fetch messages of conversation %d: %w", convoID, err)
	}
	return msgs, nil
}

// MarkRead acknowledges a message's translation as read.
func (c *Client) MarkRead(ctx context.Context, translationID int) error {
	body := map[string]int{"is_read": 1}
	if err := c.do(ctx, http.MethodPatch, "/translations/"+strconv.Itoa(translationID), nil, body, nil); err != nil {
		return fmt.Errorf("failed to mark translation %d read: %w", translationID, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("request failed")
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
