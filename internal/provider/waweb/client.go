// Package waweb bridges the gateway to an external WhatsApp Web engine
// sidecar (the browser-automation process that speaks the actual wire
// protocol). Commands go over JSON HTTP; lifecycle and inbound events
// arrive on the engine's websocket stream.
package waweb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/wagate/backend/internal/provider"
)

// Client implements provider.Client against an engine instance.
type Client struct {
	baseURL string
	token   string
	http    *http.Client

	restored *provider.Credentials
	events   chan provider.Event

	mu        sync.Mutex
	destroyed bool
	cancel    context.CancelFunc
}

// New builds a bridge to the engine at baseURL. restored credentials, if
// any, are handed to the engine on Initialize so it can skip pairing.
func New(baseURL, token string, restored *provider.Credentials) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		http:     http.DefaultClient,
		restored: restored,
		events:   make(chan provider.Event, 32),
	}
}

// Factory returns a provider.Factory bound to one engine endpoint.
func Factory(baseURL, token string) provider.Factory {
	return func(restored *provider.Credentials) (provider.Client, error) {
		return New(baseURL, token, restored), nil
	}
}

// Initialize starts a session on the engine and begins consuming its event
// stream. Fails only when the engine itself cannot be reached.
func (c *Client) Initialize(ctx context.Context) error {
	var sess json.RawMessage
	if c.restored != nil {
		sess = c.restored.Raw
	}
	req := map[string]any{
		"requestId": uuid.NewString(),
		"session":   sess,
	}
	if err := c.post(ctx, "/api/session/start", req, nil); err != nil {
		return fmt.Errorf("starting engine session: %w", err)
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	go c.readEvents(streamCtx)
	return nil
}

// Destroy stops the engine session and closes the event channel. Safe to
// call more than once.
func (c *Client) Destroy(ctx context.Context) error {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return nil
	}
	c.destroyed = true
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	// Best effort: the engine reaps dead sessions on its own.
	if err := c.post(ctx, "/api/session/stop", map[string]any{}, nil); err != nil {
		close(c.events)
		return fmt.Errorf("stopping engine session: %w", err)
	}
	close(c.events)
	return nil
}

func (c *Client) Events() <-chan provider.Event {
	return c.events
}

func (c *Client) SendText(ctx context.Context, chatID, text string) (*provider.SendReceipt, error) {
	var receipt provider.SendReceipt
	err := c.post(ctx, "/api/send-text", map[string]any{
		"chatId": chatID,
		"body":   text,
	}, &receipt)
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *Client) SendMedia(ctx context.Context, chatID string, media provider.Media, caption string) (*provider.SendReceipt, error) {
	var receipt provider.SendReceipt
	err := c.post(ctx, "/api/send-media", map[string]any{
		"chatId":  chatID,
		"media":   media,
		"caption": caption,
	}, &receipt)
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *Client) IsRegisteredUser(ctx context.Context, chatID string) (bool, error) {
	var resp struct {
		Registered bool `json:"registered"`
	}
	q := url.Values{"chatId": {chatID}}
	if err := c.get(ctx, "/api/registered?"+q.Encode(), &resp); err != nil {
		return false, err
	}
	return resp.Registered, nil
}

func (c *Client) Chats(ctx context.Context) ([]provider.Chat, error) {
	var chats []provider.Chat
	if err := c.get(ctx, "/api/chats", &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (c *Client) ClearMessages(ctx context.Context, chatID string) error {
	return c.post(ctx, "/api/clear-messages", map[string]any{"chatId": chatID}, nil)
}

// --- HTTP plumbing ---

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading engine response: %w", err)
	}

	if resp.StatusCode >= 400 {
		// Surface the engine's error text verbatim; callers pass it
		// straight through to HTTP clients.
		var engineErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &engineErr) == nil && engineErr.Error != "" {
			return fmt.Errorf("%s", engineErr.Error)
		}
		return fmt.Errorf("engine returned %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing engine response: %w", err)
	}
	return nil
}
