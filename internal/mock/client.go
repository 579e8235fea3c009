// Package mock is a scripted in-process stand-in for the chat-network
// engine. It drives the full lifecycle (qr, authenticated, ready) on a
// timer so the gateway can be exercised end to end with no phone attached.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wagate/backend/internal/provider"
)

// Client implements provider.Client with canned data.
type Client struct {
	scanDelay time.Duration
	restored  *provider.Credentials

	mu         sync.Mutex
	ready      bool
	destroyed  bool
	registered map[string]bool
	chats      []provider.Chat
	events     chan provider.Event
}

// NewClient builds a mock session. With restored credentials the script
// skips the QR phase, mirroring a real silent re-authentication.
func NewClient(restored *provider.Credentials) *Client {
	return &Client{
		scanDelay: 2 * time.Second,
		restored:  restored,
		registered: map[string]bool{
			"6281234567890@c.us": true,
			"15550100@c.us":      true,
		},
		chats: []provider.Chat{
			{ID: "6281234567890@c.us", Name: "Andi"},
			{ID: "120363001111111111@g.us", Name: "Team Alpha", IsGroup: true},
			{ID: "120363002222222222@g.us", Name: "Family", IsGroup: true},
		},
		events: make(chan provider.Event, 16),
	}
}

// SetRegistered marks an address as registered (or not) for subsequent
// IsRegisteredUser calls.
func (c *Client) SetRegistered(chatID string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registered[chatID] = ok
}

// SetChats replaces the canned chat list.
func (c *Client) SetChats(chats []provider.Chat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chats = chats
}

// Emit injects an event into the stream, as the engine would.
func (c *Client) Emit(ev provider.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	if ev.Type == provider.EventReady {
		c.ready = true
	}
	if ev.Type == provider.EventDisconnected || ev.Type == provider.EventAuthFailure {
		c.ready = false
	}
	c.events <- ev
}

func (c *Client) Initialize(ctx context.Context) error {
	go c.script(ctx)
	return nil
}

// script plays the pairing sequence. A restored session authenticates
// silently; otherwise a QR is issued and "scanned" after scanDelay.
func (c *Client) script(ctx context.Context) {
	creds := c.restored
	if creds == nil {
		c.Emit(provider.Event{Type: provider.EventQR, QR: "mock-pairing-" + uuid.NewString()})
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.scanDelay):
		}
		blob, _ := json.Marshal(map[string]string{"token": uuid.NewString()})
		creds = &provider.Credentials{Raw: blob}
	}
	c.Emit(provider.Event{Type: provider.EventAuthenticated, Credentials: creds})
	c.Emit(provider.Event{Type: provider.EventReady})
}

func (c *Client) Destroy(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.destroyed {
		c.destroyed = true
		close(c.events)
	}
	return nil
}

func (c *Client) Events() <-chan provider.Event {
	return c.events
}

func (c *Client) receipt(to string) *provider.SendReceipt {
	return &provider.SendReceipt{
		ID:        "true_" + to + "_" + uuid.NewString(),
		To:        to,
		Timestamp: time.Now().Unix(),
		Ack:       1,
	}
}

func (c *Client) checkReady() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return fmt.Errorf("session is destroyed")
	}
	if !c.ready {
		return fmt.Errorf("session is not ready")
	}
	return nil
}

func (c *Client) SendText(_ context.Context, chatID, text string) (*provider.SendReceipt, error) {
	if err := c.checkReady(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("empty message body")
	}
	return c.receipt(chatID), nil
}

func (c *Client) SendMedia(_ context.Context, chatID string, media provider.Media, _ string) (*provider.SendReceipt, error) {
	if err := c.checkReady(); err != nil {
		return nil, err
	}
	if media.Data == "" {
		return nil, fmt.Errorf("empty media payload")
	}
	return c.receipt(chatID), nil
}

func (c *Client) IsRegisteredUser(_ context.Context, chatID string) (bool, error) {
	if err := c.checkReady(); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registered[chatID], nil
}

func (c *Client) Chats(context.Context) ([]provider.Chat, error) {
	if err := c.checkReady(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]provider.Chat, len(c.chats))
	copy(out, c.chats)
	return out, nil
}

func (c *Client) ClearMessages(_ context.Context, chatID string) error {
	return c.checkReady()
}
