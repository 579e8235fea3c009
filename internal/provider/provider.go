// Package provider defines the boundary to the chat-network client: the
// commands the gateway issues against a live WhatsApp Web session and the
// lifecycle events the session emits back. The gateway never speaks the
// wire protocol itself; a Client implementation (browser-automation engine
// bridge, or the in-process mock) does.
package provider

import (
	"context"
	"encoding/json"
)

// Client is a single WhatsApp Web session. Exactly one live instance exists
// per process; the lifecycle machine owns it and replaces it wholesale after
// a disconnect (stale in-memory protocol state cannot be resumed).
//
// Command methods may be called concurrently from dispatch handlers. Events
// are delivered on the channel returned by Events, one at a time, until
// Destroy is called.
type Client interface {
	// Initialize starts the session: with restored credentials it attempts
	// a silent handshake, otherwise it begins interactive QR pairing.
	// Lifecycle progress is reported through Events, not the return value;
	// Initialize fails only when the engine itself is unreachable.
	Initialize(ctx context.Context) error

	// Destroy tears the session down and closes the event channel.
	// Safe to call more than once.
	Destroy(ctx context.Context) error

	// SendText delivers a text message to the given chat id
	// (e.g. "628123456789@c.us" or a "...@g.us" group id).
	SendText(ctx context.Context, chatID, text string) (*SendReceipt, error)

	// SendMedia delivers a binary attachment with an optional caption.
	SendMedia(ctx context.Context, chatID string, media Media, caption string) (*SendReceipt, error)

	// IsRegisteredUser reports whether the address belongs to an active
	// account on the network.
	IsRegisteredUser(ctx context.Context, chatID string) (bool, error)

	// Chats returns the session's full live chat list.
	Chats(ctx context.Context) ([]Chat, error)

	// ClearMessages wipes the message history of one chat.
	ClearMessages(ctx context.Context, chatID string) error

	// Events returns the lifecycle/inbound event stream. The channel is
	// closed by Destroy.
	Events() <-chan Event
}

// Factory constructs a fresh Client. restored carries the persisted session
// credentials, or nil when pairing must start from scratch. The lifecycle
// machine calls this once at startup and again after every disconnect.
type Factory func(restored *Credentials) (Client, error)

// Credentials is the opaque session blob handed out by the authenticated
// event. The gateway never looks inside it; it is persisted verbatim and
// handed back to Factory on restart.
type Credentials struct {
	Raw json.RawMessage
}

// Chat is one entry of the session's chat list.
type Chat struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsGroup bool   `json:"isGroup"`
}

// Media is a binary payload ready to send: content type plus
// base64-encoded data, the form the engine accepts.
type Media struct {
	Mimetype string `json:"mimetype"`
	Data     string `json:"data"`
	Filename string `json:"filename,omitempty"`
}

// SendReceipt is the provider's acknowledgement envelope for a delivered
// message, returned verbatim to HTTP callers.
type SendReceipt struct {
	ID        string `json:"id"`
	To        string `json:"to"`
	Timestamp int64  `json:"timestamp"`
	Ack       int    `json:"ack"`
}

// Message is an inbound message as seen by the fixed-command responder.
type Message struct {
	From string `json:"from"`
	Body string `json:"body"`
}
