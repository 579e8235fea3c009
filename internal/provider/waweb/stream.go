package waweb

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wagate/backend/internal/provider"
)

const (
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
)

// engineEvent is the engine's wire format for stream events.
type engineEvent struct {
	Event   string          `json:"event"`
	QR      string          `json:"qr,omitempty"`
	Session json.RawMessage `json:"session,omitempty"`
	Reason  string          `json:"reason,omitempty"`
	Message *struct {
		From string `json:"from"`
		Body string `json:"body"`
	} `json:"message,omitempty"`
}

// wsURL derives the event-stream endpoint from the HTTP base URL.
func (c *Client) wsURL() string {
	u := c.baseURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/api/events"
}

// readEvents consumes the engine's event stream, reconnecting with
// exponential backoff until the client is destroyed.
func (c *Client) readEvents(ctx context.Context) {
	delay := reconnectBaseDelay
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		header := map[string][]string{}
		if c.token != "" {
			header["Authorization"] = []string{"Bearer " + c.token}
		}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.wsURL(), header)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("engine event stream dial error: %v (retry in %v)", err, delay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay = min(delay*2, reconnectMaxDelay)
			continue
		}
		delay = reconnectBaseDelay

		c.readLoop(ctx, conn)
		conn.Close()
	}
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var raw engineEvent
		if err := json.Unmarshal(data, &raw); err != nil {
			log.Printf("engine event parse error: %v", err)
			continue
		}

		ev, ok := translate(raw)
		if !ok {
			log.Printf("engine sent unknown event %q", raw.Event)
			continue
		}
		if !c.forward(ev) {
			return
		}
	}
}

// forward delivers one event unless the client was destroyed underneath us.
func (c *Client) forward(ev provider.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return false
	}
	select {
	case c.events <- ev:
	default:
		// The machine consumes faster than the engine produces; a full
		// buffer means the consumer is gone.
		log.Println("engine event dropped: buffer full")
	}
	return true
}

func translate(raw engineEvent) (provider.Event, bool) {
	switch raw.Event {
	case "qr":
		return provider.Event{Type: provider.EventQR, QR: raw.QR}, true
	case "authenticated":
		ev := provider.Event{Type: provider.EventAuthenticated}
		if len(raw.Session) > 0 {
			ev.Credentials = &provider.Credentials{Raw: raw.Session}
		}
		return ev, true
	case "ready":
		return provider.Event{Type: provider.EventReady}, true
	case "auth_failure":
		return provider.Event{Type: provider.EventAuthFailure, Reason: raw.Reason}, true
	case "disconnected":
		return provider.Event{Type: provider.EventDisconnected, Reason: raw.Reason}, true
	case "message":
		ev := provider.Event{Type: provider.EventMessage}
		if raw.Message != nil {
			ev.Message = &provider.Message{From: raw.Message.From, Body: raw.Message.Body}
		}
		return ev, true
	}
	return provider.Event{}, false
}
