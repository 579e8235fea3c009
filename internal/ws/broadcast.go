// Package ws fans lifecycle events out to connected observers over
// websockets. Delivery is fire-and-forget: no replay for late joiners, no
// acknowledgement, and a subscriber that cannot keep up is dropped rather
// than allowed to back-pressure the publisher.
package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

const sendBuffer = 64

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

func (s *subscriber) writePump() {
	defer s.conn.Close()
	for msg := range s.send {
		if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (s *subscriber) close() {
	close(s.send)
}

// Hub is the observer broadcast channel.
type Hub struct {
	mu   sync.RWMutex
	subs map[*subscriber]bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]bool)}
}

// Add registers a websocket connection as an observer and immediately
// pushes the synthetic connecting status. The returned subscriber must be
// handed back to Remove when the connection drops.
func (h *Hub) Add(conn *websocket.Conn) *subscriber {
	s := h.subscribe(conn)
	h.deliver(s, Event{Type: EvMessage, Payload: "Connecting..."})
	return s
}

// subscribe registers a subscriber. A nil conn skips the write pump; tests
// use this to read the send channel directly.
func (h *Hub) subscribe(conn *websocket.Conn) *subscriber {
	s := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	if conn != nil {
		go s.writePump()
	}

	h.mu.Lock()
	h.subs[s] = true
	h.mu.Unlock()
	return s
}

// Remove unregisters a subscriber. Removing one that is already gone is a
// no-op; observer disconnection is silent.
func (h *Hub) Remove(s *subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		s.close()
	}
	h.mu.Unlock()
}

// Publish pushes a named lifecycle event to every current observer.
func (h *Hub) Publish(event, payload string) {
	h.broadcast(Event{Type: EventType(event), Payload: payload})
}

// Status pushes a human-readable status line to every current observer.
func (h *Hub) Status(text string) {
	h.broadcast(Event{Type: EvMessage, Payload: text})
}

func (h *Hub) broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("broadcast marshal error: %v", err)
		return
	}

	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		select {
		case s.send <- data:
		default:
			// Observer can't keep up; drop it rather than block the rest.
			log.Println("ws observer too slow, disconnecting")
			h.Remove(s)
		}
	}
}

func (h *Hub) deliver(s *subscriber, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	select {
	case s.send <- data:
	default:
		// Greeting dropped; the observer was slow from the first byte.
	}
}

// Count returns the number of connected observers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
