package ws

// EventType names a push event on the observer channel.
type EventType string

const (
	// EvQR carries a data-URL-encoded PNG of the pairing QR code.
	EvQR EventType = "qr"
	// EvAuthenticated signals that session credentials were obtained.
	EvAuthenticated EventType = "authenticated"
	// EvReady signals that the session is fully operational.
	EvReady EventType = "ready"
	// EvMessage carries a human-readable status line.
	EvMessage EventType = "message"
)

// Event is the wire envelope pushed to observers.
type Event struct {
	Type    EventType `json:"type"`
	Payload string    `json:"payload"`
}
