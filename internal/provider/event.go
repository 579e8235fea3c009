package provider

// EventType classifies session lifecycle and inbound events.
type EventType int

const (
	EventQR            EventType = iota // pairing token issued, scan required
	EventAuthenticated                  // credentials obtained
	EventReady                          // handshake complete, session operational
	EventAuthFailure                    // authentication rejected; engine restarts pairing
	EventDisconnected                   // session invalidated by the network
	EventMessage                        // inbound message
)

var eventNames = map[EventType]string{
	EventQR:            "qr",
	EventAuthenticated: "authenticated",
	EventReady:         "ready",
	EventAuthFailure:   "auth_failure",
	EventDisconnected:  "disconnected",
	EventMessage:       "message",
}

func (t EventType) String() string {
	if s, ok := eventNames[t]; ok {
		return s
	}
	return "unknown"
}

// Event is one occurrence on the session's event stream. Only the fields
// relevant to the Type are set.
type Event struct {
	Type        EventType
	QR          string       // EventQR: raw pairing token
	Credentials *Credentials // EventAuthenticated: session blob
	Reason      string       // EventDisconnected / EventAuthFailure
	Message     *Message     // EventMessage
}
