package session

import "encoding/json"

// State is the lifecycle state of the one WhatsApp session this process
// owns. Mutated only by the Machine, one event at a time.
type State int

const (
	Uninitialized State = iota
	AwaitingScan        // QR token issued, waiting for the phone to scan
	Authenticated       // credentials obtained, network handshake in progress
	Ready               // fully operational, dispatch may proceed
	Disconnected        // session invalidated, reinitialization underway
)

var stateNames = map[State]string{
	Uninitialized: "uninitialized",
	AwaitingScan:  "awaiting_scan",
	Authenticated: "authenticated",
	Ready:         "ready",
	Disconnected:  "disconnected",
}

var stateFromName = map[string]State{
	"uninitialized": Uninitialized,
	"awaiting_scan": AwaitingScan,
	"authenticated": Authenticated,
	"ready":         Ready,
	"disconnected":  Disconnected,
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	if v, ok := stateFromName[name]; ok {
		*s = v
	}
	return nil
}
