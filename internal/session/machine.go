package session

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/wagate/backend/internal/provider"
)

// Notifier receives lifecycle broadcasts destined for connected observers.
// Delivery is best-effort; implementations must not block.
type Notifier interface {
	// Publish pushes a named lifecycle event (qr, authenticated, ready).
	Publish(event, payload string)
	// Status pushes a human-readable status line.
	Status(text string)
}

// MessageHandler is invoked for every inbound message, with the client
// instance the message arrived on.
type MessageHandler func(client provider.Client, msg *provider.Message)

// Machine owns the process's single session: its credentials, its lifecycle
// state, and the live provider client. All transitions happen on one
// goroutine consuming the client's event stream, so no event ever observes
// a half-applied transition.
type Machine struct {
	store   *Store
	factory provider.Factory
	notify  Notifier

	mu     sync.RWMutex
	state  State
	creds  *provider.Credentials
	client provider.Client

	events    <-chan provider.Event
	onMessage MessageHandler
}

// NewMachine wires a machine to its credential store, client factory and
// observer notifier. Nothing starts until Start is called.
func NewMachine(store *Store, factory provider.Factory, notify Notifier) *Machine {
	return &Machine{
		store:   store,
		factory: factory,
		notify:  notify,
		state:   Uninitialized,
	}
}

// SetMessageHandler installs the inbound-message hook. Must be called
// before Start.
func (m *Machine) SetMessageHandler(h MessageHandler) {
	m.onMessage = h
}

// Start loads persisted credentials, constructs and initializes the first
// client instance, and launches the event loop. A failure to construct or
// initialize the client is fatal here (the engine is unreachable); a failure
// to read the session file is not, pairing simply starts from scratch.
func (m *Machine) Start(ctx context.Context) error {
	creds, err := m.store.Load()
	if err != nil {
		log.Printf("Session restore failed, starting fresh: %v", err)
		creds = nil
	}
	if creds != nil {
		log.Printf("Restored session credentials from %s", m.store.Path())
	}

	client, err := m.factory(creds)
	if err != nil {
		return fmt.Errorf("constructing client: %w", err)
	}

	m.mu.Lock()
	m.creds = creds
	m.client = client
	m.state = Uninitialized
	m.mu.Unlock()
	m.events = client.Events()

	if err := client.Initialize(ctx); err != nil {
		return fmt.Errorf("initializing client: %w", err)
	}

	go m.run(ctx)
	return nil
}

// IsReady reports whether the session is fully operational. Dispatch does
// not gate on this (a non-ready session fails at the provider call); it is
// surfaced for health reporting.
func (m *Machine) IsReady() bool {
	return m.Current() == Ready
}

// Current returns a snapshot of the lifecycle state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Client returns the live client instance. Dispatch callers hold it only
// for the duration of one call; a disconnect mid-flight surfaces as a
// provider error on that call.
func (m *Machine) Client() provider.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client
}

func (m *Machine) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *Machine) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-m.events:
			if !ok {
				// Channel closed outside a disconnect transition means
				// the client was destroyed externally; stop the loop.
				log.Println("Session event stream closed")
				return
			}
			m.handle(ctx, ev)
		}
	}
}

func (m *Machine) handle(ctx context.Context, ev provider.Event) {
	switch ev.Type {
	case provider.EventQR:
		m.handleQR(ev)
	case provider.EventAuthenticated:
		m.handleAuthenticated(ev)
	case provider.EventReady:
		m.handleReady()
	case provider.EventAuthFailure:
		m.handleAuthFailure(ev)
	case provider.EventDisconnected:
		m.handleDisconnected(ctx, ev)
	case provider.EventMessage:
		if m.onMessage != nil && ev.Message != nil {
			// Replies call back into the provider; keep the event loop free.
			go m.onMessage(m.Client(), ev.Message)
		}
	default:
		log.Printf("Ignoring unknown session event %v", ev.Type)
	}
}

func (m *Machine) handleQR(ev provider.Event) {
	if m.Current() == Ready {
		// A QR issued against a live session is stale; nothing to scan.
		log.Println("Ignoring QR event while ready")
		return
	}
	m.setState(AwaitingScan)

	dataURL, err := qrDataURL(ev.QR)
	if err != nil {
		log.Printf("QR encode failed: %v", err)
		return
	}
	m.notify.Publish("qr", dataURL)
	m.notify.Status("QR Code received, scan please!")
}

func (m *Machine) handleAuthenticated(ev provider.Event) {
	switch m.Current() {
	case Uninitialized, AwaitingScan:
	default:
		log.Printf("Ignoring authenticated event in state %s", m.Current())
		return
	}

	m.mu.Lock()
	m.creds = ev.Credentials
	m.state = Authenticated
	m.mu.Unlock()

	if ev.Credentials != nil {
		if err := m.store.Save(ev.Credentials); err != nil {
			// Non-fatal: the session works, it just won't survive a restart.
			log.Printf("Saving session credentials failed: %v", err)
		}
	}

	m.notify.Publish("authenticated", "Whatsapp is authenticated!")
	m.notify.Status("Whatsapp is authenticated!")
	log.Println("Session authenticated")
}

func (m *Machine) handleReady() {
	if m.Current() != Authenticated {
		log.Printf("Ignoring ready event in state %s", m.Current())
		return
	}
	m.setState(Ready)
	m.notify.Publish("ready", "Whatsapp is ready!")
	m.notify.Status("Whatsapp is ready!")
	log.Println("Session ready")
}

func (m *Machine) handleAuthFailure(ev provider.Event) {
	m.setState(Uninitialized)
	m.notify.Status("Auth failure, restarting...")
	log.Printf("Authentication failure: %s", ev.Reason)
	// The engine restarts pairing on its own; a fresh qr event follows.
}

// handleDisconnected runs the destroy-and-rebuild policy: the current
// client's in-memory protocol state is unusable, so the stale credential
// file is cleared, the instance torn down, and a fresh one constructed and
// initialized. A failure to reinitialize follows the auth-failure path.
func (m *Machine) handleDisconnected(ctx context.Context, ev provider.Event) {
	switch m.Current() {
	case Ready, Authenticated:
	default:
		log.Printf("Ignoring disconnected event in state %s", m.Current())
		return
	}

	log.Printf("Session disconnected: %s", ev.Reason)
	m.setState(Disconnected)
	m.notify.Status("Whatsapp is disconnected!")

	if err := m.store.Clear(); err != nil {
		// Re-authentication overwrites the file anyway.
		log.Printf("Clearing session file failed: %v", err)
	}

	old := m.Client()
	if old != nil {
		if err := old.Destroy(ctx); err != nil {
			log.Printf("Destroying client failed: %v", err)
		}
	}

	client, err := m.factory(nil)
	if err != nil {
		log.Printf("Rebuilding client failed: %v", err)
		m.handleAuthFailure(provider.Event{Reason: err.Error()})
		return
	}

	m.mu.Lock()
	m.creds = nil
	m.client = client
	m.state = Uninitialized
	m.mu.Unlock()
	m.events = client.Events()

	if err := client.Initialize(ctx); err != nil {
		log.Printf("Reinitializing client failed: %v", err)
		m.handleAuthFailure(provider.Event{Reason: err.Error()})
	}
}
