package waweb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wagate/backend/internal/provider"
)

func TestSendTextCommand(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(provider.SendReceipt{ID: "m1", To: "628@c.us", Ack: 1})
	}))
	defer engine.Close()

	c := New(engine.URL, "", nil)
	receipt, err := c.SendText(context.Background(), "628@c.us", "hello")
	if err != nil {
		t.Fatalf("SendText: %v", err)
	}

	if gotPath != "/api/send-text" {
		t.Errorf("path = %s", gotPath)
	}
	if gotBody["chatId"] != "628@c.us" || gotBody["body"] != "hello" {
		t.Errorf("request body = %v", gotBody)
	}
	if receipt.ID != "m1" {
		t.Errorf("receipt = %+v", receipt)
	}
}

func TestEngineErrorSurfacedVerbatim(t *testing.T) {
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "Session closed"})
	}))
	defer engine.Close()

	c := New(engine.URL, "", nil)
	_, err := c.SendText(context.Background(), "628@c.us", "hello")
	if err == nil {
		t.Fatal("SendText succeeded against failing engine")
	}
	if err.Error() != "Session closed" {
		t.Errorf("error = %q, want the engine's text verbatim", err)
	}
}

func TestIsRegisteredUserQuery(t *testing.T) {
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/registered" {
			t.Errorf("path = %s", r.URL.Path)
		}
		registered := r.URL.Query().Get("chatId") == "628@c.us"
		json.NewEncoder(w).Encode(map[string]bool{"registered": registered})
	}))
	defer engine.Close()

	c := New(engine.URL, "", nil)
	ok, err := c.IsRegisteredUser(context.Background(), "628@c.us")
	if err != nil || !ok {
		t.Errorf("registered = %v, %v; want true, nil", ok, err)
	}
	ok, err = c.IsRegisteredUser(context.Background(), "999@c.us")
	if err != nil || ok {
		t.Errorf("registered = %v, %v; want false, nil", ok, err)
	}
}

func TestAuthTokenHeader(t *testing.T) {
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sekrit" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode([]provider.Chat{})
	}))
	defer engine.Close()

	c := New(engine.URL, "sekrit", nil)
	if _, err := c.Chats(context.Background()); err != nil {
		t.Fatalf("Chats: %v", err)
	}
}

func TestWSURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://127.0.0.1:3000", "ws://127.0.0.1:3000/api/events"},
		{"https://engine.internal", "wss://engine.internal/api/events"},
		{"http://engine:3000/", "ws://engine:3000/api/events"},
	}
	for _, tt := range tests {
		c := New(tt.base, "", nil)
		if got := c.wsURL(); got != tt.want {
			t.Errorf("wsURL(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		raw  engineEvent
		want provider.EventType
		ok   bool
	}{
		{"QR", engineEvent{Event: "qr", QR: "tok"}, provider.EventQR, true},
		{"Authenticated", engineEvent{Event: "authenticated", Session: json.RawMessage(`{}`)}, provider.EventAuthenticated, true},
		{"Ready", engineEvent{Event: "ready"}, provider.EventReady, true},
		{"AuthFailure", engineEvent{Event: "auth_failure", Reason: "expired"}, provider.EventAuthFailure, true},
		{"Disconnected", engineEvent{Event: "disconnected", Reason: "NAVIGATION"}, provider.EventDisconnected, true},
		{"Message", engineEvent{Event: "message"}, provider.EventMessage, true},
		{"Unknown", engineEvent{Event: "battery"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := translate(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && ev.Type != tt.want {
				t.Errorf("type = %v, want %v", ev.Type, tt.want)
			}
		})
	}

	t.Run("AuthenticatedCarriesCredentials", func(t *testing.T) {
		ev, _ := translate(engineEvent{Event: "authenticated", Session: json.RawMessage(`{"t":1}`)})
		if ev.Credentials == nil || string(ev.Credentials.Raw) != `{"t":1}` {
			t.Errorf("credentials = %+v", ev.Credentials)
		}
	})
}
