package responder

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/wagate/backend/internal/provider"
)

type fakeClient struct {
	mu      sync.Mutex
	chats   []provider.Chat
	replies []struct{ to, body string }
}

func (c *fakeClient) Initialize(context.Context) error { return nil }
func (c *fakeClient) Destroy(context.Context) error    { return nil }
func (c *fakeClient) Events() <-chan provider.Event    { return nil }

func (c *fakeClient) SendText(_ context.Context, chatID, text string) (*provider.SendReceipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies = append(c.replies, struct{ to, body string }{chatID, text})
	return &provider.SendReceipt{}, nil
}

func (c *fakeClient) SendMedia(context.Context, string, provider.Media, string) (*provider.SendReceipt, error) {
	return &provider.SendReceipt{}, nil
}

func (c *fakeClient) IsRegisteredUser(context.Context, string) (bool, error) { return true, nil }

func (c *fakeClient) Chats(context.Context) ([]provider.Chat, error) {
	return c.chats, nil
}

func (c *fakeClient) ClearMessages(context.Context, string) error { return nil }

func TestFixedCommands(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		want  string
		reply bool
	}{
		{"Ping", "!ping", "pong", true},
		{"Greeting", "good morning", "selamat pagi", true},
		{"ExactMatchOnly", "!ping please", "", false},
		{"GreetingCaseSensitive", "Good Morning", "", false},
		{"UnknownIgnored", "hello there", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{}
			Handle(client, &provider.Message{From: "628111@c.us", Body: tt.body})

			if !tt.reply {
				if len(client.replies) != 0 {
					t.Fatalf("unexpected reply: %+v", client.replies)
				}
				return
			}
			if len(client.replies) != 1 {
				t.Fatalf("replies = %d, want 1", len(client.replies))
			}
			got := client.replies[0]
			if got.to != "628111@c.us" || got.body != tt.want {
				t.Errorf("reply = %+v, want %q to sender", got, tt.want)
			}
		})
	}
}

func TestGroupsCommand(t *testing.T) {
	client := &fakeClient{chats: []provider.Chat{
		{ID: "u@c.us", Name: "Andi"},
		{ID: "g@g.us", Name: "Team Alpha", IsGroup: true},
	}}

	Handle(client, &provider.Message{From: "628111@c.us", Body: "!groups"})

	if len(client.replies) != 1 {
		t.Fatalf("replies = %d, want 1", len(client.replies))
	}
	body := client.replies[0].body
	if !strings.Contains(body, "Team Alpha") || !strings.Contains(body, "g@g.us") {
		t.Errorf("groups reply = %q", body)
	}
}

func TestGroupsCommandEmpty(t *testing.T) {
	client := &fakeClient{}

	Handle(client, &provider.Message{From: "628111@c.us", Body: "!groups"})

	if len(client.replies) != 1 || client.replies[0].body != "You have no group yet." {
		t.Errorf("replies = %+v", client.replies)
	}
}
