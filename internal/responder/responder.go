// Package responder answers a small set of fixed inbound commands on the
// shared session. Commands are exact-match only; anything else is ignored.
package responder

import (
	"context"
	"log"

	"github.com/wagate/backend/internal/address"
	"github.com/wagate/backend/internal/provider"
)

// Handle inspects one inbound message and replies when it matches a known
// command. Intended to be installed as the machine's message handler.
func Handle(client provider.Client, msg *provider.Message) {
	reply, ok := replyFor(context.Background(), client, msg.Body)
	if !ok {
		return
	}
	if _, err := client.SendText(context.Background(), msg.From, reply); err != nil {
		log.Printf("Responder reply to %s failed: %v", msg.From, err)
	}
}

func replyFor(ctx context.Context, client provider.Client, body string) (string, bool) {
	switch body {
	case "!ping":
		return "pong", true
	case "good morning":
		return "selamat pagi", true
	case "!groups":
		chats, err := client.Chats(ctx)
		if err != nil {
			log.Printf("Responder chat list fetch failed: %v", err)
			return "", false
		}
		return address.FormatGroupList(chats), true
	}
	return "", false
}
