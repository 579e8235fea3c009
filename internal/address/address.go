// Package address converts the phone-number-like identifiers callers send
// over HTTP into the network's chat addressing scheme, and resolves group
// display names against the live chat list.
package address

import (
	"fmt"
	"strings"

	"github.com/wagate/backend/internal/provider"
)

// UserSuffix is the network's domain suffix for direct-message addresses.
const UserSuffix = "@c.us"

// Normalize turns a raw phone-number-like string into a full chat address.
// Formatting characters (spaces, dashes, plus signs, parentheses) are
// stripped and the user suffix appended. Input that already carries a
// domain ("...@c.us", "...@g.us") passes through unchanged, which also
// makes Normalize idempotent.
func Normalize(raw string) string {
	if strings.Contains(raw, "@") {
		return raw
	}

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String() + UserSuffix
}

// FindGroupByName returns the first group chat whose name matches name
// case-insensitively, in chat-list order. The list comes fresh from the
// provider on every call site; caching it would go stale as memberships
// change server-side.
func FindGroupByName(chats []provider.Chat, name string) (*provider.Chat, bool) {
	for i := range chats {
		if chats[i].IsGroup && strings.EqualFold(chats[i].Name, name) {
			return &chats[i], true
		}
	}
	return nil, false
}

// FormatGroupList renders the caller's group chats as the reply text for
// the !groups command.
func FormatGroupList(chats []provider.Chat) string {
	var groups []provider.Chat
	for _, c := range chats {
		if c.IsGroup {
			groups = append(groups, c)
		}
	}
	if len(groups) == 0 {
		return "You have no group yet."
	}

	var b strings.Builder
	b.WriteString("*YOUR GROUPS*\n\n")
	for _, g := range groups {
		fmt.Fprintf(&b, "ID: %s\nName: %s\n\n", g.ID, g.Name)
	}
	b.WriteString("_You can use the group id to send a message to the group._")
	return b.String()
}
