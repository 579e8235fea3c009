package address

import (
	"strings"
	"testing"

	"github.com/wagate/backend/internal/provider"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"PlainDigits", "6281234567890", "6281234567890@c.us"},
		{"InternationalFormatting", "+62 812-3456-7890", "6281234567890@c.us"},
		{"Parentheses", "(555) 010-0", "5550100@c.us"},
		{"Dots", "0812.3456.7890", "081234567890@c.us"},
		{"AlreadyUserAddress", "6281234567890@c.us", "6281234567890@c.us"},
		{"GroupAddressPassThrough", "120363001111111111@g.us", "120363001111111111@g.us"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"+1 555-0100", "0812 3456 7890", "628@c.us", "x@g.us"}
	for _, raw := range inputs {
		once := Normalize(raw)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", raw, twice, once)
		}
	}
}

func TestNormalizeMatchesDigitOnlyForm(t *testing.T) {
	raw := "+62 (812) 3456-7890"
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)

	if Normalize(raw) != Normalize(digits) {
		t.Errorf("Normalize(%q) = %q, Normalize(%q) = %q; want equal",
			raw, Normalize(raw), digits, Normalize(digits))
	}
}

func TestFindGroupByName(t *testing.T) {
	chats := []provider.Chat{
		{ID: "u1@c.us", Name: "Team Alpha"}, // not a group; must be skipped
		{ID: "g1@g.us", Name: "Team Alpha", IsGroup: true},
		{ID: "g2@g.us", Name: "team alpha", IsGroup: true}, // duplicate, later in list
		{ID: "g3@g.us", Name: "Family", IsGroup: true},
	}

	tests := []struct {
		name   string
		query  string
		wantID string
		wantOK bool
	}{
		{"ExactMatch", "Team Alpha", "g1@g.us", true},
		{"CaseInsensitive", "TEAM ALPHA", "g1@g.us", true},
		{"FirstMatchWinsOnDuplicates", "team alpha", "g1@g.us", true},
		{"OtherGroup", "family", "g3@g.us", true},
		{"Absent", "Team Beta", "", false},
		{"NoSubstringMatch", "Team", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindGroupByName(chats, tt.query)
			if ok != tt.wantOK {
				t.Fatalf("FindGroupByName(%q) ok = %v, want %v", tt.query, ok, tt.wantOK)
			}
			if ok && got.ID != tt.wantID {
				t.Errorf("FindGroupByName(%q) = %s, want %s", tt.query, got.ID, tt.wantID)
			}
		})
	}
}

func TestFormatGroupList(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		chats := []provider.Chat{{ID: "u1@c.us", Name: "Andi"}}
		if got := FormatGroupList(chats); got != "You have no group yet." {
			t.Errorf("FormatGroupList = %q", got)
		}
	})

	t.Run("ListsGroupsOnly", func(t *testing.T) {
		chats := []provider.Chat{
			{ID: "u1@c.us", Name: "Andi"},
			{ID: "g1@g.us", Name: "Team Alpha", IsGroup: true},
		}
		got := FormatGroupList(chats)
		if !strings.HasPrefix(got, "*YOUR GROUPS*") {
			t.Errorf("missing header: %q", got)
		}
		if !strings.Contains(got, "ID: g1@g.us\nName: Team Alpha") {
			t.Errorf("missing group entry: %q", got)
		}
		if strings.Contains(got, "Andi") {
			t.Errorf("non-group chat leaked into listing: %q", got)
		}
	})
}
