package calendar

import (
	"testing"

	"github.com/rotaops/rota/core/model"
)

func directory() []model.Engineer {
	return []model.Engineer{
		{Email: "alice@example.com", Name: "Alice Smith"},
		{Email: "robert@example.com", Name: "Robert Jones"},
		{Email: "kat@example.com", Name: "Katherine Doe"},
	}
}

func TestMatcher_TitleForms(t *testing.T) {
	m := NewMatcher(directory())
	cases := []struct {
		title string
		want  string
		ok    bool
	}{
		{"Alice OOO", "alice@example.com", true},
		{"alice is OOO", "alice@example.com", true},
		{"Alice Smith - out of office", "alice@example.com", true},
		{"Bob on vacation", "robert@example.com", true},
		{"rob PTO", "robert@example.com", true},
		{"OOO: Katie", "kat@example.com", true},
		{"vacation - robert@example.com", "robert@example.com", true},
		{"Alice on leave", "alice@example.com", true},
		{"Sprint planning", "", false},
		{"Zoe OOO", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := m.Match(c.title)
		if ok != c.ok || got != c.want {
			t.Errorf("Match(%q) = (%q, %v), want (%q, %v)", c.title, got, ok, c.want, c.ok)
		}
	}
}

func TestMatcher_EmailLocalPart(t *testing.T) {
	m := NewMatcher(directory())
	got, ok := m.Match("kat OOO")
	if !ok || got != "kat@example.com" {
		t.Fatalf("local part not indexed: (%q, %v)", got, ok)
	}
}

func TestMatcher_AmbiguousTokenDropped(t *testing.T) {
	m := NewMatcher([]model.Engineer{
		{Email: "alice.smith@example.com", Name: "Alice Smith"},
		{Email: "alice.brown@example.com", Name: "Alice Brown"},
	})
	if got, ok := m.Match("Alice OOO"); ok {
		t.Fatalf("ambiguous first name resolved to %q", got)
	}
	got, ok := m.Match("Alice Brown OOO")
	if !ok || got != "alice.brown@example.com" {
		t.Fatalf("full name should stay unambiguous: (%q, %v)", got, ok)
	}
}
