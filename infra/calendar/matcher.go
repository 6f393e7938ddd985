package calendar

import (
	"regexp"
	"strings"

	"github.com/rotaops/rota/core/model"
)

// Common short forms seen in event titles. Keys and values are first names.
var nicknames = map[string][]string{
	"alexander":   {"alex", "sasha"},
	"andrew":      {"andy", "drew"},
	"anthony":     {"tony"},
	"benjamin":    {"ben"},
	"christopher": {"chris"},
	"daniel":      {"dan", "danny"},
	"david":       {"dave"},
	"edward":      {"ed", "eddie"},
	"elizabeth":   {"beth", "liz"},
	"gregory":     {"greg"},
	"james":       {"jim", "jimmy"},
	"jennifer":    {"jen", "jenny"},
	"joseph":      {"joe"},
	"katherine":   {"kate", "katie"},
	"matthew":     {"matt"},
	"michael":     {"mike"},
	"nicholas":    {"nick"},
	"patrick":     {"pat"},
	"richard":     {"rick", "rich"},
	"robert":      {"rob", "bob"},
	"samuel":      {"sam"},
	"steven":      {"steve"},
	"susan":       {"sue"},
	"thomas":      {"tom"},
	"william":     {"will", "bill"},
}

// Title forms announcing an absence. The capture group holds the subject.
var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(.+?)\s*(?:[-–:]\s*)?(?:is\s+)?(?:ooo|out of office|on vacation|vacation|on pto|pto|on leave)\s*$`),
	regexp.MustCompile(`(?i)^(?:ooo|out of office|vacation|pto)\s*[-–:]\s*(.+)$`),
}

// Matcher resolves event titles to engineer identities. Matching is
// best-effort: ambiguous tokens are dropped rather than guessed.
type Matcher struct {
	byToken map[string]string
}

// NewMatcher indexes the engineer directory by email, email local part,
// display name, first name and known nicknames.
func NewMatcher(engineers []model.Engineer) *Matcher {
	byToken := make(map[string]string)
	ambiguous := make(map[string]bool)
	add := func(token, key string) {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" || ambiguous[token] {
			return
		}
		if prev, ok := byToken[token]; ok && prev != key {
			delete(byToken, token)
			ambiguous[token] = true
			return
		}
		byToken[token] = key
	}

	for _, e := range engineers {
		key := e.Key()
		if key == "" {
			continue
		}
		add(e.Email, key)
		if at := strings.Index(key, "@"); at > 0 {
			add(key[:at], key)
		}
		name := strings.ToLower(strings.TrimSpace(e.Name))
		if name == "" {
			continue
		}
		add(name, key)
		first := strings.Fields(name)[0]
		add(first, key)
		for _, nick := range nicknames[first] {
			add(nick, key)
		}
	}
	return &Matcher{byToken: byToken}
}

// Match resolves the event title to an engineer key. The second return is
// false when the title does not announce an absence or the subject is not
// in the directory.
func (m *Matcher) Match(title string) (string, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", false
	}
	for _, re := range titlePatterns {
		groups := re.FindStringSubmatch(title)
		if groups == nil {
			continue
		}
		if key, ok := m.resolve(groups[1]); ok {
			return key, true
		}
	}
	return "", false
}

// resolve tries the whole subject first, then individual words, so
// "Alice Smith" wins over a bare "alice" when both are indexed.
func (m *Matcher) resolve(subject string) (string, bool) {
	subject = strings.ToLower(strings.TrimSpace(subject))
	if key, ok := m.byToken[subject]; ok {
		return key, true
	}
	for _, word := range strings.FieldsFunc(subject, func(r rune) bool {
		return r == ' ' || r == ',' || r == '(' || r == ')'
	}) {
		if key, ok := m.byToken[word]; ok {
			return key, true
		}
	}
	return "", false
}
