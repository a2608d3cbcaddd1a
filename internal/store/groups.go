package store

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/thinkwright/convo/internal/config"
)

type groupMatcher struct {
	name    string
	matcher glob.Glob
}

// Grouper assigns conversations to groups by title. A nil Grouper assigns none.
type Grouper struct {
	rules []groupMatcher
}

// NewGrouper compiles the rules. Patterns match lowercased titles, so they are
// case-insensitive.
func NewGrouper(rules []config.GroupRule) (*Grouper, error) {
	g := &Grouper{}
	for _, r := range rules {
		if r.Name == "" {
			return nil, fmt.Errorf("group rule %q: empty name", r.Pattern)
		}
		m, err := glob.Compile(strings.ToLower(r.Pattern))
		if err != nil {
			return nil, fmt.Errorf("group rule %q: %w", r.Name, err)
		}
		g.rules = append(g.rules, groupMatcher{name: r.Name, matcher: m})
	}
	return g, nil
}

// Match returns the first group whose pattern matches title, or "".
func (g *Grouper) Match(title string) string {
	if g == nil {
		return ""
	}
	lower := strings.ToLower(title)
	for _, r := range g.rules {
		if r.matcher.Match(lower) {
			return r.name
		}
	}
	return ""
}
