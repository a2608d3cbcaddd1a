package browse

import (
	"strings"

	"github.com/thinkwright/convo/internal/archive"
)

// Apply returns the conversations that pass both the group and the title filter,
// in their original relative order. An empty group or empty text disables that
// predicate. Group matching is exact; title matching is a case-insensitive
// substring test, and a conversation without a title never matches a non-empty text.
func Apply(convs []archive.Conversation, group, text string) []archive.Conversation {
	needle := strings.ToLower(text)

	var out []archive.Conversation
	for _, c := range convs {
		if group != "" && c.Group != group {
			continue
		}
		if needle != "" && (c.Title == "" || !strings.Contains(strings.ToLower(c.Title), needle)) {
			continue
		}
		out = append(out, c)
	}
	return out
}
