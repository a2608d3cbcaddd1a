package browse

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// Sanitize makes backend text safe to draw in a terminal: escape sequences are
// stripped and remaining control characters other than newline and tab dropped.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	if strings.IndexFunc(s, isUnsafeControl) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isUnsafeControl(r) {
			return -1
		}
		return r
	}, s)
}

func isUnsafeControl(r rune) bool {
	return r != '\n' && r != '\t' && unicode.IsControl(r)
}
