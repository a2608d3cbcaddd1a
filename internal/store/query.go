package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

type FilterField int

const (
	FilterRole FilterField = iota
	FilterGroup
	FilterConversation
	FilterAge
)

type FilterOp int

const (
	OpEquals FilterOp = iota
	OpGreaterThan
	OpLessThan
)

type Filter struct {
	Field FilterField
	Op    FilterOp
	Value string
}

type FilterSet struct {
	FreeText string
	Filters  []Filter
}

// ParseQuery splits a search query into free-text terms and structured filters.
// Examples:
//
//	"rome hotels"           → FreeText: "rome hotels"
//	"role:user rome"        → FreeText: "rome", Filters: [{FilterRole, OpEquals, "user"}]
//	"group:Travel age:<7d"  → Filters: [...]
func ParseQuery(query string) *FilterSet {
	fs := &FilterSet{}
	var freeWords []string

	for _, tok := range tokenize(query) {
		if f, ok := parseFilter(tok); ok {
			fs.Filters = append(fs.Filters, f)
		} else {
			freeWords = append(freeWords, tok)
		}
	}

	fs.FreeText = strings.Join(freeWords, " ")
	return fs
}

// tokenize splits a query string respecting quoted phrases.
func tokenize(query string) []string {
	var tokens []string
	var current strings.Builder
	inQuote := false

	for _, r := range query {
		switch {
		case r == '"':
			inQuote = !inQuote
			current.WriteRune(r)
		case unicode.IsSpace(r) && !inQuote:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// parseFilter attempts to parse a token as field:value or field:>value.
func parseFilter(token string) (Filter, bool) {
	idx := strings.Index(token, ":")
	if idx < 1 || idx == len(token)-1 || strings.HasPrefix(token, `"`) {
		return Filter{}, false
	}

	field := strings.ToLower(token[:idx])
	value := token[idx+1:]

	var f Filter
	switch field {
	case "role":
		f.Field = FilterRole
	case "group":
		f.Field = FilterGroup
	case "in":
		f.Field = FilterConversation
	case "age":
		f.Field = FilterAge
	default:
		return Filter{}, false
	}

	if strings.HasPrefix(value, ">") {
		f.Op = OpGreaterThan
		f.Value = value[1:]
	} else if strings.HasPrefix(value, "<") {
		f.Op = OpLessThan
		f.Value = value[1:]
	} else {
		f.Op = OpEquals
		f.Value = value
	}
	f.Value = strings.Trim(f.Value, `"`)

	return f, true
}

// ToSQL generates a WHERE clause over messages (m), conversations (c) and, with
// free text, messages_fts. Returns the clause without "WHERE" and its params.
func (fs *FilterSet) ToSQL(now time.Time) (string, []any) {
	var conditions []string
	var params []any

	if q := ftsQuery(fs.FreeText); q != "" {
		conditions = append(conditions, "messages_fts MATCH ?")
		params = append(params, q)
	}

	for _, f := range fs.Filters {
		cond, p := filterToSQL(f, now)
		if cond != "" {
			conditions = append(conditions, cond)
			params = append(params, p...)
		}
	}

	if len(conditions) == 0 {
		return "1=1", nil
	}
	return strings.Join(conditions, " AND "), params
}

// HasFTS returns true if this filter set includes a free-text search.
func (fs *FilterSet) HasFTS() bool {
	return ftsQuery(fs.FreeText) != ""
}

// IsEmpty returns true if there are no filters or searchable text.
func (fs *FilterSet) IsEmpty() bool {
	return !fs.HasFTS() && len(fs.Filters) == 0
}

func filterToSQL(f Filter, now time.Time) (string, []any) {
	switch f.Field {
	case FilterRole:
		return "m.role = ?", []any{strings.ToLower(f.Value)}

	case FilterGroup:
		if strings.Contains(f.Value, "*") {
			pattern := strings.ReplaceAll(f.Value, "*", "%")
			return "c.group_name LIKE ?", []any{pattern}
		}
		return "c.group_name = ?", []any{f.Value}

	case FilterConversation:
		return "m.conversation_id = ?", []any{f.Value}

	case FilterAge:
		dur, err := parseAge(f.Value)
		if err != nil {
			return "", nil
		}
		cutoff := now.Add(-dur).Unix()
		if f.Op == OpGreaterThan {
			// age:>7d means older than a week
			return "m.created_at < ?", []any{cutoff}
		}
		return "m.created_at > ?", []any{cutoff}
	}

	return "", nil
}

// parseAge parses a duration like "1h", "30m", "7d", "2w".
func parseAge(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid age: %s", s)
	}

	unit := s[len(s)-1]
	num, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return 0, err
	}

	switch unit {
	case 'm':
		return time.Duration(num) * time.Minute, nil
	case 'h':
		return time.Duration(num) * time.Hour, nil
	case 'd':
		return time.Duration(num) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(num) * 7 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown unit: %c", unit)
	}
}

// ftsQuery converts user input into an FTS5 query. Every term or phrase is
// quoted so punctuation in user input cannot form FTS syntax; | separates OR
// alternatives and terms within an alternative must all match.
func ftsQuery(input string) string {
	var alts []string
	for _, part := range strings.Split(input, "|") {
		var terms []string
		for _, tok := range tokenize(part) {
			tok = strings.Trim(tok, `"`)
			if tok == "" {
				continue
			}
			terms = append(terms, `"`+strings.ReplaceAll(tok, `"`, `""`)+`"`)
		}
		if len(terms) > 0 {
			alts = append(alts, strings.Join(terms, " "))
		}
	}
	if len(alts) == 1 {
		return alts[0]
	}
	for i, a := range alts {
		if strings.Contains(a, " ") {
			alts[i] = "(" + a + ")"
		}
	}
	return strings.Join(alts, " OR ")
}
