// Package export reads ChatGPT data exports (conversations.json).
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"
)

type Conversation struct {
	ID       string
	Title    string
	Created  time.Time
	Updated  time.Time
	Messages []Message
}

type Message struct {
	ID      string
	Role    string
	Created time.Time
	Text    string
}

// rawConversation mirrors one element of the export array.
type rawConversation struct {
	ID             string             `json:"id"`
	ConversationID string             `json:"conversation_id"`
	Title          string             `json:"title"`
	CreateTime     *float64           `json:"create_time"`
	UpdateTime     *float64           `json:"update_time"`
	Mapping        map[string]rawNode `json:"mapping"`
	CurrentNode    string             `json:"current_node"`
}

type rawNode struct {
	ID       string      `json:"id"`
	Message  *rawMessage `json:"message"`
	Parent   *string     `json:"parent"`
	Children []string    `json:"children"`
}

type rawMessage struct {
	ID     string `json:"id"`
	Author struct {
		Role string `json:"role"`
	} `json:"author"`
	CreateTime *float64 `json:"create_time"`
	Content    struct {
		ContentType string            `json:"content_type"`
		Parts       []json.RawMessage `json:"parts"`
	} `json:"content"`
}

// Load parses the export file at path.
func Load(path string) ([]Conversation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	convs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return convs, nil
}

// Parse streams the export array. Conversations without an id are skipped.
func Parse(r io.Reader) ([]Conversation, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("expected array of conversations, got %v", tok)
	}

	var out []Conversation
	for dec.More() {
		var raw rawConversation
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("conversation %d: %w", len(out), err)
		}
		if c, ok := convert(raw); ok {
			out = append(out, c)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func convert(raw rawConversation) (Conversation, bool) {
	id := raw.ID
	if id == "" {
		id = raw.ConversationID
	}
	if id == "" {
		return Conversation{}, false
	}

	c := Conversation{
		ID:      id,
		Title:   strings.TrimSpace(raw.Title),
		Created: unixTime(raw.CreateTime),
		Updated: unixTime(raw.UpdateTime),
	}
	for _, nodeID := range threadPath(raw.Mapping, raw.CurrentNode) {
		m := raw.Mapping[nodeID].Message
		if m == nil {
			continue
		}
		text := partsText(m.Content.Parts)
		if text == "" {
			continue
		}
		created := unixTime(m.CreateTime)
		if created.IsZero() {
			created = c.Created
		}
		msgID := m.ID
		if msgID == "" {
			msgID = nodeID
		}
		c.Messages = append(c.Messages, Message{
			ID:      msgID,
			Role:    m.Author.Role,
			Created: created,
			Text:    text,
		})
	}
	if c.Updated.IsZero() {
		c.Updated = c.Created
	}
	return c, true
}

// threadPath returns node ids from the root to the current node. Without a
// usable current node it follows the first child from the root.
func threadPath(mapping map[string]rawNode, current string) []string {
	if len(mapping) == 0 {
		return nil
	}

	if _, ok := mapping[current]; ok {
		var path []string
		seen := make(map[string]bool)
		for id := current; id != "" && !seen[id]; {
			node, ok := mapping[id]
			if !ok {
				break
			}
			seen[id] = true
			path = append(path, id)
			if node.Parent == nil {
				break
			}
			id = *node.Parent
		}
		for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
			path[i], path[j] = path[j], path[i]
		}
		return path
	}

	root := findRoot(mapping)
	var path []string
	seen := make(map[string]bool)
	for id := root; id != "" && !seen[id]; {
		node, ok := mapping[id]
		if !ok {
			break
		}
		seen[id] = true
		path = append(path, id)
		if len(node.Children) == 0 {
			break
		}
		id = node.Children[0]
	}
	return path
}

// findRoot picks the earliest node whose parent is absent, by message create
// time. A root without a time (the bare root node of an export) counts as
// earliest. Ties break by id so the result does not depend on map order.
func findRoot(mapping map[string]rawNode) string {
	var roots []string
	for id, node := range mapping {
		if node.Parent == nil {
			roots = append(roots, id)
			continue
		}
		if _, ok := mapping[*node.Parent]; !ok {
			roots = append(roots, id)
		}
	}
	if len(roots) == 0 {
		return ""
	}
	sort.Slice(roots, func(i, j int) bool {
		ti, tj := nodeTime(mapping[roots[i]]), nodeTime(mapping[roots[j]])
		if ti != tj {
			return ti < tj
		}
		return roots[i] < roots[j]
	})
	return roots[0]
}

// nodeTime is the message create time, or -1 when the node has none.
func nodeTime(n rawNode) float64 {
	if n.Message == nil || n.Message.CreateTime == nil {
		return -1
	}
	return *n.Message.CreateTime
}

// partsText joins the string parts of a message. Non-text parts (images,
// tool payloads) are dropped.
func partsText(parts []json.RawMessage) string {
	var texts []string
	for _, p := range parts {
		var s string
		if err := json.Unmarshal(p, &s); err != nil {
			continue
		}
		if strings.TrimSpace(s) != "" {
			texts = append(texts, s)
		}
	}
	return strings.Join(texts, "\n")
}

func unixTime(ts *float64) time.Time {
	if ts == nil || *ts <= 0 {
		return time.Time{}
	}
	sec, frac := math.Modf(*ts)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
