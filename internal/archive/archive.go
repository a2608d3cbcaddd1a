// Package archive holds the conversation data model shared by the browser and the
// backend, and the HTTP client for the backend's JSON API.
package archive

import "encoding/json"

type Conversation struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Group   string `json:"group,omitempty"`
	Created string `json:"created"`
}

// HasGroup reports whether the conversation carries a non-empty group label.
func (c Conversation) HasGroup() bool {
	return c.Group != ""
}

type Message struct {
	Created string `json:"created"`
	Role    string `json:"role"`
	Text    string `json:"text"`
}

// Thread is the payload of the messages endpoint.
type Thread struct {
	ConversationID string    `json:"conversation_id"`
	Messages       []Message `json:"messages"`
}

// SearchResult is a single message hit flattened with its conversation context.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Role    string `json:"role"`
	Text    string `json:"text"`
	Created string `json:"created"`
}

// ActivityPoint is one day of the activity series emitted by the bundled backend.
// The browser treats the series as opaque and hands it to the graph widget.
type ActivityPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Activity is the raw activity payload as delivered by the backend.
type Activity = json.RawMessage

// DefaultLinkBase is the hosted view prefix for conversation ids.
const DefaultLinkBase = "https://chat.openai.com/c/"

// HostedURL returns the canonical hosted view of a conversation.
func HostedURL(base, conversationID string) string {
	if base == "" {
		base = DefaultLinkBase
	}
	return base + conversationID
}
