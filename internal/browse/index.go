// Package browse is the client-side state and rendering pipeline of the archive
// browser: the conversation index, filtering, sidebar rows with their selection
// controller, and the detail pane state machine. Everything here is free of I/O
// beyond the ConversationSource passed to Load, and produces plain descriptors
// that a rendering backend draws.
package browse

import (
	"context"
	"fmt"

	"github.com/thinkwright/convo/internal/archive"
)

// ConversationSource supplies the full conversation list.
type ConversationSource interface {
	Conversations(ctx context.Context) ([]archive.Conversation, error)
}

// Index holds every conversation fetched at startup. It is read-only after load.
type Index struct {
	conversations []archive.Conversation
	groups        []string
}

// Load fetches the conversation list once and builds the index.
func Load(ctx context.Context, src ConversationSource) (*Index, error) {
	convs, err := src.Conversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load conversations: %w", err)
	}
	return NewIndex(convs), nil
}

// NewIndex builds an index over an already fetched list.
func NewIndex(convs []archive.Conversation) *Index {
	return &Index{
		conversations: convs,
		groups:        distinctGroups(convs),
	}
}

func (x *Index) Conversations() []archive.Conversation {
	if x == nil {
		return nil
	}
	return x.conversations
}

// Groups returns the distinct non-empty group labels in first-seen order.
func (x *Index) Groups() []string {
	if x == nil {
		return nil
	}
	return x.groups
}

func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.conversations)
}

func distinctGroups(convs []archive.Conversation) []string {
	seen := make(map[string]bool)
	var groups []string
	for _, c := range convs {
		if c.Group == "" || seen[c.Group] {
			continue
		}
		seen[c.Group] = true
		groups = append(groups, c.Group)
	}
	return groups
}
