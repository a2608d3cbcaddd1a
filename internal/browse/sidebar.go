package browse

import "github.com/thinkwright/convo/internal/archive"

type RowKind int

const (
	RowHeader RowKind = iota
	RowItem
)

// NoGroupLabel heads a run of conversations without a group.
const NoGroupLabel = "No Group"

// Row is one sidebar line: a group header or a conversation item.
type Row struct {
	Kind         RowKind
	Label        string               // header label or item title
	Conversation archive.Conversation // zero for headers
}

// RowHandle identifies an item row of one particular Render. Handles from an
// earlier Render are rejected by Select.
type RowHandle struct {
	gen   uint64
	index int
}

func (h RowHandle) Index() int {
	return h.index
}

// Sidebar renders filtered conversations into rows and owns the single selection
// highlight. The zero value is ready to use.
type Sidebar struct {
	rows      []Row
	gen       uint64
	selected  int
	hasSelect bool
}

// Render replaces all rows. A header precedes every maximal run of items sharing
// a group, so a group label repeats when the filtered order interleaves groups.
// Previous handles and the highlight are invalidated.
func (s *Sidebar) Render(filtered []archive.Conversation) []Row {
	s.gen++
	s.hasSelect = false
	s.selected = 0

	rows := make([]Row, 0, len(filtered)*2)
	var current *string // nil sentinel differs from every group, including ""
	for _, c := range filtered {
		if current == nil || *current != c.Group {
			g := c.Group
			current = &g
			label := g
			if !c.HasGroup() {
				label = NoGroupLabel
			}
			rows = append(rows, Row{Kind: RowHeader, Label: label})
		}
		rows = append(rows, Row{Kind: RowItem, Label: c.Title, Conversation: c})
	}
	s.rows = rows
	return rows
}

func (s *Sidebar) Rows() []Row {
	return s.rows
}

// Handle returns a handle for the item row at index.
func (s *Sidebar) Handle(index int) (RowHandle, bool) {
	if index < 0 || index >= len(s.rows) || s.rows[index].Kind != RowItem {
		return RowHandle{}, false
	}
	return RowHandle{gen: s.gen, index: index}, true
}

// Select moves the highlight to the row behind h and returns the conversation id
// whose thread should be opened. Stale or invalid handles change nothing.
func (s *Sidebar) Select(h RowHandle) (string, bool) {
	if h.gen != s.gen || h.index < 0 || h.index >= len(s.rows) || s.rows[h.index].Kind != RowItem {
		return "", false
	}
	s.Clear()
	s.selected = h.index
	s.hasSelect = true
	return s.rows[h.index].Conversation.ID, true
}

// Clear removes the highlight, if any.
func (s *Sidebar) Clear() {
	s.hasSelect = false
	s.selected = 0
}

// Selected returns the highlighted row index.
func (s *Sidebar) Selected() (int, bool) {
	return s.selected, s.hasSelect
}

func (s *Sidebar) IsSelected(index int) bool {
	return s.hasSelect && s.selected == index
}

// Highlighted returns the indexes of highlighted rows; never more than one.
func (s *Sidebar) Highlighted() []int {
	if !s.hasSelect {
		return nil
	}
	return []int{s.selected}
}

// ItemIndexes returns the row indexes of all item rows, for cursor movement.
func (s *Sidebar) ItemIndexes() []int {
	var out []int
	for i, r := range s.rows {
		if r.Kind == RowItem {
			out = append(out, i)
		}
	}
	return out
}

// Headers returns the header labels in row order.
func (s *Sidebar) Headers() []string {
	var out []string
	for _, r := range s.rows {
		if r.Kind == RowHeader {
			out = append(out, r.Label)
		}
	}
	return out
}
