package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/thinkwright/convo/internal/browse"
)

// ConversationList draws the sidebar rows and keeps a keyboard cursor over the
// item rows. The highlight itself belongs to browse.Sidebar; the cursor is only
// where enter will land.
type ConversationList struct {
	sidebar *browse.Sidebar
	items   []int // row indexes of item rows
	cursor  int   // position in items
	scroll  int   // first visible row
	width   int
	height  int
	empty   string
}

func NewConversationList(sb *browse.Sidebar) ConversationList {
	return ConversationList{sidebar: sb, empty: "Loading conversations..."}
}

func (l *ConversationList) SetSize(w, h int) {
	l.width = w
	l.height = h
	l.ensureVisible()
}

// SetEmptyText sets what the list shows when it has no rows.
func (l *ConversationList) SetEmptyText(s string) {
	l.empty = s
}

// Reset is called after every sidebar render: the rows are new, so the cursor and
// scroll go back to the top.
func (l *ConversationList) Reset() {
	l.items = l.sidebar.ItemIndexes()
	l.cursor = 0
	l.scroll = 0
}

func (l *ConversationList) Up() {
	if l.cursor > 0 {
		l.cursor--
		l.ensureVisible()
	}
}

func (l *ConversationList) Down() {
	if l.cursor < len(l.items)-1 {
		l.cursor++
		l.ensureVisible()
	}
}

func (l *ConversationList) PageUp() {
	l.cursor = max(l.cursor-max(l.height-1, 1), 0)
	l.ensureVisible()
}

func (l *ConversationList) PageDown() {
	if len(l.items) == 0 {
		return
	}
	l.cursor = min(l.cursor+max(l.height-1, 1), len(l.items)-1)
	l.ensureVisible()
}

// CursorRow returns the row index under the cursor.
func (l *ConversationList) CursorRow() (int, bool) {
	if len(l.items) == 0 {
		return 0, false
	}
	return l.items[l.cursor], true
}

// RowAt maps a content line of the panel (0 = first line) to a row index.
func (l *ConversationList) RowAt(line int) (int, bool) {
	if line < 0 || line >= l.height {
		return 0, false
	}
	row := l.scroll + line
	if row >= len(l.sidebar.Rows()) {
		return 0, false
	}
	return row, true
}

// MoveTo puts the cursor on the item row, if it is one.
func (l *ConversationList) MoveTo(row int) {
	for i, r := range l.items {
		if r == row {
			l.cursor = i
			l.ensureVisible()
			return
		}
	}
}

func (l *ConversationList) ensureVisible() {
	if len(l.items) == 0 || l.height < 1 {
		return
	}
	row := l.items[l.cursor]
	top := row
	// Keep the group header of the first item in a run on screen with it.
	if rows := l.sidebar.Rows(); row > 0 && rows[row-1].Kind == browse.RowHeader {
		top = row - 1
	}
	if top < l.scroll {
		l.scroll = top
	}
	if row >= l.scroll+l.height {
		l.scroll = row - l.height + 1
	}
}

func (l *ConversationList) View(focused bool) string {
	rows := l.sidebar.Rows()
	if len(rows) == 0 {
		return "\n" + DimStyle.Render("  "+l.empty)
	}

	available := max(l.height, 1)
	innerW := l.width - 3 // panel inner width minus the scrollbar gutter
	scrollbar := RenderScrollbar(available, len(rows), l.scroll)
	cursorRow, hasCursor := l.CursorRow()

	lines := make([]string, 0, available)
	for idx := 0; idx < available; idx++ {
		sb := " "
		if idx < len(scrollbar) {
			sb = scrollbar[idx]
		}
		i := l.scroll + idx
		if i >= len(rows) {
			lines = append(lines, strings.Repeat(" ", max(innerW, 0))+sb)
			continue
		}
		r := rows[i]
		if r.Kind == browse.RowHeader {
			label := strings.ReplaceAll(browse.Sanitize(r.Label), "\n", " ")
			line := GroupHeaderStyle.Render(" ■ " + truncateToWidth(label, innerW-3))
			lines = append(lines, padRight(line, innerW)+sb)
			continue
		}
		lines = append(lines, l.renderItem(r, innerW, l.sidebar.IsSelected(i), focused && hasCursor && i == cursorRow)+sb)
	}
	return strings.Join(lines, "\n")
}

func (l *ConversationList) renderItem(r browse.Row, innerW int, selected, underCursor bool) string {
	title := strings.ReplaceAll(browse.Sanitize(r.Label), "\n", " ")
	if title == "" {
		title = "(untitled)"
	}
	created := browse.Sanitize(r.Conversation.Created)
	titleW := innerW - 3 - 2 - visibleLen(created)
	if titleW < 4 {
		titleW = max(innerW-3, 0)
		created = ""
	}
	if visibleLen(title) > titleW {
		title = truncateToWidth(title, max(titleW-1, 0)) + "…"
	}

	marker := " "
	if underCursor {
		marker = "›"
	}

	if selected {
		sel := lipgloss.NewStyle().Background(ColorSelectBg)
		line := sel.Render(" ") +
			sel.Foreground(ColorSelect).Render("▸") +
			sel.Render(" ") +
			sel.Foreground(ColorSelect).Bold(true).Render(title)
		if created != "" {
			gap := innerW - visibleLen(line) - visibleLen(created)
			line += sel.Render(strings.Repeat(" ", max(gap, 2))) + sel.Foreground(ColorSelect).Render(created)
		}
		if pad := innerW - visibleLen(line); pad > 0 {
			line += sel.Render(strings.Repeat(" ", pad))
		}
		return line
	}

	titleStyle := NormalStyle
	if underCursor {
		titleStyle = titleStyle.Foreground(ColorAccent)
	}
	line := " " + lipgloss.NewStyle().Foreground(ColorAccent).Render(marker) + " " + titleStyle.Render(title)
	if created != "" {
		gap := innerW - visibleLen(line) - visibleLen(created)
		line += strings.Repeat(" ", max(gap, 2)) + DimStyle.Render(created)
	}
	return padRight(line, innerW)
}
