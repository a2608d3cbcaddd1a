package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	"github.com/thinkwright/convo/internal/browse"
)

// DetailPane draws the blocks of browse.Detail as scrollable lines. Lines are
// rebuilt whenever the blocks or the width change.
type DetailPane struct {
	detail *browse.Detail
	blocks []browse.Block
	lines  []string
	scroll int
	width  int
	height int
}

func NewDetailPane(d *browse.Detail) DetailPane {
	return DetailPane{detail: d}
}

func (p *DetailPane) SetSize(w, h int) {
	p.height = h
	if w != p.width {
		p.width = w
		p.rebuild()
	}
	p.clampScroll()
}

// Sync picks up new content from the detail state and scrolls to the top when
// the content was replaced.
func (p *DetailPane) Sync() {
	p.blocks = p.detail.Blocks()
	p.rebuild()
	if p.detail.TakeScrollTop() {
		p.scroll = 0
	}
	p.clampScroll()
}

func (p *DetailPane) ScrollUp(n int) {
	p.scroll -= n
	p.clampScroll()
}

func (p *DetailPane) ScrollDown(n int) {
	p.scroll += n
	p.clampScroll()
}

func (p *DetailPane) Top() {
	p.scroll = 0
}

func (p *DetailPane) Bottom() {
	p.scroll = len(p.lines)
	p.clampScroll()
}

func (p *DetailPane) clampScroll() {
	maxScroll := len(p.lines) - max(p.height, 1)
	if p.scroll > maxScroll {
		p.scroll = maxScroll
	}
	if p.scroll < 0 {
		p.scroll = 0
	}
}

// Title is the panel title for the current view.
func (p *DetailPane) Title() string {
	switch p.detail.View() {
	case browse.ViewThread:
		return fmt.Sprintf("THREAD (%d MSGS)", max(len(p.blocks)-1, 0))
	case browse.ViewSearching:
		return fmt.Sprintf("SEARCH %q", p.detail.Query())
	case browse.ViewSearch:
		n := 0
		for _, b := range p.blocks {
			if b.Kind == browse.BlockResult {
				n++
			}
		}
		return fmt.Sprintf("SEARCH %q (%d)", p.detail.Query(), n)
	}
	return "DETAIL"
}

// View renders the visible window. spin is the spinner frame shown next to the
// searching placeholder.
func (p *DetailPane) View(spin string) string {
	if p.detail.View() == browse.ViewEmpty {
		return "\n" + DimStyle.Render("  Select a conversation or press / to search")
	}

	available := max(p.height, 1)
	innerW := p.width - 3
	scrollbar := RenderScrollbar(available, len(p.lines), p.scroll)

	lines := make([]string, 0, available)
	for idx := 0; idx < available; idx++ {
		content := ""
		if i := p.scroll + idx; i < len(p.lines) {
			content = p.lines[i]
		}
		if p.detail.View() == browse.ViewSearching && idx == 1 && p.scroll == 0 {
			content = "  " + lipgloss.NewStyle().Foreground(ColorYellow).Render(spin) + " " + content
		}
		sb := " "
		if idx < len(scrollbar) {
			sb = scrollbar[idx]
		}
		lines = append(lines, padRight(truncateToWidth(content, innerW), innerW)+sb)
	}
	return strings.Join(lines, "\n")
}

func (p *DetailPane) rebuild() {
	w := p.width - 3
	if w < 1 {
		p.lines = nil
		return
	}
	var lines []string
	for _, b := range p.blocks {
		lines = append(lines, renderBlock(b, w)...)
	}
	p.lines = lines
}

// renderBlock lays one block out at width w. Shaded blocks get the alternate row
// background across the full width.
func renderBlock(b browse.Block, w int) []string {
	bg := lipgloss.NewStyle()
	if b.Shaded {
		bg = bg.Background(ColorRowAlt)
	}
	paint := func(s lipgloss.Style) lipgloss.Style {
		if b.Shaded {
			return s.Background(ColorRowAlt)
		}
		return s
	}
	fill := func(line string) string {
		if pad := w - visibleLen(line); pad > 0 {
			line += bg.Render(strings.Repeat(" ", pad))
		}
		return line
	}

	var out []string
	switch b.Kind {
	case browse.BlockLink:
		out = append(out,
			"",
			"  "+LinkStyle.Render("↗ "+b.Title)+DimStyle.Render("  [o]"),
			"  "+DimStyle.Render(truncateToWidth(b.URL, w-2)),
			DimStyle.Render(makeSep(w)),
		)

	case browse.BlockMessage:
		head := "  " + roleStyle(b.Role).Render(strings.ToUpper(orUnknown(b.Role)))
		if b.Created != "" {
			head += "  " + DimStyle.Render(b.Created)
		}
		out = append(out, "", head)
		for _, l := range wrapText(b.Text, w-4) {
			out = append(out, "    "+NormalStyle.Render(l))
		}

	case browse.BlockPlaceholder:
		// The spinner is drawn in front of the second line by View.
		out = append(out, "", lipgloss.NewStyle().Foreground(ColorYellow).Render(b.Title))

	case browse.BlockEmpty:
		out = append(out, "", "  "+DimStyle.Render(b.Title))

	case browse.BlockResult:
		title := b.Title
		if title == "" {
			title = "(untitled)"
		}
		head := paint(lipgloss.NewStyle()).Render("  ") + paint(HeaderStyle).Render(truncateToWidth(title, w-4))
		if b.Created != "" {
			head += paint(DimStyle).Render("  " + b.Created)
		}
		out = append(out, fill(""), fill(head))
		role := paint(roleStyle(b.Role)).Render(strings.ToLower(orUnknown(b.Role)))
		textLines := wrapText(b.Text, w-4)
		for i, l := range textLines {
			prefix := paint(lipgloss.NewStyle()).Render("    ")
			if i == 0 {
				out = append(out, fill(paint(lipgloss.NewStyle()).Render("  ")+role))
			}
			out = append(out, fill(prefix+paint(NormalStyle).Render(l)))
		}
		if len(textLines) == 0 {
			out = append(out, fill(paint(lipgloss.NewStyle()).Render("  ")+role))
		}
		out = append(out, fill(paint(lipgloss.NewStyle()).Render("  ")+paint(LinkStyle).Render(truncateToWidth(b.URL, w-2))))
	}
	return out
}

func orUnknown(role string) string {
	if role == "" {
		return "unknown"
	}
	return role
}

func makeSep(w int) string {
	return "  " + strings.Repeat("─", max(w-4, 0))
}

// wrapText word-wraps text to width, hard-breaking words longer than a line.
func wrapText(text string, width int) []string {
	if width < 1 {
		return []string{text}
	}
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	wrapped := wrap.String(wordwrap.String(text, width), width)
	return strings.Split(wrapped, "\n")
}
