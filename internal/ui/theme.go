package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// Night-terminal palette: cyan chrome, green for answers, yellow for the searcher.
var (
	ColorCyan      = lipgloss.Color("#5a9ab5")
	ColorCyanDim   = lipgloss.Color("#3a6678")
	ColorAccent    = lipgloss.Color("#7fcfdf")
	ColorGreen     = lipgloss.Color("#5aaa7a")
	ColorRed       = lipgloss.Color("#b56a6a")
	ColorYellow    = lipgloss.Color("#b5a05a")
	ColorYellowDim = lipgloss.Color("#5a5030")
	ColorDim       = lipgloss.Color("#3a5565")
	ColorMuted     = lipgloss.Color("#1a2a35")
	ColorBg        = lipgloss.Color("#000000")
	ColorBarBg     = lipgloss.Color("#0f1e28") // status/header bar background
	ColorBarText   = lipgloss.Color("#d0dde5")
	ColorRowAlt    = lipgloss.Color("#0a1418") // shaded search results
	ColorWhite     = lipgloss.Color("#8899a5")
	ColorSelect    = lipgloss.Color("#c8d84a")
	ColorSelectBg  = lipgloss.Color("#1a2a1a")

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	GroupHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorYellow).
				Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorWhite)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorDim)

	LinkStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Underline(true)

	UserMsgStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	AssistantMsgStyle = lipgloss.NewStyle().
				Foreground(ColorGreen).
				Bold(true)

	ToolMsgStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	SystemMsgStyle = lipgloss.NewStyle().
			Foreground(ColorDim)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)
)

// roleStyle picks the label style for a message author.
func roleStyle(role string) lipgloss.Style {
	switch strings.ToLower(role) {
	case "user":
		return UserMsgStyle
	case "assistant":
		return AssistantMsgStyle
	case "tool":
		return ToolMsgStyle
	default:
		return SystemMsgStyle
	}
}

// ─── Custom Border Rendering ──────────────────────────────────────────
// Panels carry their title in the top border:
//   ┏━━╸ CONVERSATIONS ╺━━━━━━━━┓
//   ┃                           ┃
//   ┗━━━━━━━━━━━━━━━━━━━━━━━━━━━┛
// The focused panel switches to the double-line set.

// RenderPanel draws a w-wide panel with h content rows.
func RenderPanel(title string, content string, w, h int, focused bool) string {
	borderColor := ColorCyanDim
	titleColor := ColorCyan
	if focused {
		borderColor = lipgloss.Color("#70cc90")
		titleColor = lipgloss.Color("#a0ffbb")
	}

	bc := lipgloss.NewStyle().Foreground(borderColor)
	tc := lipgloss.NewStyle().Foreground(titleColor).Bold(true)

	innerW := w - 2

	titleText := " " + title + " "
	if maxTitle := w - 6; maxTitle > 0 && visibleLen(titleText) > maxTitle {
		titleText = truncateToWidth(titleText, maxTitle)
	}
	fillLen := w - 5 - visibleLen(titleText)
	if fillLen < 0 {
		fillLen = 0
	}

	horiz, tl, tr, bl, br, vert := "━", "┏", "┓", "┗", "┛", "┃"
	if focused {
		horiz, tl, tr, bl, br, vert = "═", "╔", "╗", "╚", "╝", "║"
	}
	topBorder := bc.Render(tl+horiz+"╸") + tc.Render(titleText) + bc.Render("╺"+strings.Repeat(horiz, fillLen)+tr)
	bottomBorder := bc.Render(bl + strings.Repeat(horiz, max(innerW, 0)) + br)
	side := bc.Render(vert)

	lines := strings.Split(content, "\n")
	for len(lines) < h {
		lines = append(lines, "")
	}
	if len(lines) > h {
		lines = lines[:h]
	}

	rows := make([]string, 0, h+2)
	rows = append(rows, topBorder)
	for _, line := range lines {
		visible := visibleLen(line)
		if visible > innerW {
			line = truncateToWidth(line, innerW)
			visible = visibleLen(line)
		}
		pad := ""
		if visible < innerW {
			pad = strings.Repeat(" ", innerW-visible)
		}
		rows = append(rows, side+line+pad+side)
	}
	rows = append(rows, bottomBorder)

	return strings.Join(rows, "\n")
}

// ─── Scrollbar ────────────────────────────────────────────────────────

// RenderScrollbar returns one scrollbar cell per visible row. The track is blank
// when everything fits.
func RenderScrollbar(height, totalLines, offset int) []string {
	if height < 1 {
		return nil
	}
	track := make([]string, height)

	if totalLines <= height {
		for i := range track {
			track[i] = " "
		}
		return track
	}

	thumbSize := (height * height) / totalLines
	if thumbSize < 1 {
		thumbSize = 1
	}

	maxOffset := totalLines - height
	if offset > maxOffset {
		offset = maxOffset
	}
	thumbPos := (offset * (height - thumbSize)) / maxOffset

	thumbChar := lipgloss.NewStyle().Foreground(ColorAccent).Render("┃")
	trackChar := lipgloss.NewStyle().Foreground(ColorMuted).Render("╎")

	for i := range track {
		if i >= thumbPos && i < thumbPos+thumbSize {
			track[i] = thumbChar
		} else {
			track[i] = trackChar
		}
	}

	return track
}

func visibleLen(s string) int {
	return runewidth.StringWidth(ansi.Strip(s))
}

// truncateToWidth cuts s to at most width cells, keeping escape sequences intact.
func truncateToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "")
}

// padRight fills s with spaces up to width cells.
func padRight(s string, width int) string {
	if pad := width - visibleLen(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
