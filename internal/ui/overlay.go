package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func (m Model) renderConfirmQuit() string {
	bc := lipgloss.NewStyle().Foreground(ColorYellow)
	tc := lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)

	innerW := 30
	side := bc.Render("┃")
	blank := side + strings.Repeat(" ", innerW) + side
	row := func(s string) string {
		return side + s + strings.Repeat(" ", max(innerW-visibleLen(s), 0)) + side
	}

	title := " QUIT "
	fillLen := max(innerW-3-len(title), 0)

	rows := []string{
		bc.Render("┏━╸") + tc.Render(title) + bc.Render("╺"+strings.Repeat("━", fillLen)+"┓"),
		blank,
		row(lipgloss.NewStyle().Foreground(ColorWhite).Bold(true).Render("  Exit convo?")),
		blank,
		row(fmt.Sprintf("  %s yes  %s no",
			lipgloss.NewStyle().Foreground(ColorSelect).Bold(true).Render("[y/q]"),
			DimStyle.Render("[n]"))),
		blank,
		bc.Render("┗" + strings.Repeat("━", innerW) + "┛"),
	}
	return strings.Join(rows, "\n")
}

// overlayCenter composites modal over the middle of bg, keeping the background
// visible on both sides of it.
func overlayCenter(bg, modal string, width, height int) string {
	bgLines := strings.Split(bg, "\n")
	modalLines := strings.Split(modal, "\n")

	for len(bgLines) < height {
		bgLines = append(bgLines, "")
	}

	modalW := 0
	for _, ml := range modalLines {
		modalW = max(modalW, visibleLen(ml))
	}

	topOff := max((height-len(modalLines))/2, 0)
	leftOff := max((width-modalW)/2, 0)

	for i, ml := range modalLines {
		if r := topOff + i; r < len(bgLines) {
			bgLines[r] = spliceLine(bgLines[r], ml, leftOff)
		}
	}
	return strings.Join(bgLines, "\n")
}

// spliceLine writes over onto line starting at visible column col.
func spliceLine(line, over string, col int) string {
	left := padRight(ansi.Truncate(line, col, ""), col)
	right := ansi.TruncateLeft(line, col+visibleLen(over), "")
	return left + "\x1b[0m" + over + "\x1b[0m" + right
}
