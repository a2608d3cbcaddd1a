package ui

import (
	"encoding/json"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/thinkwright/convo/internal/archive"
	"github.com/thinkwright/convo/internal/browse"
)

// StatsPane shows the statistics table. It stays on its loading text until the
// first successful fetch.
type StatsPane struct {
	rows   [][]string
	loaded bool
	width  int
	height int
}

func NewStatsPane() StatsPane {
	return StatsPane{}
}

func (s *StatsPane) SetSize(w, h int) {
	s.width = w
	s.height = h
}

func (s *StatsPane) SetStatistics(st archive.Statistics) {
	s.rows = browse.StatsRows(st)
	s.loaded = true
}

// Len is the number of table rows.
func (s *StatsPane) Len() int {
	return len(s.rows)
}

func (s *StatsPane) View() string {
	if !s.loaded {
		return DimStyle.Render(" Loading statistics...")
	}
	if len(s.rows) == 0 {
		return DimStyle.Render(" No statistics")
	}

	labelStyle := lipgloss.NewStyle().Foreground(ColorDim).Padding(0, 1)
	valueStyle := lipgloss.NewStyle().Foreground(ColorBarText).Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorMuted)).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(true).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return labelStyle
			}
			return valueStyle
		}).
		Rows(s.rows...)
	return t.String()
}

// ActivityPane hosts the activity graph. The payload is handed to the grapher
// untouched on every draw.
type ActivityPane struct {
	grapher Grapher
	series  json.RawMessage
	width   int
	height  int
}

func NewActivityPane(g Grapher) ActivityPane {
	if g == nil {
		g = SparkGrapher{}
	}
	return ActivityPane{grapher: g}
}

func (a *ActivityPane) SetSize(w, h int) {
	a.width = w
	a.height = h
}

func (a *ActivityPane) SetSeries(series json.RawMessage) {
	a.series = series
}

func (a *ActivityPane) View() string {
	if a.series == nil {
		return DimStyle.Render(" Loading activity...")
	}
	return a.grapher.Graph(a.series, a.width-2, a.height)
}
