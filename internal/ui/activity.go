package ui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/thinkwright/convo/internal/browse"
)

// Grapher draws an activity series into a width x height cell area. The series is
// whatever the backend delivered; a grapher that cannot read it returns "".
type Grapher interface {
	Graph(series json.RawMessage, width, height int) string
}

// SparkGrapher is the bundled grapher. It reads a list of {date,count} points, a
// list of numbers, or an object of label to number, and draws a bar sparkline
// with the range underneath.
type SparkGrapher struct{}

func (SparkGrapher) Graph(series json.RawMessage, width, height int) string {
	if width < 1 || height < 1 {
		return ""
	}
	values, first, last, ok := decodeSeries(series)
	if !ok || len(values) == 0 {
		return ""
	}
	first = strings.ReplaceAll(browse.Sanitize(first), "\n", " ")
	last = strings.ReplaceAll(browse.Sanitize(last), "\n", " ")

	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}

	spark := lipgloss.NewStyle().Foreground(ColorGreen).Render(Sparkline(values, width))
	if height == 1 {
		return spark
	}

	caption := fmt.Sprintf("peak %g", peak)
	if first != "" {
		caption = fmt.Sprintf("%s → %s  %s", first, last, caption)
	}
	return spark + "\n" + DimStyle.Render(truncateToWidth(caption, width))
}

type activityPoint struct {
	Date  string   `json:"date"`
	Count *float64 `json:"count"`
}

// decodeSeries accepts the three series shapes and returns the values in order
// together with the first and last labels, when the shape has labels.
func decodeSeries(raw json.RawMessage) ([]float64, string, string, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, "", "", false
	}

	switch trimmed[0] {
	case '[':
		var nums []float64
		if err := json.Unmarshal(raw, &nums); err == nil {
			return nums, "", "", true
		}
		var points []activityPoint
		if err := json.Unmarshal(raw, &points); err != nil {
			return nil, "", "", false
		}
		values := make([]float64, 0, len(points))
		for _, p := range points {
			if p.Count == nil {
				return nil, "", "", false
			}
			values = append(values, *p.Count)
		}
		if len(points) == 0 {
			return values, "", "", true
		}
		return values, points[0].Date, points[len(points)-1].Date, true
	case '{':
		var byLabel map[string]float64
		if err := json.Unmarshal(raw, &byLabel); err != nil {
			return nil, "", "", false
		}
		labels := make([]string, 0, len(byLabel))
		for l := range byLabel {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		values := make([]float64, 0, len(labels))
		for _, l := range labels {
			values = append(values, byLabel[l])
		}
		if len(labels) == 0 {
			return values, "", "", true
		}
		return values, labels[0], labels[len(labels)-1], true
	}
	return nil, "", "", false
}

// Sparkline renders values as a row of block bars, resampled to width.
func Sparkline(values []float64, width int) string {
	bars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	if len(values) == 0 || width < 1 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Short series are drawn at their own length instead of being stretched.
	if len(values) < width {
		width = len(values)
	}
	sampled := make([]float64, width)
	for i := 0; i < width; i++ {
		srcIdx := i * len(values) / width
		if srcIdx >= len(values) {
			srcIdx = len(values) - 1
		}
		sampled[i] = values[srcIdx]
	}

	var b strings.Builder
	for _, v := range sampled {
		idx := int(v / maxVal * float64(len(bars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(bars) {
			idx = len(bars) - 1
		}
		b.WriteRune(bars[idx])
	}
	return b.String()
}
