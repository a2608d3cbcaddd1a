package browse

import "github.com/thinkwright/convo/internal/archive"

// StatsRows turns statistics into two-column table rows in delivered order.
func StatsRows(st archive.Statistics) [][]string {
	rows := make([][]string, 0, len(st))
	for _, s := range st {
		rows = append(rows, []string{Sanitize(s.Label), Sanitize(s.Value)})
	}
	return rows
}
