package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/thinkwright/convo/internal/archive"
)

const notAvailable = "n/a"

// Statistics summarizes the index as ordered label/value rows.
func (s *Store) Statistics() (archive.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		convs, msgs, groups, userMsgs, assistantMsgs int64
		first, latest                                int64
	)
	err := s.db.QueryRow(`
		SELECT COUNT(*), COUNT(DISTINCT NULLIF(group_name, '')),
			COALESCE(MIN(NULLIF(created_at, 0)), 0), COALESCE(MAX(created_at), 0)
		FROM conversations
	`).Scan(&convs, &groups, &first, &latest)
	if err != nil {
		return nil, fmt.Errorf("conversation stats: %w", err)
	}
	err = s.db.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(role = 'user'), 0),
			COALESCE(SUM(role = 'assistant'), 0)
		FROM messages
	`).Scan(&msgs, &userMsgs, &assistantMsgs)
	if err != nil {
		return nil, fmt.Errorf("message stats: %w", err)
	}

	busiest, err := s.busiestDay()
	if err != nil {
		return nil, err
	}

	average := notAvailable
	if convs > 0 {
		average = humanize.CommafWithDigits(float64(msgs)/float64(convs), 1)
	}

	st := archive.Statistics{
		{Label: "Conversations", Value: humanize.Comma(convs)},
		{Label: "Messages", Value: humanize.Comma(msgs)},
		{Label: "User messages", Value: humanize.Comma(userMsgs)},
		{Label: "Assistant messages", Value: humanize.Comma(assistantMsgs)},
		{Label: "Messages per conversation", Value: average},
		{Label: "Groups", Value: strconv.FormatInt(groups, 10)},
		{Label: "First conversation", Value: s.dayOrNA(first)},
		{Label: "Latest conversation", Value: s.dayOrNA(latest)},
		{Label: "Busiest day", Value: busiest},
		{Label: "Index size", Value: humanize.Bytes(s.sizeBytes())},
		{Label: "Last import", Value: s.importAge()},
	}
	return st, nil
}

func (s *Store) busiestDay() (string, error) {
	points, err := s.activity()
	if err != nil {
		return "", err
	}
	var best archive.ActivityPoint
	for _, p := range points {
		if p.Count > best.Count {
			best = p
		}
	}
	if best.Count == 0 {
		return notAvailable, nil
	}
	return fmt.Sprintf("%s (%s messages)", best.Date, humanize.Comma(int64(best.Count))), nil
}

func (s *Store) sizeBytes() uint64 {
	var pages, pageSize int64
	s.db.QueryRow("PRAGMA page_count").Scan(&pages)
	s.db.QueryRow("PRAGMA page_size").Scan(&pageSize)
	return uint64(pages * pageSize)
}

func (s *Store) importAge() string {
	t := s.lastImportedAt()
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

func (s *Store) dayOrNA(unix int64) string {
	if unix == 0 {
		return notAvailable
	}
	return time.Unix(unix, 0).In(s.loc).Format("2006-01-02")
}

// Activity returns message counts per day, oldest day first. Messages without
// a timestamp are not counted.
func (s *Store) Activity() ([]archive.ActivityPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activity()
}

func (s *Store) activity() ([]archive.ActivityPoint, error) {
	rows, err := s.db.Query("SELECT created_at FROM messages WHERE created_at > 0 ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("activity query: %w", err)
	}
	defer rows.Close()

	points := []archive.ActivityPoint{}
	for rows.Next() {
		var ts int64
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		day := time.Unix(ts, 0).In(s.loc).Format("2006-01-02")
		if n := len(points); n > 0 && points[n-1].Date == day {
			points[n-1].Count++
			continue
		}
		points = append(points, archive.ActivityPoint{Date: day, Count: 1})
	}
	return points, rows.Err()
}
