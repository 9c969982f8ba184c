package attendance

import (
	"fmt"
	"time"
)

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// Week is the Monday-to-Sunday window containing some anchor date.
type Week struct {
	Start time.Time
	End   time.Time
}

// WeekOf returns the week whose Monday is on or before anchor.
func WeekOf(anchor time.Time) Week {
	day := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return Week{Start: start, End: start.AddDate(0, 0, 6)}
}

// StartDate is the Monday as YYYY-MM-DD.
func (w Week) StartDate() string { return w.Start.Format(DateLayout) }

// EndDate is the Sunday as YYYY-MM-DD.
func (w Week) EndDate() string { return w.End.Format(DateLayout) }

// Range renders the window as "<start> to <end>".
func (w Week) Range() string {
	return w.StartDate() + " to " + w.EndDate()
}

// Contains reports whether a YYYY-MM-DD date falls inside the window.
func (w Week) Contains(date string) bool {
	return date >= w.StartDate() && date <= w.EndDate()
}
