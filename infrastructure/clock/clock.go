// Package clock supplies wall-clock time in the configured location.
package clock

import "time"

// System reads the wall clock. A nil Location means UTC.
type System struct {
	Location *time.Location
}

func (c System) Now() time.Time {
	if c.Location == nil {
		return time.Now().UTC()
	}
	return time.Now().In(c.Location)
}
