// Package attendance models a single check-in and the calendar arithmetic the
// reports depend on.
package attendance

import (
	"errors"
	"time"

	"attendance-backend/domain/employee"
	pkgerrors "attendance-backend/pkg/errors"
)

const (
	// DateLayout is the calendar date format used in records and report requests.
	DateLayout = "2006-01-02"
	// TimeLayout is the time-of-day format stored on each record.
	TimeLayout = "15:04:05"
	// TimestampLayout is a fixed-width ISO-8601 form so timestamps sort lexically.
	TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

	dayMarkerPrefix = "DAY#"
)

// ErrAlreadyRecorded means the employee already has a record for that date.
var ErrAlreadyRecorded = errors.New("attendance already recorded for date")

// Record is one attendance entry. Names are copied from the identity record so
// reports never need a join.
type Record struct {
	employeeID string
	timestamp  string
	date       string
	dayOfWeek  string
	time       string
	firstName  string
	lastName   string
}

// NewRecord stamps an attendance record for emp at now. The calendar fields use
// now's location; the sort key is always UTC.
func NewRecord(emp *employee.Employee, now time.Time) (*Record, error) {
	if emp == nil {
		return nil, pkgerrors.NewValidationError("employee is required")
	}
	if now.IsZero() {
		return nil, pkgerrors.NewValidationError("timestamp is required")
	}
	return &Record{
		employeeID: emp.FaceID(),
		timestamp:  now.UTC().Format(TimestampLayout),
		date:       now.Format(DateLayout),
		dayOfWeek:  now.Weekday().String(),
		time:       now.Format(TimeLayout),
		firstName:  emp.FirstName(),
		lastName:   emp.LastName(),
	}, nil
}

// Reconstruct rebuilds a record loaded from storage.
func Reconstruct(employeeID, timestamp, date, dayOfWeek, timeOfDay, firstName, lastName string) *Record {
	return &Record{
		employeeID: employeeID,
		timestamp:  timestamp,
		date:       date,
		dayOfWeek:  dayOfWeek,
		time:       timeOfDay,
		firstName:  firstName,
		lastName:   lastName,
	}
}

func (r *Record) EmployeeID() string { return r.employeeID }
func (r *Record) Timestamp() string  { return r.timestamp }
func (r *Record) Date() string       { return r.date }
func (r *Record) DayOfWeek() string  { return r.dayOfWeek }
func (r *Record) Time() string       { return r.time }
func (r *Record) FirstName() string  { return r.firstName }
func (r *Record) LastName() string   { return r.lastName }

// DisplayName is the name reports group by.
func (r *Record) DisplayName() string {
	return employee.DisplayName(r.firstName, r.lastName)
}

// DayMarkerKey is the sort key of the item that reserves (employee, date).
func DayMarkerKey(date string) string {
	return dayMarkerPrefix + date
}

// IsDayMarkerKey reports whether a sort key belongs to a day marker rather than
// a record.
func IsDayMarkerKey(sortKey string) bool {
	return len(sortKey) >= len(dayMarkerPrefix) && sortKey[:len(dayMarkerPrefix)] == dayMarkerPrefix
}
