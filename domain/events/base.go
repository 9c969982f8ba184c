package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeEmployeeRegistered = "employee.registered"
	TypeAttendanceRecorded = "attendance.recorded"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetEventID() string
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventID     string    `json:"event_id"`
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetEventID() string      { return e.EventID }
func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBase(aggregateID, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		EventID:     uuid.New().String(),
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     1,
	}
}

// EmployeeRegistered is raised when a new face is indexed and mapped to a name
type EmployeeRegistered struct {
	BaseEvent
	FaceID    string `json:"face_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	SourceKey string `json:"source_key"`
}

// NewEmployeeRegistered creates an EmployeeRegistered event
func NewEmployeeRegistered(faceID, firstName, lastName, sourceKey string, timestamp time.Time) EmployeeRegistered {
	return EmployeeRegistered{
		BaseEvent: newBase(faceID, TypeEmployeeRegistered, timestamp),
		FaceID:    faceID,
		FirstName: firstName,
		LastName:  lastName,
		SourceKey: sourceKey,
	}
}

// AttendanceRecorded is raised after a check-in is written
type AttendanceRecorded struct {
	BaseEvent
	EmployeeID  string `json:"employee_id"`
	Date        string `json:"date"`
	RecordedAt  string `json:"recorded_at"`
	DisplayName string `json:"display_name"`
}

// NewAttendanceRecorded creates an AttendanceRecorded event
func NewAttendanceRecorded(employeeID, date, recordedAt, displayName string, timestamp time.Time) AttendanceRecorded {
	return AttendanceRecorded{
		BaseEvent:   newBase(employeeID, TypeAttendanceRecorded, timestamp),
		EmployeeID:  employeeID,
		Date:        date,
		RecordedAt:  recordedAt,
		DisplayName: displayName,
	}
}
