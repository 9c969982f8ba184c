package ports

import (
	"context"
	"errors"
	"time"

	"attendance-backend/domain/attendance"
	"attendance-backend/domain/employee"
	"attendance-backend/domain/events"
)

// ErrNoFaceDetected is returned by a FaceCollection when the image holds no
// usable face.
var ErrNoFaceDetected = errors.New("no face detected in image")

// ImageRef points at an uploaded image in object storage.
type ImageRef struct {
	Bucket string
	Key    string
}

// FaceMatch is one search hit, ranked by similarity (0-100).
type FaceMatch struct {
	FaceID     string
	Similarity float64
}

// FaceCollection is the face index used for enrollment and matching
// This is a port in hexagonal architecture - the workflows never see Rekognition types
type FaceCollection interface {
	// EnsureCollection creates the collection if absent; "already exists" is success
	EnsureCollection(ctx context.Context) error

	// SearchByImage returns matches at or above threshold, best first
	SearchByImage(ctx context.Context, img ImageRef, maxFaces int, threshold float64) ([]FaceMatch, error)

	// IndexFace adds the single face in img and returns its descriptor ID
	IndexFace(ctx context.Context, img ImageRef) (string, error)
}

// EmployeeRepository persists identity records
type EmployeeRepository interface {
	EnsureTable(ctx context.Context) error

	// Save creates the identity; an existing face ID is a conflict
	Save(ctx context.Context, emp *employee.Employee) error

	// GetByFaceID returns employee.ErrNotFound when no identity exists
	GetByFaceID(ctx context.Context, faceID string) (*employee.Employee, error)
}

// AttendanceRepository persists attendance records
type AttendanceRepository interface {
	EnsureTable(ctx context.Context) error

	// ExistsForDate reports whether the employee already checked in on date
	ExistsForDate(ctx context.Context, employeeID, date string) (bool, error)

	// Create writes the record and reserves (employee, date) atomically.
	// It returns attendance.ErrAlreadyRecorded when the day is taken.
	Create(ctx context.Context, rec *attendance.Record) error

	// ListByDate returns every record on date
	ListByDate(ctx context.Context, date string) ([]*attendance.Record, error)

	// ListByDateRange returns every record with start <= date <= end
	ListByDateRange(ctx context.Context, start, end string) ([]*attendance.Record, error)
}

// NameResolver derives the person's name for an enrollment image
type NameResolver interface {
	Resolve(ctx context.Context, img ImageRef) (firstName, lastName string, err error)
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, evts ...events.DomainEvent) error
}

// MetricsRecorder records workflow outcomes
type MetricsRecorder interface {
	RecordOutcome(ctx context.Context, workflow, status string)
	RecordDuration(ctx context.Context, workflow string, d time.Duration)
}

// Clock supplies the current time in the configured location
type Clock interface {
	Now() time.Time
}
