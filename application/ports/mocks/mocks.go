// Package mocks provides testify mocks of the application ports.
package mocks

import (
	"context"
	"time"

	"attendance-backend/application/ports"
	"attendance-backend/domain/attendance"
	"attendance-backend/domain/employee"
	"attendance-backend/domain/events"

	"github.com/stretchr/testify/mock"
)

// FaceCollection mocks ports.FaceCollection.
type FaceCollection struct {
	mock.Mock
}

func (m *FaceCollection) EnsureCollection(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *FaceCollection) SearchByImage(ctx context.Context, img ports.ImageRef, maxFaces int, threshold float64) ([]ports.FaceMatch, error) {
	args := m.Called(ctx, img, maxFaces, threshold)
	matches, _ := args.Get(0).([]ports.FaceMatch)
	return matches, args.Error(1)
}

func (m *FaceCollection) IndexFace(ctx context.Context, img ports.ImageRef) (string, error) {
	args := m.Called(ctx, img)
	return args.String(0), args.Error(1)
}

// EmployeeRepository mocks ports.EmployeeRepository.
type EmployeeRepository struct {
	mock.Mock
}

func (m *EmployeeRepository) EnsureTable(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *EmployeeRepository) Save(ctx context.Context, emp *employee.Employee) error {
	args := m.Called(ctx, emp)
	return args.Error(0)
}

func (m *EmployeeRepository) GetByFaceID(ctx context.Context, faceID string) (*employee.Employee, error) {
	args := m.Called(ctx, faceID)
	emp, _ := args.Get(0).(*employee.Employee)
	return emp, args.Error(1)
}

// AttendanceRepository mocks ports.AttendanceRepository.
type AttendanceRepository struct {
	mock.Mock
}

func (m *AttendanceRepository) EnsureTable(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *AttendanceRepository) ExistsForDate(ctx context.Context, employeeID, date string) (bool, error) {
	args := m.Called(ctx, employeeID, date)
	return args.Bool(0), args.Error(1)
}

func (m *AttendanceRepository) Create(ctx context.Context, rec *attendance.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *AttendanceRepository) ListByDate(ctx context.Context, date string) ([]*attendance.Record, error) {
	args := m.Called(ctx, date)
	recs, _ := args.Get(0).([]*attendance.Record)
	return recs, args.Error(1)
}

func (m *AttendanceRepository) ListByDateRange(ctx context.Context, start, end string) ([]*attendance.Record, error) {
	args := m.Called(ctx, start, end)
	recs, _ := args.Get(0).([]*attendance.Record)
	return recs, args.Error(1)
}

// NameResolver mocks ports.NameResolver.
type NameResolver struct {
	mock.Mock
}

func (m *NameResolver) Resolve(ctx context.Context, img ports.ImageRef) (string, string, error) {
	args := m.Called(ctx, img)
	return args.String(0), args.String(1), args.Error(2)
}

// EventPublisher mocks ports.EventPublisher.
type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

// MetricsRecorder mocks ports.MetricsRecorder.
type MetricsRecorder struct {
	mock.Mock
}

func (m *MetricsRecorder) RecordOutcome(ctx context.Context, workflow, status string) {
	m.Called(ctx, workflow, status)
}

func (m *MetricsRecorder) RecordDuration(ctx context.Context, workflow string, d time.Duration) {
	m.Called(ctx, workflow, d)
}

// Clock is a fixed clock.
type Clock struct {
	T time.Time
}

func (c Clock) Now() time.Time { return c.T }
