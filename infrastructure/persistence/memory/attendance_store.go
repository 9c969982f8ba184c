package memory

import (
	"context"
	"sort"
	"sync"

	"attendance-backend/application/ports"
	"attendance-backend/domain/attendance"
)

type dayKey struct {
	employeeID string
	date       string
}

// AttendanceStore keeps records in insertion order plus a set of reserved
// (employee, date) pairs. Create checks and reserves under one lock.
type AttendanceStore struct {
	faults
	mu       sync.RWMutex
	records  []*attendance.Record
	reserved map[dayKey]bool
}

// NewAttendanceStore creates an empty store
func NewAttendanceStore() *AttendanceStore {
	return &AttendanceStore{reserved: make(map[dayKey]bool)}
}

var _ ports.AttendanceRepository = (*AttendanceStore)(nil)

func (s *AttendanceStore) EnsureTable(ctx context.Context) error {
	return s.checkError("EnsureTable")
}

func (s *AttendanceStore) ExistsForDate(ctx context.Context, employeeID, date string) (bool, error) {
	if err := s.checkError("ExistsForDate"); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reserved[dayKey{employeeID, date}], nil
}

func (s *AttendanceStore) Create(ctx context.Context, rec *attendance.Record) error {
	if err := s.checkError("Create"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey{rec.EmployeeID(), rec.Date()}
	if s.reserved[key] {
		return attendance.ErrAlreadyRecorded
	}
	s.reserved[key] = true
	s.records = append(s.records, rec)
	return nil
}

func (s *AttendanceStore) ListByDate(ctx context.Context, date string) ([]*attendance.Record, error) {
	return s.ListByDateRange(ctx, date, date)
}

func (s *AttendanceStore) ListByDateRange(ctx context.Context, start, end string) ([]*attendance.Record, error) {
	if err := s.checkError("List"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*attendance.Record
	for _, rec := range s.records {
		if rec.Date() >= start && rec.Date() <= end {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Seed inserts records as-is, bypassing the one-per-day reservation. It lets
// tests load rows written before the reservation existed.
func (s *AttendanceStore) Seed(recs ...*attendance.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, recs...)
	sort.SliceStable(s.records, func(i, j int) bool {
		return s.records[i].Timestamp() < s.records[j].Timestamp()
	})
}

// CountFor returns how many records the employee has on date
func (s *AttendanceStore) CountFor(employeeID, date string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, rec := range s.records {
		if rec.EmployeeID() == employeeID && rec.Date() == date {
			n++
		}
	}
	return n
}
