package memory

import (
	"context"
	"fmt"
	"sync"

	"attendance-backend/application/ports"
	"attendance-backend/domain/employee"
	pkgerrors "attendance-backend/pkg/errors"
)

// EmployeeStore keeps identities in a map keyed by face ID
type EmployeeStore struct {
	faults
	mu        sync.RWMutex
	employees map[string]*employee.Employee
}

// NewEmployeeStore creates an empty store
func NewEmployeeStore() *EmployeeStore {
	return &EmployeeStore{employees: make(map[string]*employee.Employee)}
}

var _ ports.EmployeeRepository = (*EmployeeStore)(nil)

func (s *EmployeeStore) EnsureTable(ctx context.Context) error {
	return s.checkError("EnsureTable")
}

func (s *EmployeeStore) Save(ctx context.Context, emp *employee.Employee) error {
	if err := s.checkError("Save"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.employees[emp.FaceID()]; exists {
		return pkgerrors.NewConflictError(fmt.Sprintf("employee %s already exists", emp.FaceID()))
	}
	s.employees[emp.FaceID()] = emp
	return nil
}

func (s *EmployeeStore) GetByFaceID(ctx context.Context, faceID string) (*employee.Employee, error) {
	if err := s.checkError("GetByFaceID"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	emp, ok := s.employees[faceID]
	if !ok {
		return nil, employee.ErrNotFound
	}
	return emp, nil
}

// Count returns the number of stored identities
func (s *EmployeeStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.employees)
}
