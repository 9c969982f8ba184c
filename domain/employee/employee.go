// Package employee holds the identity record that maps a face descriptor to
// a person.
package employee

import (
	"errors"
	"strings"

	pkgerrors "attendance-backend/pkg/errors"
)

// ErrNotFound is returned by repositories when no identity exists for a face ID.
var ErrNotFound = errors.New("employee not found")

// Employee is created once at enrollment and never changes afterwards.
type Employee struct {
	faceID    string
	firstName string
	lastName  string
}

// NewEmployee validates and builds an identity record.
func NewEmployee(faceID, firstName, lastName string) (*Employee, error) {
	if strings.TrimSpace(faceID) == "" {
		return nil, pkgerrors.NewValidationError("faceID cannot be empty")
	}
	if strings.TrimSpace(firstName) == "" {
		return nil, pkgerrors.NewValidationError("firstName cannot be empty")
	}
	return &Employee{
		faceID:    faceID,
		firstName: firstName,
		lastName:  lastName,
	}, nil
}

// Reconstruct rebuilds an employee from stored data without validation.
func Reconstruct(faceID, firstName, lastName string) *Employee {
	return &Employee{faceID: faceID, firstName: firstName, lastName: lastName}
}

func (e *Employee) FaceID() string    { return e.faceID }
func (e *Employee) FirstName() string { return e.firstName }
func (e *Employee) LastName() string  { return e.lastName }

// DisplayName is "First Last", or just "First" when there is no last name.
func (e *Employee) DisplayName() string {
	return DisplayName(e.firstName, e.lastName)
}

// DisplayName joins a first and last name the way reports group people.
func DisplayName(firstName, lastName string) string {
	return strings.TrimSpace(firstName + " " + lastName)
}
