// package models defines the data model for the employee management service
package models

import (
	"context"
	"fmt"
	"strings"
)

// Employee is a person record persisted in the employees table.
type Employee struct {
	ID        int64  `json:"id" db:"id"`
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
	Email     string `json:"email" db:"email"`
}

// NewEmployee creates an unsaved [Employee].
func NewEmployee(firstName, lastName, email string) *Employee {
	return &Employee{FirstName: firstName, LastName: lastName, Email: email}
}

// Validate reports the first missing or malformed field.
func (e *Employee) Validate() error {
	switch {
	case strings.TrimSpace(e.FirstName) == "":
		return fmt.Errorf("first name is required")
	case strings.TrimSpace(e.LastName) == "":
		return fmt.Errorf("last name is required")
	case strings.TrimSpace(e.Email) == "":
		return fmt.Errorf("email is required")
	case !strings.Contains(e.Email, "@"):
		return fmt.Errorf("email %q is not an address", e.Email)
	}
	return nil
}

// Merge overwrites the mutable fields of e with those from src, keeping e's identity.
func (e *Employee) Merge(src Employee) {
	e.FirstName = src.FirstName
	e.LastName = src.LastName
	e.Email = src.Email
}

// FullName joins first and last name.
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// EmployeeRepository is the persistence port for [Employee].
type EmployeeRepository interface {
	Save(ctx context.Context, employee *Employee) (*Employee, error)  // Save inserts when ID is 0, otherwise overwrites the row with that ID
	FindAll(ctx context.Context) ([]Employee, error)                  // FindAll returns every employee ordered by ID
	FindByID(ctx context.Context, id int64) (*Employee, error)        // FindByID returns nil when absent
	DeleteByID(ctx context.Context, id int64) error                   // DeleteByID succeeds when the row does not exist
	FindByEmail(ctx context.Context, email string) (*Employee, error) // FindByEmail returns nil when absent

	// FindByFirstNameAndLastName matches both names exactly.
	FindByFirstNameAndLastName(ctx context.Context, firstName, lastName string) (*Employee, error)
	// FindByNameQuery runs an entity query with positional parameters.
	FindByNameQuery(ctx context.Context, firstName, lastName string) (*Employee, error)
	// FindByNameQueryNamed runs an entity query with named parameters.
	FindByNameQueryNamed(ctx context.Context, firstName, lastName string) (*Employee, error)
	// FindByNameSQL runs native SQL with positional parameters.
	FindByNameSQL(ctx context.Context, firstName, lastName string) (*Employee, error)
	// FindByNameSQLNamed runs native SQL with named parameters.
	FindByNameSQLNamed(ctx context.Context, firstName, lastName string) (*Employee, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}
