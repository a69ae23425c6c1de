// package repositories provides persistence layer implementations for the employee model.
package repositories

import (
	"fmt"
	"strings"

	"github.com/desertthunder/ems/internal/models"
	"github.com/desertthunder/ems/internal/shared"
)

// Column maps an entity field to its table column.
type Column struct {
	Field  string
	Column string
}

// Entity describes how an entity name and its fields map onto a table.
type Entity struct {
	Name    string
	Table   string
	Columns []Column
}

// EmployeeEntity maps [models.Employee] onto the employees table.
var EmployeeEntity = Entity{
	Name:  "Employee",
	Table: "employees",
	Columns: []Column{
		{Field: "id", Column: "id"},
		{Field: "firstName", Column: "first_name"},
		{Field: "lastName", Column: "last_name"},
		{Field: "email", Column: "email"},
	},
}

// ColumnFor returns the column backing field.
func (e Entity) ColumnFor(field string) (string, bool) {
	for _, c := range e.Columns {
		if c.Field == field {
			return c.Column, true
		}
	}
	return "", false
}

// SelectList renders the column list qualified with alias, e.g. "e.id, e.first_name".
func (e Entity) SelectList(alias string) string {
	cols := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		if alias == "" {
			cols[i] = c.Column
		} else {
			cols[i] = alias + "." + c.Column
		}
	}
	return strings.Join(cols, ", ")
}

// Entity queries shared by both stores. Compiled per dialect in each store.
const (
	employeeByNamePositional = "select e from Employee e where e.firstName = ?1 and e.lastName = ?2"
	employeeByNameNamed      = "select e from Employee e where e.firstName = :firstName and e.lastName = :lastName"
)

// single enforces single-result semantics over a scanned result set.
func single(employees []models.Employee, firstName, lastName string) (*models.Employee, error) {
	switch len(employees) {
	case 0:
		return nil, fmt.Errorf("%w: %s %s", shared.ErrEmployeeNotFound, firstName, lastName)
	case 1:
		return &employees[0], nil
	default:
		return nil, fmt.Errorf("%w: %d employees named %s %s", shared.ErrNonUniqueResult, len(employees), firstName, lastName)
	}
}
