package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/ems/internal/models"
	"github.com/desertthunder/ems/internal/shared"
)

// Service defines the employee operations exposed to the API, CLI and TUI.
type Service interface {
	// SaveEmployee creates an employee whose email is not yet taken.
	SaveEmployee(ctx context.Context, employee *models.Employee) (*models.Employee, error)

	// GetAllEmployees returns every employee, possibly none.
	GetAllEmployees(ctx context.Context) ([]models.Employee, error)

	// GetEmployeeByID returns nil when no employee has the ID.
	GetEmployeeByID(ctx context.Context, id int64) (*models.Employee, error)

	// UpdateEmployee saves the employee unconditionally.
	UpdateEmployee(ctx context.Context, employee *models.Employee) (*models.Employee, error)

	// DeleteEmployee removes the employee with the ID. Missing IDs are not an error.
	DeleteEmployee(ctx context.Context, id int64) error

	// FindEmployeeByName runs the lookup selected by kind.
	FindEmployeeByName(ctx context.Context, firstName, lastName string, kind QueryKind) (*models.Employee, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// QueryKind names one of the repository's name lookups.
type QueryKind string

const (
	QueryDerived     QueryKind = "derived"     // explicit first and last name query
	QueryEntity      QueryKind = "query"       // entity query, positional parameters
	QueryEntityNamed QueryKind = "query-named" // entity query, named parameters
	QuerySQL         QueryKind = "sql"         // native SQL, positional parameters
	QuerySQLNamed    QueryKind = "sql-named"   // native SQL, named parameters
)

// QueryKinds lists every [QueryKind] in a stable order.
var QueryKinds = []QueryKind{QueryDerived, QueryEntity, QueryEntityNamed, QuerySQL, QuerySQLNamed}

// ParseQueryKind converts s into a [QueryKind]. An empty string selects [QueryDerived].
func ParseQueryKind(s string) (QueryKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return QueryDerived, nil
	}

	for _, k := range QueryKinds {
		if string(k) == s {
			return k, nil
		}
	}

	return "", fmt.Errorf("%w: unknown query kind %q", shared.ErrInvalidArgument, s)
}
