package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Store errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNoMigrations       = fmt.Errorf("no migrations to rollback")

	// Employee errors
	ErrEmployeeNotFound      = fmt.Errorf("employee not found")
	ErrEmployeeAlreadyExists = fmt.Errorf("employee already exists")
	ErrNonUniqueResult       = fmt.Errorf("query did not return a unique result")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
