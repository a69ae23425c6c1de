package services

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ems/internal/models"
	"github.com/desertthunder/ems/internal/shared"
)

// EmployeeService implements [Service] over a [models.EmployeeRepository].
type EmployeeService struct {
	repo   models.EmployeeRepository
	logger *log.Logger
}

var _ Service = (*EmployeeService)(nil)

// NewEmployeeService creates an [EmployeeService]. A nil logger falls back to [shared.NewLogger] on stderr.
func NewEmployeeService(repo models.EmployeeRepository, logger *log.Logger) *EmployeeService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &EmployeeService{repo: repo, logger: shared.WithLogger(logger, "service", "employees")}
}

// SaveEmployee creates employee unless another employee already has its email.
// The repository is not written to when the email is taken.
func (s *EmployeeService) SaveEmployee(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	if employee == nil {
		return nil, fmt.Errorf("%w: nil employee", shared.ErrInvalidInput)
	}

	existing, err := s.repo.FindByEmail(ctx, employee.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email %s: %w", employee.Email, err)
	}

	if existing != nil {
		s.logger.Debug("rejected duplicate email", "email", employee.Email, "existing_id", existing.ID)
		return nil, fmt.Errorf("%w with given email: %s", shared.ErrEmployeeAlreadyExists, employee.Email)
	}

	saved, err := s.repo.Save(ctx, employee)
	if err != nil {
		return nil, fmt.Errorf("failed to save employee: %w", err)
	}

	s.logger.Info("created employee", "id", saved.ID, "email", saved.Email)
	return saved, nil
}

// GetAllEmployees returns every employee ordered by ID.
func (s *EmployeeService) GetAllEmployees(ctx context.Context) ([]models.Employee, error) {
	employees, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

// GetEmployeeByID returns nil, nil when there is no such employee.
func (s *EmployeeService) GetEmployeeByID(ctx context.Context, id int64) (*models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee %d: %w", id, err)
	}
	return employee, nil
}

// UpdateEmployee overwrites the stored employee with the same ID.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	if employee == nil {
		return nil, fmt.Errorf("%w: nil employee", shared.ErrInvalidInput)
	}

	updated, err := s.repo.Save(ctx, employee)
	if err != nil {
		return nil, fmt.Errorf("failed to update employee %d: %w", employee.ID, err)
	}

	s.logger.Info("updated employee", "id", updated.ID)
	return updated, nil
}

// DeleteEmployee removes the employee with id.
func (s *EmployeeService) DeleteEmployee(ctx context.Context, id int64) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete employee %d: %w", id, err)
	}

	s.logger.Info("deleted employee", "id", id)
	return nil
}

// FindEmployeeByName dispatches to the repository lookup selected by kind.
func (s *EmployeeService) FindEmployeeByName(ctx context.Context, firstName, lastName string, kind QueryKind) (*models.Employee, error) {
	var lookup func(context.Context, string, string) (*models.Employee, error)

	switch kind {
	case QueryDerived, "":
		lookup = s.repo.FindByFirstNameAndLastName
	case QueryEntity:
		lookup = s.repo.FindByNameQuery
	case QueryEntityNamed:
		lookup = s.repo.FindByNameQueryNamed
	case QuerySQL:
		lookup = s.repo.FindByNameSQL
	case QuerySQLNamed:
		lookup = s.repo.FindByNameSQLNamed
	default:
		return nil, fmt.Errorf("%w: unknown query kind %q", shared.ErrInvalidArgument, kind)
	}

	return lookup(ctx, firstName, lastName)
}

// Ping checks the store.
func (s *EmployeeService) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return nil
}
