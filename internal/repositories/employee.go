package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/ems/internal/models"
	"github.com/desertthunder/ems/internal/shared"
)

var (
	sqliteByNameQuery      = MustCompileQuery(employeeByNamePositional, EmployeeEntity, SQLite)
	sqliteByNameQueryNamed = MustCompileQuery(employeeByNameNamed, EmployeeEntity, SQLite)
)

// EmployeeRepository implements [models.EmployeeRepository] on SQLite.
type EmployeeRepository struct {
	db *sql.DB
}

var _ models.EmployeeRepository = (*EmployeeRepository)(nil)

// NewEmployeeRepository creates a new [EmployeeRepository] with the given database connection
func NewEmployeeRepository(db *sql.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Save inserts the employee when its ID is 0 and assigns the generated ID,
// otherwise it overwrites (or recreates) the row with that ID.
func (r *EmployeeRepository) Save(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	if employee == nil {
		return nil, fmt.Errorf("%w: nil employee", shared.ErrInvalidInput)
	}

	if employee.ID == 0 {
		query := `INSERT INTO employees (first_name, last_name, email) VALUES (?, ?, ?)`

		result, err := r.db.ExecContext(ctx, query, employee.FirstName, employee.LastName, employee.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to insert employee: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to read generated id: %w", err)
		}
		employee.ID = id
		return employee, nil
	}

	query := `
		INSERT INTO employees (id, first_name, last_name, email) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email
	`

	if _, err := r.db.ExecContext(ctx, query, employee.ID, employee.FirstName, employee.LastName, employee.Email); err != nil {
		return nil, fmt.Errorf("failed to update employee %d: %w", employee.ID, err)
	}

	return employee, nil
}

// FindAll retrieves every employee ordered by ID.
func (r *EmployeeRepository) FindAll(ctx context.Context) ([]models.Employee, error) {
	query := `SELECT id, first_name, last_name, email FROM employees ORDER BY id ASC`
	return r.query(ctx, query)
}

// FindByID retrieves an employee by ID, returning nil when there is none.
func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*models.Employee, error) {
	query := `SELECT id, first_name, last_name, email FROM employees WHERE id = ?`
	return r.optional(r.db.QueryRowContext(ctx, query, id))
}

// FindByEmail retrieves the first employee with the given email, returning nil when there is none.
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*models.Employee, error) {
	query := `SELECT id, first_name, last_name, email FROM employees WHERE email = ? ORDER BY id ASC LIMIT 1`
	return r.optional(r.db.QueryRowContext(ctx, query, email))
}

// DeleteByID removes the employee with the given ID. Deleting a missing ID is not an error.
func (r *EmployeeRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete employee %d: %w", id, err)
	}
	return nil
}

// FindByFirstNameAndLastName matches both names exactly.
func (r *EmployeeRepository) FindByFirstNameAndLastName(ctx context.Context, firstName, lastName string) (*models.Employee, error) {
	query := `SELECT id, first_name, last_name, email FROM employees WHERE first_name = ? AND last_name = ?`
	return r.single(ctx, firstName, lastName, query, firstName, lastName)
}

// FindByNameQuery runs the positional entity query.
func (r *EmployeeRepository) FindByNameQuery(ctx context.Context, firstName, lastName string) (*models.Employee, error) {
	return r.single(ctx, firstName, lastName, sqliteByNameQuery.SQL, firstName, lastName)
}

// FindByNameQueryNamed runs the named entity query.
func (r *EmployeeRepository) FindByNameQueryNamed(ctx context.Context, firstName, lastName string) (*models.Employee, error) {
	return r.single(ctx, firstName, lastName, sqliteByNameQueryNamed.SQL,
		sql.Named("firstName", firstName),
		sql.Named("lastName", lastName),
	)
}

// FindByNameSQL runs native SQL with positional parameters.
func (r *EmployeeRepository) FindByNameSQL(ctx context.Context, firstName, lastName string) (*models.Employee, error) {
	query := `SELECT * FROM employees e WHERE e.first_name = ? AND e.last_name = ?`
	return r.single(ctx, firstName, lastName, query, firstName, lastName)
}

// FindByNameSQLNamed runs native SQL with named parameters.
func (r *EmployeeRepository) FindByNameSQLNamed(ctx context.Context, firstName, lastName string) (*models.Employee, error) {
	query := `SELECT * FROM employees e WHERE e.first_name = :firstName AND e.last_name = :lastName`
	return r.single(ctx, firstName, lastName, query,
		sql.Named("firstName", firstName),
		sql.Named("lastName", lastName),
	)
}

// Ping verifies the database connection.
func (r *EmployeeRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *EmployeeRepository) optional(row *sql.Row) (*models.Employee, error) {
	var e models.Employee

	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query employee: %w", err)
	}

	return &e, nil
}

func (r *EmployeeRepository) single(ctx context.Context, firstName, lastName, query string, args ...any) (*models.Employee, error) {
	employees, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return single(employees, firstName, lastName)
}

func (r *EmployeeRepository) query(ctx context.Context, query string, args ...any) ([]models.Employee, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	employees := []models.Employee{}
	for rows.Next() {
		var e models.Employee
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return employees, nil
}
