package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/desertthunder/ems/internal/models"
	"github.com/desertthunder/ems/internal/shared"
)

var (
	postgresByNameQuery      = MustCompileQuery(employeeByNamePositional, EmployeeEntity, Postgres)
	postgresByNameQueryNamed = MustCompileQuery(employeeByNameNamed, EmployeeEntity, Postgres)
)

// PostgresEmployeeRepository implements [models.EmployeeRepository] on PostgreSQL.
//
// Rows are scanned with [pgx.RowToStructByName], so selected column names must match the db tags on [models.Employee].
type PostgresEmployeeRepository struct {
	pool *pgxpool.Pool
}

var _ models.EmployeeRepository = (*PostgresEmployeeRepository)(nil)

// NewPostgresEmployeeRepository creates a new [PostgresEmployeeRepository] backed by pool.
func NewPostgresEmployeeRepository(pool *pgxpool.Pool) *PostgresEmployeeRepository {
	return &PostgresEmployeeRepository{pool: pool}
}

// Save inserts the employee when its ID is 0 and assigns the generated ID,
// otherwise it overwrites (or recreates) the row with that ID.
func (r *PostgresEmployeeRepository) Save(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	if employee == nil {
		return nil, fmt.Errorf("%w: nil employee", shared.ErrInvalidInput)
	}

	if employee.ID == 0 {
		query := `INSERT INTO employees (first_name, last_name, email) VALUES ($1, $2, $3) RETURNING id`

		err := r.pool.QueryRow(ctx, query, employee.FirstName, employee.LastName, employee.Email).Scan(&employee.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert employee: %w", err)
		}
		return employee, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO employees (id, first_name, last_name, email) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = EXCLUDED.email
	`
	if _, err := tx.Exec(ctx, query, employee.ID, employee.FirstName, employee.LastName, employee.Email); err != nil {
		return nil, fmt.Errorf("failed to update employee %d: %w", employee.ID, err)
	}

	// Explicit ids bypass the serial sequence.
	sync := `SELECT setval(pg_get_serial_sequence('employees', 'id'), GREATEST((SELECT MAX(id) FROM employees), 1))`
	if _, err := tx.Exec(ctx, sync); err != nil {
		return nil, fmt.Errorf("failed to advance id sequence: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit employee %d: %w", employee.ID, err)
	}

	return employee, nil
}

// FindAll retrieves every employee ordered by ID.
func (r *PostgresEmployeeRepository) FindAll(ctx context.Context) ([]models.Employee, error) {
	return r.query(ctx, `SELECT id, first_name, last_name, email FROM employees ORDER BY id ASC`)
}

// FindByID retrieves an employee by ID, returning nil when there is none.
func (r *PostgresEmployeeRepository) FindByID(ctx context.Context, id int64) (*models.Employee, error) {
	query := `SELECT id, first_name, last_name, email FROM employees WHERE id = $1`
	return r.optional(ctx, query, id)
}

// FindByEmail retrieves the first employee with the given email, returning nil when there is none.
func (r *PostgresEmployeeRepository) FindByEmail(ctx context.Context, email string) (*models.Employee, error) {
	query := `SELECT id, first_name, last_name, email FROM employees WHERE email = $1 ORDER BY id ASC LIMIT 1`
	return r.optional(ctx, query, email)
}

// DeleteByID removes the employee with the given ID. Deleting a missing ID is not an error.
func (r *PostgresEmployeeRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete employee %d: %w", id, err)
	}
	return nil
}

// FindByFirstNameAndLastName matches both names exactly.
func (r *PostgresEmployeeRepository) FindByFirstNameAndLastName(ctx context.Context, firstName, lastName string) (*models.Employee, error) {
	query := `SELECT id, first_name, last_name, email FROM employees WHERE first_name = $1 AND last_name = $2`
	return r.single(ctx, firstName, lastName, query, firstName, lastName)
}

// FindByNameQuery runs the positional entity query.
func (r *PostgresEmployeeRepository) FindByNameQuery(ctx context.Context, firstName, lastName string) (*models.Employee, error) {
	return r.single(ctx, firstName, lastName, postgresByNameQuery.SQL, firstName, lastName)
}

// FindByNameQueryNamed runs the named entity query.
func (r *PostgresEmployeeRepository) FindByNameQueryNamed(ctx context.Context, firstName, lastName string) (*models.Employee, error) {
	args := pgx.NamedArgs{"firstName": firstName, "lastName": lastName}
	return r.single(ctx, firstName, lastName, postgresByNameQueryNamed.SQL, args)
}

// FindByNameSQL runs native SQL with positional parameters.
func (r *PostgresEmployeeRepository) FindByNameSQL(ctx context.Context, firstName, lastName string) (*models.Employee, error) {
	query := `SELECT * FROM employees e WHERE e.first_name = $1 AND e.last_name = $2`
	return r.single(ctx, firstName, lastName, query, firstName, lastName)
}

// FindByNameSQLNamed runs native SQL with named parameters.
func (r *PostgresEmployeeRepository) FindByNameSQLNamed(ctx context.Context, firstName, lastName string) (*models.Employee, error) {
	query := `SELECT * FROM employees e WHERE e.first_name = @firstName AND e.last_name = @lastName`
	args := pgx.NamedArgs{"firstName": firstName, "lastName": lastName}
	return r.single(ctx, firstName, lastName, query, args)
}

// Ping verifies a pooled connection.
func (r *PostgresEmployeeRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresEmployeeRepository) optional(ctx context.Context, query string, args ...any) (*models.Employee, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employee: %w", err)
	}

	e, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Employee])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan employee: %w", err)
	}

	return &e, nil
}

func (r *PostgresEmployeeRepository) single(ctx context.Context, firstName, lastName, query string, args ...any) (*models.Employee, error) {
	employees, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return single(employees, firstName, lastName)
}

func (r *PostgresEmployeeRepository) query(ctx context.Context, query string, args ...any) ([]models.Employee, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}

	employees, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Employee])
	if err != nil {
		return nil, fmt.Errorf("failed to scan employees: %w", err)
	}

	if employees == nil {
		employees = []models.Employee{}
	}

	return employees, nil
}
