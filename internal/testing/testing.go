// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"sync"
	"testing"

	"github.com/desertthunder/ems/internal/models"
	"github.com/desertthunder/ems/internal/services"
	"github.com/desertthunder/ems/internal/shared"
)

// MockEmployeeRepository is an in-memory test double for [models.EmployeeRepository].
//
// Every call is recorded by method name so tests can assert which operations ran.
// Setting Err makes every method fail with it.
type MockEmployeeRepository struct {
	mu        sync.Mutex
	employees map[int64]models.Employee
	nextID    int64
	calls     map[string]int

	Err error
}

// NewMockEmployeeRepository creates a [MockEmployeeRepository] holding copies of employees.
// Employees with ID 0 are assigned IDs in order.
func NewMockEmployeeRepository(employees ...models.Employee) *MockEmployeeRepository {
	m := &MockEmployeeRepository{employees: map[int64]models.Employee{}, calls: map[string]int{}}
	for _, e := range employees {
		if e.ID == 0 {
			m.nextID++
			e.ID = m.nextID
		} else if e.ID > m.nextID {
			m.nextID = e.ID
		}
		m.employees[e.ID] = e
	}
	return m
}

// Calls returns how many times method was invoked.
func (m *MockEmployeeRepository) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// Len returns the number of stored employees.
func (m *MockEmployeeRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.employees)
}

func (m *MockEmployeeRepository) record(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[method]++
	return m.Err
}

func (m *MockEmployeeRepository) Save(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	if err := m.record("Save"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if employee.ID == 0 {
		m.nextID++
		employee.ID = m.nextID
	} else if employee.ID > m.nextID {
		m.nextID = employee.ID
	}
	m.employees[employee.ID] = *employee
	return employee, nil
}

func (m *MockEmployeeRepository) FindAll(ctx context.Context) ([]models.Employee, error) {
	if err := m.record("FindAll"); err != nil {
		return nil, err
	}
	return m.sorted(), nil
}

func (m *MockEmployeeRepository) FindByID(ctx context.Context, id int64) (*models.Employee, error) {
	if err := m.record("FindByID"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *MockEmployeeRepository) DeleteByID(ctx context.Context, id int64) error {
	if err := m.record("DeleteByID"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.employees, id)
	return nil
}

func (m *MockEmployeeRepository) FindByEmail(ctx context.Context, email string) (*models.Employee, error) {
	if err := m.record("FindByEmail"); err != nil {
		return nil, err
	}

	all := m.sorted()
	for _, e := range all {
		if e.Email == email {
			return &e, nil
		}
	}
	return nil, nil
}

func (m *MockEmployeeRepository) FindByFirstNameAndLastName(ctx context.Context, firstName, lastName string) (*models.Employee, error) {
	return m.byName("FindByFirstNameAndLastName", firstName, lastName)
}

func (m *MockEmployeeRepository) FindByNameQuery(ctx context.Context, firstName, lastName string) (*models.Employee, error) {
	return m.byName("FindByNameQuery", firstName, lastName)
}

func (m *MockEmployeeRepository) FindByNameQueryNamed(ctx context.Context, firstName, lastName string) (*models.Employee, error) {
	return m.byName("FindByNameQueryNamed", firstName, lastName)
}

func (m *MockEmployeeRepository) FindByNameSQL(ctx context.Context, firstName, lastName string) (*models.Employee, error) {
	return m.byName("FindByNameSQL", firstName, lastName)
}

func (m *MockEmployeeRepository) FindByNameSQLNamed(ctx context.Context, firstName, lastName string) (*models.Employee, error) {
	return m.byName("FindByNameSQLNamed", firstName, lastName)
}

func (m *MockEmployeeRepository) Ping(ctx context.Context) error {
	return m.record("Ping")
}

func (m *MockEmployeeRepository) sorted() []models.Employee {
	m.mu.Lock()
	defer m.mu.Unlock()

	employees := make([]models.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		employees = append(employees, e)
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].ID < employees[j].ID })
	return employees
}

func (m *MockEmployeeRepository) byName(method, firstName, lastName string) (*models.Employee, error) {
	if err := m.record(method); err != nil {
		return nil, err
	}

	all := m.sorted()
	var matches []models.Employee
	for _, e := range all {
		if e.FirstName == firstName && e.LastName == lastName {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 0:
		return nil, shared.ErrEmployeeNotFound
	case 1:
		return &matches[0], nil
	default:
		return nil, shared.ErrNonUniqueResult
	}
}

// MockEmployeeService is a test double for [services.Service] whose results are set per method.
// Every method returns Err when it is set.
type MockEmployeeService struct {
	mu sync.Mutex

	Employees []models.Employee
	Employee  *models.Employee
	Err       error

	Saved   []models.Employee
	Deleted []int64
	Kinds   []services.QueryKind

	// SaveFunc overrides SaveEmployee when set.
	SaveFunc func(ctx context.Context, employee *models.Employee) (*models.Employee, error)
}

var _ services.Service = (*MockEmployeeService)(nil)

func (m *MockEmployeeService) SaveEmployee(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, employee)
	}
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if employee.ID == 0 {
		employee.ID = int64(len(m.Saved) + 1)
	}
	m.Saved = append(m.Saved, *employee)
	return employee, nil
}

func (m *MockEmployeeService) GetAllEmployees(ctx context.Context) ([]models.Employee, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Employees == nil {
		return []models.Employee{}, nil
	}
	return m.Employees, nil
}

func (m *MockEmployeeService) GetEmployeeByID(ctx context.Context, id int64) (*models.Employee, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Employee == nil || m.Employee.ID != id {
		return nil, nil
	}
	e := *m.Employee
	return &e, nil
}

func (m *MockEmployeeService) UpdateEmployee(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saved = append(m.Saved, *employee)
	return employee, nil
}

func (m *MockEmployeeService) DeleteEmployee(ctx context.Context, id int64) error {
	if m.Err != nil {
		return m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, id)
	return nil
}

func (m *MockEmployeeService) FindEmployeeByName(ctx context.Context, firstName, lastName string, kind services.QueryKind) (*models.Employee, error) {
	m.mu.Lock()
	m.Kinds = append(m.Kinds, kind)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Employee == nil {
		return nil, shared.ErrEmployeeNotFound
	}
	e := *m.Employee
	return &e, nil
}

func (m *MockEmployeeService) Ping(ctx context.Context) error {
	return m.Err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// FReader always returns an error on Read
type FReader struct{}

func (f *FReader) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
