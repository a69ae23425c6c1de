package repositories

import (
	"slices"
	"testing"
)

func TestCompileQuery(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		dialect    Dialect
		want       string
		positional int
		named      []string
	}{
		{
			name:       "PositionalSQLite",
			source:     employeeByNamePositional,
			dialect:    SQLite,
			want:       "SELECT e.id, e.first_name, e.last_name, e.email FROM employees e WHERE e.first_name = ?1 and e.last_name = ?2",
			positional: 2,
		},
		{
			name:       "PositionalPostgres",
			source:     employeeByNamePositional,
			dialect:    Postgres,
			want:       "SELECT e.id, e.first_name, e.last_name, e.email FROM employees e WHERE e.first_name = $1 and e.last_name = $2",
			positional: 2,
		},
		{
			name:    "NamedSQLite",
			source:  employeeByNameNamed,
			dialect: SQLite,
			want:    "SELECT e.id, e.first_name, e.last_name, e.email FROM employees e WHERE e.first_name = :firstName and e.last_name = :lastName",
			named:   []string{"firstName", "lastName"},
		},
		{
			name:    "NamedPostgres",
			source:  employeeByNameNamed,
			dialect: Postgres,
			want:    "SELECT e.id, e.first_name, e.last_name, e.email FROM employees e WHERE e.first_name = @firstName and e.last_name = @lastName",
			named:   []string{"firstName", "lastName"},
		},
		{
			name:    "NoWhere",
			source:  "select x from Employee x",
			dialect: SQLite,
			want:    "SELECT x.id, x.first_name, x.last_name, x.email FROM employees x",
		},
		{
			name:    "UppercaseKeywords",
			source:  "SELECT e FROM Employee e WHERE e.email = :email",
			dialect: SQLite,
			want:    "SELECT e.id, e.first_name, e.last_name, e.email FROM employees e WHERE e.email = :email",
			named:   []string{"email"},
		},
		{
			name:    "LiteralsUntouched",
			source:  "select e from Employee e where e.lastName = 'e.firstName ?1 :x' and e.firstName = 'O''Neil'",
			dialect: Postgres,
			want:    "SELECT e.id, e.first_name, e.last_name, e.email FROM employees e WHERE e.last_name = 'e.firstName ?1 :x' and e.first_name = 'O''Neil'",
		},
		{
			name:    "RepeatedNamed",
			source:  "select e from Employee e where e.firstName = :name or e.lastName = :name",
			dialect: Postgres,
			want:    "SELECT e.id, e.first_name, e.last_name, e.email FROM employees e WHERE e.first_name = @name or e.last_name = @name",
			named:   []string{"name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := CompileQuery(tt.source, EmployeeEntity, tt.dialect)
			if err != nil {
				t.Fatalf("failed to compile query: %v", err)
			}

			if q.SQL != tt.want {
				t.Errorf("unexpected SQL\nwant: %s\ngot:  %s", tt.want, q.SQL)
			}

			if q.Positional != tt.positional {
				t.Errorf("expected %d positional parameters, got %d", tt.positional, q.Positional)
			}

			if !slices.Equal(q.Named, tt.named) {
				t.Errorf("expected named parameters %v, got %v", tt.named, q.Named)
			}

			if q.Source != tt.source {
				t.Errorf("expected source to be kept, got %q", q.Source)
			}
		})
	}
}

func TestCompileQueryErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "Malformed", source: "delete from Employee e"},
		{name: "UnknownEntity", source: "select d from Department d"},
		{name: "AliasMismatch", source: "select x from Employee e"},
		{name: "UnknownField", source: "select e from Employee e where e.salary = ?1"},
		{name: "MixedParameters", source: "select e from Employee e where e.firstName = ?1 and e.lastName = :lastName"},
		{name: "PositionalWithoutIndex", source: "select e from Employee e where e.firstName = ?"},
		{name: "PositionalZero", source: "select e from Employee e where e.firstName = ?0"},
		{name: "NamedWithoutName", source: "select e from Employee e where e.firstName = :"},
		{name: "UnterminatedLiteral", source: "select e from Employee e where e.firstName = 'John"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CompileQuery(tt.source, EmployeeEntity, SQLite); err == nil {
				t.Errorf("expected error compiling %q", tt.source)
			}
		})
	}
}

func TestMustCompileQuery(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid query")
		}
	}()

	MustCompileQuery("select e from Nope e", EmployeeEntity, SQLite)
}

func TestDialectString(t *testing.T) {
	if SQLite.String() != "sqlite" || Postgres.String() != "postgres" {
		t.Errorf("unexpected dialect names %s, %s", SQLite, Postgres)
	}

	if Dialect(9).String() != "unknown" {
		t.Errorf("expected unknown, got %s", Dialect(9))
	}
}
