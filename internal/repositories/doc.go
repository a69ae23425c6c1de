// Package repositories implements persistence for [models.Employee] behind the [models.EmployeeRepository] port.
//
// Two stores are provided:
//   - [EmployeeRepository] : SQLite via database/sql and mattn/go-sqlite3 (the default)
//   - [PostgresEmployeeRepository] : PostgreSQL via jackc/pgx/v5 and pgxpool
//
// # Name lookups
//
// Every store answers a (firstName, lastName) lookup five ways, and all five must agree:
//   - an explicit query on first_name and last_name
//   - an entity query with positional parameters (?1, ?2)
//   - an entity query with named parameters (:firstName, :lastName)
//   - native SQL with positional parameters
//   - native SQL with named parameters
//
// Entity queries are written against entity and field names ("select e from Employee e where e.firstName = ?1")
// and compiled to dialect SQL by [CompileQuery] using an [Entity] mapping.
//
// Name lookups are single-result queries: no match wraps shared.ErrEmployeeNotFound and more than one
// match wraps shared.ErrNonUniqueResult.
package repositories
