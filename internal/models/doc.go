// Package models defines the domain entity and persistence port for the employee management service.
//
// [Employee] is the only persistent entity. Its identity is assigned by the store on first save,
// and its email is the business key (unique by application rule, not by schema).
//
// The [EmployeeRepository] interface is the port implemented by the SQLite and PostgreSQL
// repositories. Single-result lookups come in two shapes:
//   - Optional: [EmployeeRepository.FindByID] and [EmployeeRepository.FindByEmail] return nil, nil when absent
//   - Strict: the name lookups return an error wrapping ErrEmployeeNotFound or ErrNonUniqueResult
package models
