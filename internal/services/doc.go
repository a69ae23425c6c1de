// Package services implements the business rules for employees on top of [models.EmployeeRepository].
//
// # Employee Service
//
// [EmployeeService] is the only path the HTTP API, CLI and TUI use to reach the store.
// It adds one rule to plain persistence: an email address may belong to at most one employee.
// [EmployeeService.SaveEmployee] looks the email up first and fails with [shared.ErrEmployeeAlreadyExists]
// without saving when it is taken.
//
// The check and the save are separate store calls, so two concurrent creates with the same email may both succeed.
//
// # Read Paths
//
// Lookups by ID return a nil employee rather than an error when nothing matches.
// Name lookups are single-result and may fail with:
//   - [shared.ErrEmployeeNotFound] : no employee has that first and last name
//   - [shared.ErrNonUniqueResult] : more than one employee has that first and last name
//
// # Query Kinds
//
// [QueryKind] selects which of the five equivalent repository lookups answers [EmployeeService.FindEmployeeByName].
// All five return the same result for the same input.
package services
