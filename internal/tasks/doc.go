// Package tasks runs bulk employee operations with real-time progress reporting.
//
// # Core Operations
//
// [EmployeeEngine] exposes two operations:
//
//  1. [EmployeeEngine.Import] : Save a batch of parsed employees
//     - Validates each row and clears any client-supplied ID
//     - Saves rows through [services.Service.SaveEmployee] with a bounded worker pool
//     - Paces saves with a token-bucket limiter
//     - Reports duplicates (email already taken) per row without failing the batch
//
//  2. [EmployeeEngine.Export] : Write every employee to a file
//     - Fetches all employees from the service
//     - Encodes them as CSV, JSON or a text table (see the formatter package)
//     - Optionally uploads the file through an [Uploader]
//
// # Progress Reporting
//
// Both operations accept a send-only channel of [ProgressUpdate]. Sends use select with default,
// so a slow or absent reader never blocks the operation. A nil channel disables reporting.
package tasks
