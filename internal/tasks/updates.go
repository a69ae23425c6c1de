package tasks

import (
	"fmt"

	"github.com/desertthunder/ems/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ImportEmployees Phase = iota
	FetchEmployees
	WriteExport
	UploadExport
)

func (p Phase) String() string {
	switch p {
	case ImportEmployees:
		return "import_employees"
	case FetchEmployees:
		return "fetch_employees"
	case WriteExport:
		return "write_export"
	case UploadExport:
		return "upload_export"
	default:
		return ""
	}
}

func importStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportEmployees,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Importing %d employee(s)...", total),
	}
}

func importRowUpdate(step, total int, row RowResult) ProgressUpdate {
	var msg string
	switch {
	case row.Success:
		msg = fmt.Sprintf("[%d/%d] ✓ %s <%s> (ID: %d)", step, total, row.Employee.FullName(), row.Employee.Email, row.Employee.ID)
	case row.Duplicate:
		msg = fmt.Sprintf("[%d/%d] = %s <%s> already exists", step, total, row.Employee.FullName(), row.Employee.Email)
	default:
		msg = fmt.Sprintf("[%d/%d] ✗ row %d: %v", step, total, row.Line, row.Err)
	}

	return ProgressUpdate{
		Phase:   ImportEmployees,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    row,
	}
}

func fetchEmployeesUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchEmployees,
		Step:    1,
		Total:   1,
		Message: "Fetching employees...",
	}
}

func foundEmployeesUpdate(employees []models.Employee) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchEmployees,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d employee(s)", len(employees)),
		Data:    employees,
	}
}

func writeExportUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteExport,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Wrote %s", path),
	}
}

func uploadExportUpdate(addr string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadExport,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Uploading to %s...", addr),
	}
}

func uploadedExportUpdate(remote string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadExport,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Uploaded %s", remote),
	}
}
