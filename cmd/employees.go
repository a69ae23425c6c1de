package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ems/internal/formatter"
	"github.com/desertthunder/ems/internal/models"
	"github.com/desertthunder/ems/internal/services"
	"github.com/desertthunder/ems/internal/shared"
	"github.com/desertthunder/ems/internal/tasks"
)

// EmployeesList prints every employee as a table or JSON.
func (r *Runner) EmployeesList(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.Service(ctx, cmd)
	if err != nil {
		return err
	}

	employees, err := svc.GetAllEmployees(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(employees, cmd.Bool("pretty"))
	}

	r.writePlain("%s\n", formatter.RenderTable(employees))
	return r.writePlain("%d employee(s)\n", len(employees))
}

// EmployeesGet prints a single employee.
func (r *Runner) EmployeesGet(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd)
	if err != nil {
		return err
	}

	svc, err := r.Service(ctx, cmd)
	if err != nil {
		return err
	}

	employee, err := svc.GetEmployeeByID(ctx, id)
	if err != nil {
		return err
	}
	if employee == nil {
		return fmt.Errorf("%w: id %d", shared.ErrEmployeeNotFound, id)
	}

	return r.writeEmployee(cmd, employee)
}

// EmployeesCreate saves a new employee from --first, --last and --email.
func (r *Runner) EmployeesCreate(ctx context.Context, cmd *cli.Command) error {
	employee := models.NewEmployee(cmd.String("first"), cmd.String("last"), cmd.String("email"))
	if err := employee.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	svc, err := r.Service(ctx, cmd)
	if err != nil {
		return err
	}

	saved, err := svc.SaveEmployee(ctx, employee)
	if err != nil {
		return err
	}

	r.logger.Info("employee created", "id", saved.ID)
	return r.writeEmployee(cmd, saved)
}

// EmployeesUpdate overwrites the fields passed as flags on an existing employee.
func (r *Runner) EmployeesUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd)
	if err != nil {
		return err
	}

	svc, err := r.Service(ctx, cmd)
	if err != nil {
		return err
	}

	existing, err := svc.GetEmployeeByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("%w: id %d", shared.ErrEmployeeNotFound, id)
	}

	changes := *existing
	if cmd.IsSet("first") {
		changes.FirstName = cmd.String("first")
	}
	if cmd.IsSet("last") {
		changes.LastName = cmd.String("last")
	}
	if cmd.IsSet("email") {
		changes.Email = cmd.String("email")
	}
	if err := changes.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	existing.Merge(changes)
	updated, err := svc.UpdateEmployee(ctx, existing)
	if err != nil {
		return err
	}

	return r.writeEmployee(cmd, updated)
}

// EmployeesDelete removes an employee. Deleting a missing ID succeeds.
func (r *Runner) EmployeesDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd)
	if err != nil {
		return err
	}

	svc, err := r.Service(ctx, cmd)
	if err != nil {
		return err
	}

	if err := svc.DeleteEmployee(ctx, id); err != nil {
		return err
	}

	return r.writePlain("✓ Employee %d deleted\n", id)
}

// EmployeesFind looks an employee up by first and last name.
//
// --kind selects the lookup; "all" runs every lookup and prints each result.
func (r *Runner) EmployeesFind(ctx context.Context, cmd *cli.Command) error {
	first, last := cmd.String("first"), cmd.String("last")

	kinds := services.QueryKinds
	if k := cmd.String("kind"); !strings.EqualFold(k, "all") {
		kind, err := services.ParseQueryKind(k)
		if err != nil {
			return err
		}
		kinds = []services.QueryKind{kind}
	}

	svc, err := r.Service(ctx, cmd)
	if err != nil {
		return err
	}

	if len(kinds) == 1 {
		employee, err := svc.FindEmployeeByName(ctx, first, last, kinds[0])
		if err != nil {
			return err
		}
		return r.writeEmployee(cmd, employee)
	}

	r.writePlainHeader(fmt.Sprintf("%s %s", first, last))
	for _, kind := range kinds {
		employee, err := svc.FindEmployeeByName(ctx, first, last, kind)
		if err != nil {
			r.writePlain("%-12s ✗ %v\n", kind, err)
			continue
		}
		r.writePlain("%-12s ✓ #%d %s <%s>\n", kind, employee.ID, employee.FullName(), employee.Email)
	}
	return nil
}

// EmployeesImport bulk-creates employees from a CSV or JSON file.
func (r *Runner) EmployeesImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: file", shared.ErrMissingArgument)
	}

	var format formatter.Format
	if f := cmd.String("format"); f != "" {
		parsed, err := formatter.ParseFormat(f)
		if err != nil {
			return err
		}
		format = parsed
	}

	employees, err := tasks.LoadEmployees(path, format)
	if err != nil {
		return err
	}

	config, err := r.Config(cmd)
	if err != nil {
		return err
	}

	engine, err := r.Engine(ctx, cmd)
	if err != nil {
		return err
	}

	opts := tasks.ImportOpts{Workers: config.Export.Workers, RateLimit: config.Export.RateLimit}
	if cmd.IsSet("workers") {
		opts.Workers = cmd.Int("workers")
	}
	if cmd.IsSet("rate-limit") {
		opts.RateLimit = cmd.Float("rate-limit")
	}

	progress := make(chan tasks.ProgressUpdate, 100)
	done := make(chan struct{})
	go func() {
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase)
		}
		close(done)
	}()

	result, err := engine.Import(ctx, progress, employees, opts)
	close(progress)
	<-done

	if result != nil {
		if cmd.Bool("json") {
			if jsonErr := r.writeJSON(importSummary(result), cmd.Bool("pretty")); jsonErr != nil {
				return jsonErr
			}
		} else {
			r.writeImportResult(result)
		}
	}

	return err
}

// EmployeesExport writes every employee to a file and optionally uploads it.
func (r *Runner) EmployeesExport(ctx context.Context, cmd *cli.Command) error {
	config, err := r.Config(cmd)
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(config.Export.Format)
	if cmd.IsSet("format") {
		format, err = formatter.ParseFormat(cmd.String("format"))
	}
	if err != nil {
		return err
	}

	engine, err := r.Engine(ctx, cmd)
	if err != nil {
		return err
	}

	opts := tasks.ExportOpts{
		Format:    format,
		Path:      cmd.String("output"),
		OutputDir: config.Export.OutputDir,
		Upload:    cmd.Bool("sftp"),
	}
	if cmd.IsSet("dir") {
		opts.OutputDir = cmd.String("dir")
	}

	progress := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go func() {
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase)
		}
		close(done)
	}()

	result, err := engine.Export(ctx, progress, opts)
	close(progress)
	<-done

	if result != nil {
		r.writePlain("✓ Exported %d employee(s) to %s\n", result.Count, result.Path)
		if result.RemotePath != "" {
			r.writePlain("✓ Uploaded to %s\n", result.RemotePath)
		}
	}

	return err
}

func (r *Runner) writeEmployee(cmd *cli.Command, e *models.Employee) error {
	if cmd.Bool("json") {
		return r.writeJSON(e, cmd.Bool("pretty"))
	}
	return r.writePlain("%s\n", formatter.RenderTable([]models.Employee{*e}))
}

type importRow struct {
	Line   int    `json:"line"`
	ID     int64  `json:"id,omitempty"`
	Email  string `json:"email"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type importReport struct {
	Total      int         `json:"total"`
	Created    int         `json:"created"`
	Duplicates int         `json:"duplicates"`
	Failed     int         `json:"failed"`
	Rows       []importRow `json:"rows"`
}

func importSummary(result *tasks.ImportResult) importReport {
	report := importReport{
		Total:      result.Total,
		Created:    result.Created,
		Duplicates: result.Duplicates,
		Failed:     result.Failed,
		Rows:       make([]importRow, 0, len(result.Rows)),
	}

	for _, row := range result.Rows {
		out := importRow{Line: row.Line, Email: row.Employee.Email}
		switch {
		case row.Success:
			out.Status = "created"
			out.ID = row.Employee.ID
		case row.Duplicate:
			out.Status = "duplicate"
		default:
			out.Status = "failed"
		}
		if row.Err != nil {
			out.Error = row.Err.Error()
		}
		report.Rows = append(report.Rows, out)
	}

	return report
}

func (r *Runner) writeImportResult(result *tasks.ImportResult) {
	r.writePlainHeader("Import")
	for _, row := range result.Rows {
		switch {
		case row.Success:
			r.writePlain("✓ line %d: #%d %s <%s>\n", row.Line, row.Employee.ID, row.Employee.FullName(), row.Employee.Email)
		case row.Duplicate:
			r.writePlain("= line %d: %s already exists\n", row.Line, row.Employee.Email)
		default:
			r.writePlain("✗ line %d: %v\n", row.Line, row.Err)
		}
	}
	r.writePlainln("%d created, %d duplicate(s), %d failed of %d", result.Created, result.Duplicates, result.Failed, result.Total)
}

func argID(cmd *cli.Command) (int64, error) {
	raw := cmd.StringArg("id")
	if raw == "" {
		return 0, fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer, got %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}
