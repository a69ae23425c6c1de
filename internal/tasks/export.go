package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/desertthunder/ems/internal/formatter"
	"github.com/desertthunder/ems/internal/shared"
)

// ExportOpts contains configuration for an employee export.
type ExportOpts struct {
	Format    formatter.Format // csv, json or text (default: csv)
	Path      string           // Output file; overrides OutputDir
	OutputDir string           // Directory for a timestamped file when Path is empty
	Upload    bool             // Upload the file with the engine's [Uploader]
}

// ExportResult describes a finished export.
type ExportResult struct {
	Path       string // Local file
	Count      int    // Employees written
	RemotePath string // Set when uploaded
}

// Export writes every employee to a file and optionally uploads it.
//
// When the upload fails the local file is kept and returned alongside the error.
func (e *EmployeeEngine) Export(ctx context.Context, prog chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: employee service not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Upload && e.uploader == nil {
		return nil, fmt.Errorf("%w: upload requested but [export.sftp] is not configured", shared.ErrMissingConfig)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatCSV
	}
	if opts.Path == "" {
		opts.Path = filepath.Join(opts.OutputDir, formatter.ExportFilename(opts.Format, time.Now()))
	}

	e.sendProgress(prog, fetchEmployeesUpdate())

	employees, err := e.svc.GetAllEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch employees: %w", err)
	}

	e.sendProgress(prog, foundEmployeesUpdate(employees))

	path, err := formatter.WriteExport(employees, opts.Format, opts.Path)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{Path: path, Count: len(employees)}
	e.sendProgress(prog, writeExportUpdate(path))

	if !opts.Upload {
		return result, nil
	}

	e.sendProgress(prog, uploadExportUpdate(e.uploader.Addr()))

	remote, err := e.uploader.Upload(ctx, path)
	if err != nil {
		return result, fmt.Errorf("export written to %s but upload failed: %w", path, err)
	}

	result.RemotePath = remote
	e.sendProgress(prog, uploadedExportUpdate(remote))

	return result, nil
}
