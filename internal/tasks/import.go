package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"golang.org/x/time/rate"

	"github.com/desertthunder/ems/internal/formatter"
	"github.com/desertthunder/ems/internal/models"
	"github.com/desertthunder/ems/internal/shared"
)

const (
	DefaultImportWorkers   = 4
	MaxImportWorkers       = 10
	DefaultImportRateLimit = 20.0
)

// ImportOpts contains configuration for bulk employee imports.
type ImportOpts struct {
	Workers   int     // Concurrent workers (default: 4, max: 10)
	RateLimit float64 // Saves per second (default: 20)
}

// RowResult is the outcome of importing a single row.
type RowResult struct {
	Line      int             // 1-based position in the input
	Employee  models.Employee // Saved employee on success, the input row otherwise
	Success   bool
	Duplicate bool // Email was already taken
	Err       error
}

// ImportResult summarizes a bulk import. Rows are ordered by Line.
type ImportResult struct {
	Total      int
	Created    int
	Duplicates int
	Failed     int
	Rows       []RowResult
}

type importJob struct {
	line     int
	employee models.Employee
}

// LoadEmployees reads employees from a CSV or JSON file. An empty format is inferred from the extension.
func LoadEmployees(path string, format formatter.Format) ([]models.Employee, error) {
	if format == "" {
		f, err := formatter.FormatFromPath(path)
		if err != nil {
			return nil, err
		}
		format = f
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	return formatter.Parse(file, format)
}

// Import saves employees concurrently with rate limiting and progress tracking.
//
// Each row is validated and saved as a new employee (any ID is cleared). Rows whose email is
// already stored, or repeats an earlier row in the batch, are reported as duplicates. Row failures
// never abort the batch; a canceled context stops dispatch and returns the partial result with
// the context error.
func (e *EmployeeEngine) Import(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	employees []models.Employee,
	opts ImportOpts,
) (*ImportResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: employee service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Workers <= 0 {
		opts.Workers = DefaultImportWorkers
	}
	if opts.Workers > MaxImportWorkers {
		opts.Workers = MaxImportWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultImportRateLimit
	}

	total := len(employees)
	result := &ImportResult{Total: total, Rows: make([]RowResult, 0, total)}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan importJob, total)
	results := make(chan RowResult, total)

	var wg sync.WaitGroup
	for range opts.Workers {
		wg.Add(1)
		go e.importWorker(ctx, &wg, jobs, results)
	}

	e.sendProgress(prog, importStartUpdate(total))

	// The feeder also reports rejected rows, so results stays open until it returns.
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)

		seen := make(map[string]int, total)
		for i, emp := range employees {
			line := i + 1
			emp.ID = 0

			if err := emp.Validate(); err != nil {
				results <- RowResult{Line: line, Employee: emp, Err: fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)}
				continue
			}

			if first, ok := seen[emp.Email]; ok {
				results <- RowResult{
					Line:      line,
					Employee:  emp,
					Duplicate: true,
					Err:       fmt.Errorf("%w: email %s repeats row %d", shared.ErrEmployeeAlreadyExists, emp.Email, first),
				}
				continue
			}
			seen[emp.Email] = line

			if err := limiter.Wait(ctx); err != nil {
				return
			}

			select {
			case <-ctx.Done():
				return
			case jobs <- importJob{line: line, employee: emp}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		result.Rows = append(result.Rows, res)

		switch {
		case res.Success:
			result.Created++
		case res.Duplicate:
			result.Duplicates++
		default:
			result.Failed++
		}

		e.sendProgress(prog, importRowUpdate(len(result.Rows), total, res))
	}

	slices.SortFunc(result.Rows, func(a, b RowResult) int { return a.Line - b.Line })

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// importWorker saves employees from the jobs channel until it is closed.
func (e *EmployeeEngine) importWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan importJob,
	results chan<- RowResult,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- e.importSingle(ctx, job)
	}
}

func (e *EmployeeEngine) importSingle(ctx context.Context, j importJob) RowResult {
	res := RowResult{Line: j.line, Employee: j.employee}

	emp := j.employee
	saved, err := e.svc.SaveEmployee(ctx, &emp)
	switch {
	case errors.Is(err, shared.ErrEmployeeAlreadyExists):
		res.Duplicate = true
		res.Err = err
	case err != nil:
		res.Err = err
	default:
		res.Employee = *saved
		res.Success = true
	}

	return res
}
