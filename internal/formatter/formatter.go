// package formatter converts employees to and from CSV, JSON and terminal tables
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/desertthunder/ems/internal/models"
	"github.com/desertthunder/ems/internal/shared"
)

// Format names an export/import encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatText Format = "text" // export only
)

// ParseFormat converts s into a [Format], accepting "txt" for text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: cannot infer format of %s", shared.ErrInvalidArgument, path)
	}
	return ParseFormat(ext)
}

// Extension returns the file extension for f.
func (f Format) Extension() string {
	if f == FormatText {
		return "txt"
	}
	return string(f)
}

var csvHeaders = []string{"ID", "FirstName", "LastName", "Email"}

// ExportToCSV converts employees to CSV format with columns: ID, FirstName, LastName, Email
func ExportToCSV(employees []models.Employee) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range employees {
		record := []string{strconv.FormatInt(e.ID, 10), e.FirstName, e.LastName, e.Email}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts employees to a JSON array.
func ExportToJSON(employees []models.Employee, pretty bool) ([]byte, error) {
	if employees == nil {
		employees = []models.Employee{}
	}
	return shared.MarshalJSON(employees, pretty)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RenderTable renders employees as a bordered terminal table.
func RenderTable(employees []models.Employee) string {
	rows := make([][]string, 0, len(employees))
	for _, e := range employees {
		rows = append(rows, []string{strconv.FormatInt(e.ID, 10), e.FirstName, e.LastName, e.Email})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(csvHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return t.String()
}

// ExportToText renders employees as a table followed by a count line.
func ExportToText(employees []models.Employee) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(RenderTable(employees))
	buf.WriteString(fmt.Sprintf("\n%d employee(s)\n", len(employees)))
	return buf.Bytes(), nil
}

// Export encodes employees in format.
func Export(employees []models.Employee, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(employees)
	case FormatJSON:
		return ExportToJSON(employees, true)
	case FormatText:
		return ExportToText(employees)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// ExportFilename returns employees_<timestamp>.<ext> for an export taken at now.
func ExportFilename(format Format, now time.Time) string {
	return fmt.Sprintf("employees_%s.%s", now.UTC().Format("20060102-150405"), format.Extension())
}

// WriteExport encodes employees in format and writes them to path, creating parent directories.
//
// Defaults to [ExportFilename] in the working directory when path is empty.
func WriteExport(employees []models.Employee, format Format, path string) (string, error) {
	if path == "" {
		path = ExportFilename(format, time.Now())
	}

	data, err := Export(employees, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}

// ParseCSV reads employees from CSV with a header row.
//
// Headers are matched case-insensitively and may appear in any order; "id" is optional and
// "first_name"/"last_name" are accepted as aliases.
func ParseCSV(r io.Reader) ([]models.Employee, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []models.Employee{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := map[string]int{}
	for i, h := range header {
		key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(h), "_", ""))
		cols[key] = i
	}

	for _, required := range []string{"firstname", "lastname", "email"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: CSV header missing %q column", shared.ErrInvalidInput, required)
		}
	}

	employees := []models.Employee{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		e := models.Employee{
			FirstName: strings.TrimSpace(record[cols["firstname"]]),
			LastName:  strings.TrimSpace(record[cols["lastname"]]),
			Email:     strings.TrimSpace(record[cols["email"]]),
		}

		if i, ok := cols["id"]; ok && strings.TrimSpace(record[i]) != "" {
			id, err := strconv.ParseInt(strings.TrimSpace(record[i]), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad id %q on CSV line %d", shared.ErrInvalidInput, record[i], line)
			}
			e.ID = id
		}

		employees = append(employees, e)
	}

	return employees, nil
}

// ParseJSON reads a JSON array of employees.
func ParseJSON(r io.Reader) ([]models.Employee, error) {
	var employees []models.Employee
	if err := json.NewDecoder(r).Decode(&employees); err != nil {
		return nil, fmt.Errorf("%w: failed to decode employees: %v", shared.ErrInvalidInput, err)
	}
	if employees == nil {
		employees = []models.Employee{}
	}
	return employees, nil
}

// Parse reads employees encoded in format.
func Parse(r io.Reader, format Format) ([]models.Employee, error) {
	switch format {
	case FormatCSV:
		return ParseCSV(r)
	case FormatJSON:
		return ParseJSON(r)
	default:
		return nil, fmt.Errorf("%w: cannot import %q", shared.ErrInvalidArgument, format)
	}
}
