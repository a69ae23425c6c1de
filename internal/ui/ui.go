package ui

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/ems/internal/models"
	"github.com/desertthunder/ems/internal/services"
	"github.com/desertthunder/ems/internal/shared"
	"github.com/desertthunder/ems/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	DetailView
	ConfirmDeleteView
	ExportView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	svc        services.Service
	engine     *tasks.EmployeeEngine
	exportOpts tasks.ExportOpts
	logger     *log.Logger

	width     int
	height    int
	list      list.Model
	employees []models.Employee
	selected  *models.Employee
	returnTo  ViewState
	status    string

	progressChan chan tasks.ProgressUpdate
	exportDone   chan Msg
	progress     tasks.ProgressUpdate
	result       *tasks.ExportResult

	err  error
	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, svc services.Service, engine *tasks.EmployeeEngine, opts tasks.ExportOpts, logger *log.Logger) *Model {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Employees"

	return &Model{
		ctx:        ctx,
		view:       ListView,
		svc:        svc,
		engine:     engine,
		exportOpts: opts,
		logger:     logger,
		list:       l,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init initializes the TUI by fetching employees.
func (m *Model) Init() tea.Cmd {
	return m.fetchEmployees()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ConfirmDeleteView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case ExportView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	if m.view == ListView {
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgEmployeesFetched:
		data := msg.data.(employeesFetched)
		if data.err != nil {
			m.err = data.err
			m.logger.Error("failed to fetch employees", "error", data.err)
			return m, nil
		}
		m.err = nil
		m.employees = data.employees
		cmd := m.list.SetItems(employeeItems(data.employees))
		return m, cmd

	case MsgEmployeeDeleted:
		data := msg.data.(employeeDeleted)
		m.view = ListView
		m.selected = nil
		if data.err != nil {
			m.err = data.err
			m.logger.Error("failed to delete employee", "id", data.employee.ID, "error", data.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Deleted %s (ID: %d)", data.employee.FullName(), data.employee.ID)
		m.logger.Info("deleted employee", "id", data.employee.ID)
		return m, m.fetchEmployees()

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, waitForProgress(m.progressChan, m.exportDone)

	case MsgExportComplete:
		data := msg.data.(exportComplete)
		m.result = data.result
		m.err = data.err
		m.progressChan = nil
		m.exportDone = nil
		m.view = ResultView
		if data.err != nil {
			m.logger.Error("export failed", "error", data.err)
		}
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view == ListView {
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err)) +
			"\n\n" + m.help.ShortHelpView([]key.Binding{m.keys.refresh, m.keys.quit})
	}

	switch m.view {
	case ListView:
		return m.renderList()
	case DetailView:
		return m.renderDetail()
	case ConfirmDeleteView:
		return m.renderConfirm()
	case ExportView:
		return m.renderExport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		m.status = ""
		return m, m.fetchEmployees()
	case m.err != nil:
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if e := m.selectedEmployee(); e != nil {
			m.selected = e
			m.view = DetailView
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if e := m.selectedEmployee(); e != nil {
			m.selected = e
			m.returnTo = ListView
			m.view = ConfirmDeleteView
		}
		return m, nil
	case key.Matches(msg, m.keys.export):
		if m.engine == nil {
			return m, nil
		}
		m.view = ExportView
		m.status = ""
		return m, m.startExport()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ListView
		m.selected = nil
	case key.Matches(msg, m.keys.remove):
		m.returnTo = DetailView
		m.view = ConfirmDeleteView
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		return m, m.deleteEmployee(*m.selected)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = m.returnTo
		if m.view == ListView {
			m.selected = nil
		}
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.enter):
		m.view = ListView
		m.result = nil
		m.err = nil
	}
	return m, nil
}

func (m *Model) selectedEmployee() *models.Employee {
	item, ok := m.list.SelectedItem().(employeeItem)
	if !ok {
		return nil
	}
	e := item.employee
	return &e
}

func (m *Model) fetchEmployees() tea.Cmd {
	return func() tea.Msg {
		employees, err := m.svc.GetAllEmployees(m.ctx)
		return employeesFetchedMsg(employees, err)
	}
}

func (m *Model) deleteEmployee(e models.Employee) tea.Cmd {
	return func() tea.Msg {
		return employeeDeletedMsg(e, m.svc.DeleteEmployee(m.ctx, e.ID))
	}
}

// startExport runs the export in the background; progress and the final result arrive as messages.
func (m *Model) startExport() tea.Cmd {
	prog := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)
	m.progressChan = prog
	m.exportDone = done
	m.progress = tasks.ProgressUpdate{}

	go func() {
		result, err := m.engine.Export(m.ctx, prog, m.exportOpts)
		done <- exportCompleteMsg(result, err)
		close(prog)
	}()

	return waitForProgress(prog, done)
}

func waitForProgress(prog <-chan tasks.ProgressUpdate, done <-chan Msg) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-prog
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderList() string {
	helpView := m.help.ShortHelpView([]key.Binding{
		m.keys.enter, m.keys.remove, m.keys.export, m.keys.refresh, m.keys.quit,
	})

	var status string
	if m.status != "" {
		status = "\n" + styles.ok.Render(m.status)
	}
	return fmt.Sprintf("%s%s\n\n%s", m.list.View(), status, helpView)
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return ""
	}
	e := m.selected

	title := styles.title.Render(e.FullName())
	rows := []struct{ label, value string }{
		{"ID", strconv.FormatInt(e.ID, 10)},
		{"First name", e.FirstName},
		{"Last name", e.LastName},
		{"Email", e.Email},
	}

	var body string
	for _, r := range rows {
		body += styles.label.Render(r.label) + r.value + "\n"
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.remove, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s", title, body, helpView)
}

func (m *Model) renderConfirm() string {
	if m.selected == nil {
		return ""
	}

	title := styles.warn.Render(fmt.Sprintf("Delete %s?", m.selected.FullName()))
	info := fmt.Sprintf("\nID: %d\nEmail: %s\n", m.selected.ID, m.selected.Email)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderExport() string {
	title := styles.title.Render("Exporting Employees")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchEmployees:
		phase = "Fetching employees..."
	case tasks.WriteExport:
		phase = "Writing export..."
	case tasks.UploadExport:
		phase = fmt.Sprintf("Uploading (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, styles.help.Render(m.progress.Message))
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})

	if m.err != nil {
		msg := styles.err.Render(fmt.Sprintf("Export failed: %v", m.err))
		if m.result != nil {
			msg += fmt.Sprintf("\n\nLocal file kept at %s", m.result.Path)
		}
		return fmt.Sprintf("%s\n\n%s", msg, helpView)
	}

	if m.result == nil {
		return styles.err.Render("No result available") + "\n\n" + helpView
	}

	title := styles.ok.Render("✓ Export Complete!")
	info := fmt.Sprintf("\nEmployees: %d\nFile: %s", m.result.Count, m.result.Path)
	if m.result.RemotePath != "" {
		info += fmt.Sprintf("\nUploaded: %s", m.result.RemotePath)
	}

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
