package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/ems/internal/models"
	"github.com/desertthunder/ems/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgEmployeesFetched MsgKind = iota
	MsgEmployeeDeleted
	MsgProgressUpdate
	MsgExportComplete
)

type employeesFetched struct {
	employees []models.Employee
	err       error
}

type employeeDeleted struct {
	employee models.Employee
	err      error
}

type exportComplete struct {
	result *tasks.ExportResult
	err    error
}

// employeesFetchedMsg is the constructor for [MsgEmployeesFetched]
func employeesFetchedMsg(employees []models.Employee, err error) Msg {
	return Msg{kind: MsgEmployeesFetched, data: employeesFetched{employees, err}}
}

// employeeDeletedMsg is the constructor for [MsgEmployeeDeleted]
func employeeDeletedMsg(employee models.Employee, err error) Msg {
	return Msg{kind: MsgEmployeeDeleted, data: employeeDeleted{employee, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// exportCompleteMsg is the constructor for [MsgExportComplete]
func exportCompleteMsg(result *tasks.ExportResult, err error) Msg {
	return Msg{kind: MsgExportComplete, data: exportComplete{result, err}}
}
