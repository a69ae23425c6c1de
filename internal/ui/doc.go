// Package ui implements an interactive employee browser using bubbletea's Elm architecture.
//
// The TUI moves between a handful of views:
//  1. [ListView] : Browse and filter employees
//  2. [DetailView] : Inspect a single employee
//  3. [ConfirmDeleteView] : Confirm removing the selected employee
//  4. [ExportView] : Monitor an export while it runs
//  5. [ResultView] : Show where the export was written (and uploaded)
//
// The [Model] implements the standard Init/Update/View pattern, receiving messages via the [Msg] union type.
// Export progress flows through a channel from the tasks.EmployeeEngine, one update per command.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help
// displayed via charmbracelet/bubbles/help.
package ui
