package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/ems/internal/models"
)

var _ list.Item = employeeItem{}

// employeeItem wraps [models.Employee] to implement [list.Item].
type employeeItem struct {
	employee models.Employee
}

func (i employeeItem) FilterValue() string { return i.employee.FullName() + " " + i.employee.Email }
func (i employeeItem) Title() string       { return i.employee.FullName() }
func (i employeeItem) Description() string {
	return fmt.Sprintf("#%d • %s", i.employee.ID, i.employee.Email)
}

func employeeItems(employees []models.Employee) []list.Item {
	items := make([]list.Item, len(employees))
	for i, e := range employees {
		items[i] = employeeItem{employee: e}
	}
	return items
}
