package ui

import (
	"github.com/jdlms/fpa-forecast/internal/types"
	"github.com/rivo/tview"
)

// SetupGrid configures the main grid layout: tabs and filters on the left,
// the table on the right
func SetupGrid(header, footer *tview.TextView, tabs *tview.List, filters *Filters, table *tview.Table) *tview.Grid {
	grid := tview.NewGrid().
		SetRows(3, 0, 3).
		SetColumns(34, 0).
		SetBorders(false)

	// Static items (header and footer span both columns)
	grid.AddItem(header, 0, 0, 1, 2, 0, 0, false)
	grid.AddItem(footer, 2, 0, 1, 2, 0, 0, false)

	sidebar := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(tabs, len(types.Sources())+2, 0, true).
		AddItem(filters.Form, 0, 1, false)

	grid.AddItem(sidebar, 1, 0, 1, 1, 0, 80, true)
	grid.AddItem(table, 1, 1, 1, 1, 0, 80, false)

	return grid
}
