package ui

import (
	"github.com/jdlms/fpa-forecast/internal/types"
	"github.com/rivo/tview"
)

// AllOption is the drop-down entry that clears a facet
const AllOption = "All"

// CreateTabs creates the tab list, one entry per source
func CreateTabs() *tview.List {
	tabs := tview.NewList()
	tabs.SetBorder(true).SetTitle("📊 FP&A Forecast")
	tabs.ShowSecondaryText(false)

	for _, src := range types.Sources() {
		tabs.AddItem(src.Label(), "", 0, nil)
	}

	// Selection is handled in the key bindings so j/k and Enter behave the same
	// as in the table
	return tabs
}

// CreateMainTable creates the main data display table
func CreateMainTable() *tview.Table {
	table := tview.NewTable()
	table.SetBorder(true).SetTitle("Records")
	table.SetSelectable(true, true) // rows to browse, columns to pick a sort key
	table.SetFixed(1, 0)            // Fix the first row as header
	return table
}

// CreateHeader creates the header text view
func CreateHeader() *tview.TextView {
	header := tview.NewTextView()
	header.SetBorder(true)
	header.SetText("FP&A Forecast - Loading...")
	header.SetTextAlign(tview.AlignCenter)
	header.SetDynamicColors(true)
	return header
}

// CreateFooter creates the footer text view with help text
func CreateFooter() *tview.TextView {
	footer := tview.NewTextView()
	footer.SetBorder(true)
	footer.SetText("'q' quit | 1-3 or Enter switch tab | '/' search | 'g' group by department | 's' sort by column | Tab cycle focus | Esc back")
	footer.SetTextAlign(tview.AlignCenter)
	footer.SetDynamicColors(true)
	return footer
}

// Filters is the search box, the three facet drop-downs and the grouping toggle
type Filters struct {
	Form          *tview.Form
	Search        *tview.InputField
	Department    *tview.DropDown
	Account       *tview.DropDown
	Subdepartment *tview.DropDown
	Grouped       *tview.Checkbox
}

// CreateFilters builds the filter form. Callbacks are attached by the caller.
func CreateFilters() *Filters {
	f := &Filters{
		Search:        tview.NewInputField().SetLabel("Search ").SetFieldWidth(0),
		Department:    tview.NewDropDown().SetLabel("Department "),
		Account:       tview.NewDropDown().SetLabel("Account "),
		Subdepartment: tview.NewDropDown().SetLabel("Subdept "),
		Grouped:       tview.NewCheckbox().SetLabel("Group by dept "),
	}
	for _, dd := range []*tview.DropDown{f.Department, f.Account, f.Subdepartment} {
		dd.SetOptions([]string{AllOption}, nil)
		dd.SetCurrentOption(0)
	}

	f.Form = tview.NewForm().
		AddFormItem(f.Search).
		AddFormItem(f.Department).
		AddFormItem(f.Account).
		AddFormItem(f.Subdepartment).
		AddFormItem(f.Grouped)
	f.Form.SetBorder(true).SetTitle("Filters")
	f.Form.SetItemPadding(0)
	return f
}

// FacetOptions returns the drop-down entries for values and the index of
// selected among them, 0 (All) when it is empty or no longer present
func FacetOptions(values []string, selected string) ([]string, int) {
	options := append([]string{AllOption}, values...)
	for i, v := range values {
		if v == selected && selected != "" {
			return options, i + 1
		}
	}
	return options, 0
}

// FacetValue maps a drop-down entry back to a facet selection
func FacetValue(option string, index int) string {
	if index <= 0 || option == AllOption {
		return ""
	}
	return option
}
