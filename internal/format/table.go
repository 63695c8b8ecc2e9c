package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/jdlms/fpa-forecast/internal/pipeline"
	"github.com/jdlms/fpa-forecast/internal/types"
)

// Column is one table column. Key is empty for columns that cannot be sorted.
type Column struct {
	Title string
	Key   pipeline.SortKey
}

// Columns lists the columns shown for the view's variant. Forecast views get
// one column per month key between the contract status and the annual total.
func Columns(v pipeline.View) []Column {
	if v.Variant != types.VariantForecast {
		return []Column{
			{"ID", pipeline.KeyID},
			{"Vendor", pipeline.KeyVendor},
			{"Account", pipeline.KeyAccount},
			{"Department", pipeline.KeyDepartment},
			{"Subdepartment", pipeline.KeySubdepartment},
		}
	}

	cols := []Column{
		{"Vendor", pipeline.KeyVendor},
		{"Account", pipeline.KeyAccount},
		{"Department", pipeline.KeyDepartment},
		{"Subdepartment", pipeline.KeySubdepartment},
		{"Start", pipeline.KeyContractStart},
		{"End", pipeline.KeyContractEnd},
		{"Status", ""},
	}
	for _, month := range v.MonthKeys {
		cols = append(cols, Column{Title: MonthName(month)})
	}
	return append(cols, Column{"FY Total", pipeline.KeyFYTotal})
}

// Header returns the column titles, marking the active sort column
func Header(v pipeline.View) []string {
	cols := Columns(v)
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.Title
		if col.Key != "" && col.Key == v.State.Sort.Key {
			if v.State.Sort.Direction == pipeline.Asc {
				header[i] += " ▲"
			} else {
				header[i] += " ▼"
			}
		}
	}
	return header
}

// ItemsFound is the visible count line
func ItemsFound(count int) string {
	if count == 1 {
		return "1 item found"
	}
	return fmt.Sprintf("%d items found", count)
}

// SummaryLine describes the grouped view's headline figures
func SummaryLine(v pipeline.View) string {
	s := v.Summary()
	line := fmt.Sprintf("%d departments, %d vendors, %d unique accounts", s.Departments, s.Vendors, s.UniqueAccounts)
	if v.Variant == types.VariantForecast {
		line += ", " + Currency(s.Total) + " FY total"
	}
	return line
}

// Table lays the view out as display rows. Row 0 is always the header; Kinds
// runs parallel to Rows.
func Table(v pipeline.View, now time.Time) types.TableData {
	data := types.TableData{
		Title: fmt.Sprintf("%s - %s", v.State.Tab.Label(), ItemsFound(v.Count)),
	}
	width := len(Columns(v))
	add := func(kind types.RowKind, cells []string) {
		data.Rows = append(data.Rows, cells)
		data.Kinds = append(data.Kinds, kind)
	}

	add(types.RowHeader, Header(v))

	if v.Count == 0 {
		add(types.RowMessage, padRow([]string{"No records match the current selection"}, width))
		return data
	}

	switch {
	case v.Subtotals != nil:
		data.Title += " | " + SummaryLine(v)
		var grand float64
		grandMonths := make(types.Monthly)
		for _, g := range v.Subtotals {
			add(types.RowGroup, padRow([]string{fmt.Sprintf("%s (%d)", departmentLabel(g.Department), g.Count)}, width))
			for _, item := range g.Items {
				add(types.RowItem, itemCells(v, item, now))
			}
			add(types.RowSubtotal, totalCells(v, "Subtotal", g.MonthlyTotals, g.Total))
			grand += g.Total
			for month, amount := range g.MonthlyTotals {
				grandMonths[month] += amount
			}
		}
		add(types.RowSubtotal, totalCells(v, "Total", grandMonths, grand))
	case v.Groups != nil:
		data.Title += " | " + SummaryLine(v)
		for _, g := range v.Groups {
			label := fmt.Sprintf("%s (%d)", departmentLabel(g.Department), g.Count)
			accounts := strings.Join(pipeline.UniqueAccounts(g.Items), ", ")
			add(types.RowGroup, padRow([]string{"", label, accounts}, width))
			for _, item := range g.Items {
				add(types.RowItem, itemCells(v, item, now))
			}
		}
	default:
		for _, item := range v.Items {
			add(types.RowItem, itemCells(v, item, now))
		}
	}
	return data
}

func itemCells(v pipeline.View, item types.Item, now time.Time) []string {
	if v.Variant != types.VariantForecast {
		return []string{
			fmt.Sprint(item.ID),
			item.Vendor,
			item.ProperAccount,
			item.Department,
			item.Subdepartment,
		}
	}

	cells := []string{item.Vendor, item.ProperAccount, item.Department, item.Subdepartment}
	if item.Forecast == nil {
		cells = append(cells, "-", "-", string(StatusUnknown))
		for range v.MonthKeys {
			cells = append(cells, "-")
		}
		return append(cells, "-")
	}

	f := item.Forecast
	cells = append(cells,
		dateCell(f.ContractStart),
		dateCell(f.ContractEnd),
		string(ContractStatus(f.ContractStart, f.ContractEnd, now)),
	)
	for _, month := range v.MonthKeys {
		cells = append(cells, MonthAmount(f.Monthly, month))
	}
	return append(cells, Currency(f.FYTotal))
}

func totalCells(v pipeline.View, label string, monthly types.Monthly, total float64) []string {
	cells := []string{label, "", "", "", "", "", ""}
	for _, month := range v.MonthKeys {
		cells = append(cells, MonthAmount(monthly, month))
	}
	return append(cells, Currency(total))
}

func dateCell(d types.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.String()
}

func departmentLabel(department string) string {
	if department == "" {
		return "Unassigned"
	}
	return department
}

func padRow(cells []string, width int) []string {
	for len(cells) < width {
		cells = append(cells, "")
	}
	return cells
}
