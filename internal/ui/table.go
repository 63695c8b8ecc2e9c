package ui

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/jdlms/fpa-forecast/internal/types"
	"github.com/rivo/tview"
)

// PopulateTable fills the table with formatted rows, styling each by its kind
func PopulateTable(table *tview.Table, data types.TableData) {
	slog.Debug("populating table", "title", data.Title, "rows", len(data.Rows))

	if table == nil {
		slog.Error("populate table called with nil table")
		return
	}

	table.Clear()
	table.SetTitle(data.Title)

	if len(data.Rows) == 0 {
		table.SetCell(0, 0, tview.NewTableCell("No data available").
			SetAlign(tview.AlignCenter).
			SetSelectable(false))
		return
	}

	top := findTopAmountsPerColumn(data)

	for row, cells := range data.Rows {
		kind := types.RowItem
		if row < len(data.Kinds) {
			kind = data.Kinds[row]
		}
		for col, cell := range cells {
			text := tview.Escape(cell)
			align := tview.AlignLeft
			if strings.HasPrefix(cell, "$") || strings.HasPrefix(cell, "-$") {
				align = tview.AlignRight
			}

			switch kind {
			case types.RowHeader:
				table.SetCell(row, col, tview.NewTableCell(tagGold+"[::b]"+text+tagReset).
					SetAlign(tview.AlignCenter).
					SetSelectable(false))
				continue
			case types.RowGroup:
				text = tagIris + "[::b]" + text + tagReset
			case types.RowSubtotal:
				text = tagFoam + "[::b]" + text + tagReset
			case types.RowMessage:
				text = tagSubtle + text + tagReset
			default:
				if top[col] != nil && top[col][row] {
					text = tagGold + text + tagReset
				} else {
					text = tagText + text + tagReset
				}
			}
			table.SetCell(row, col, tview.NewTableCell(text).
				SetAlign(align).
				SetSelectable(kind == types.RowItem))
		}
	}
}

// parseAmount extracts the numeric value from a currency cell
func parseAmount(cell string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.Replace(cell, "$", "", 1), ",", "")
	amount, err := strconv.ParseFloat(cleaned, 64)
	return amount, err == nil
}

// findTopAmountsPerColumn marks the three largest item amounts in every
// currency column
func findTopAmountsPerColumn(data types.TableData) map[int]map[int]bool {
	result := make(map[int]map[int]bool)
	if len(data.Rows) < 2 {
		return result
	}

	type amountRow struct {
		amount float64
		row    int
	}

	for col := range data.Rows[0] {
		var amounts []amountRow
		for row := 1; row < len(data.Rows); row++ {
			if row >= len(data.Kinds) || data.Kinds[row] != types.RowItem || col >= len(data.Rows[row]) {
				continue
			}
			cell := data.Rows[row][col]
			if !strings.Contains(cell, "$") {
				continue
			}
			if amount, ok := parseAmount(cell); ok && amount > 0 {
				amounts = append(amounts, amountRow{amount: amount, row: row})
			}
		}
		if len(amounts) == 0 {
			continue
		}

		slices.SortStableFunc(amounts, func(a, b amountRow) int {
			switch {
			case a.amount > b.amount:
				return -1
			case a.amount < b.amount:
				return 1
			}
			return 0
		})

		result[col] = make(map[int]bool)
		for i := 0; i < len(amounts) && i < 3; i++ {
			result[col][amounts[i].row] = true
		}
	}

	return result
}
