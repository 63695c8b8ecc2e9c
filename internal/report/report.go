// Package report prints a derived view as Markdown for non-interactive use
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/jdlms/fpa-forecast/internal/format"
	"github.com/jdlms/fpa-forecast/internal/pipeline"
	"github.com/jdlms/fpa-forecast/internal/types"
)

// Styles accepted by Render besides the glamour standard style names
const (
	StyleAuto = "auto"
	StyleRaw  = "raw"
)

// Markdown writes the view as a heading, the visible count and one table.
// Group and subtotal rows are emphasized.
func Markdown(v pipeline.View, now time.Time) string {
	data := format.Table(v, now)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", v.State.Tab.Label())
	fmt.Fprintf(&b, "%s", format.ItemsFound(v.Count))
	if v.State.Grouped && v.Count > 0 {
		fmt.Fprintf(&b, " (%s)", format.SummaryLine(v))
	}
	b.WriteString("\n\n")

	if v.Count == 0 {
		b.WriteString("_No records match the current selection._\n")
		return b.String()
	}

	for i, row := range data.Rows {
		kind := data.Kinds[i]
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = emphasize(escape(cell), kind)
		}
		fmt.Fprintf(&b, "| %s |\n", strings.Join(cells, " | "))
		if kind == types.RowHeader {
			fmt.Fprintf(&b, "|%s\n", strings.Repeat(" --- |", len(row)))
		}
	}
	return b.String()
}

// Render returns the Markdown for v styled for the terminal. StyleRaw skips
// rendering; StyleAuto picks a style from the terminal background.
func Render(v pipeline.View, style string, wordWrap int, now time.Time) (string, error) {
	md := Markdown(v, now)
	if style == StyleRaw {
		return md, nil
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(wordWrap)}
	if style == "" || style == StyleAuto {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return out, nil
}

func escape(cell string) string {
	return strings.ReplaceAll(cell, "|", `\|`)
}

func emphasize(cell string, kind types.RowKind) string {
	if cell == "" {
		return cell
	}
	switch kind {
	case types.RowGroup, types.RowSubtotal:
		return "**" + cell + "**"
	case types.RowMessage:
		return "_" + cell + "_"
	}
	return cell
}
