// Package types: records loaded from a dataset and the results derived from them
package types

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Source is the fixed top-level partition an item belongs to
type Source string

const (
	SourceTooling Source = "tooling"
	SourcePS      Source = "ps"
	SourceSM      Source = "sm"
)

// Sources lists the partitions in tab order
func Sources() []Source {
	return []Source{SourceTooling, SourcePS, SourceSM}
}

// ParseSource returns the Source named by s and whether it is known
func ParseSource(s string) (Source, bool) {
	switch src := Source(strings.ToLower(strings.TrimSpace(s))); src {
	case SourceTooling, SourcePS, SourceSM:
		return src, true
	}
	return "", false
}

// Label is the tab title shown for the source
func (s Source) Label() string {
	switch s {
	case SourceTooling:
		return "Tooling"
	case SourcePS:
		return "Professional Services"
	case SourceSM:
		return "Sales & Marketing"
	default:
		return string(s)
	}
}

// Item is a single vendor/account/department record. Forecast is nil for
// vendor lookup records.
type Item struct {
	ID            int    `json:"id"`
	Source        Source `json:"source"`
	Vendor        string `json:"vendor"`
	ProperAccount string `json:"properAccount"`
	Department    string `json:"department"`
	Subdepartment string `json:"subdepartment"`

	*Forecast
}

// HasForecast reports whether the item carries the forecast extension
func (i Item) HasForecast() bool {
	return i.Forecast != nil
}

// FYTotalOrZero returns the annual total, or 0 for vendor lookup records
func (i Item) FYTotalOrZero() float64 {
	if i.Forecast == nil {
		return 0
	}
	return i.Forecast.FYTotal
}

// Forecast is the extension block carried by monthly forecast records
type Forecast struct {
	ContractStart Date    `json:"contractStart"`
	ContractEnd   Date    `json:"contractEnd"`
	Monthly       Monthly `json:"monthly"`
	// FYTotal is supplied independently and may differ from the sum of Monthly
	FYTotal float64 `json:"fyTotal"`
}

// Monthly maps a "YYYY-MM" key to an amount. Absent months have no recorded amount.
type Monthly map[string]float64

// Variant identifies which record shape a dataset carries
type Variant string

const (
	VariantAuto     Variant = "auto"
	VariantVendor   Variant = "vendor"
	VariantForecast Variant = "forecast"
)

// DetectVariant returns VariantForecast when any item carries a forecast block
func DetectVariant(items []Item) Variant {
	for _, item := range items {
		if item.HasForecast() {
			return VariantForecast
		}
	}
	return VariantVendor
}

const dateLayout = "2006-01-02"

// Date is a calendar date. The zero value means the date is absent.
type Date struct {
	time.Time
}

// NewDate returns the date for year, month and day in UTC
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts "YYYY-MM-DD" or an RFC 3339 timestamp
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// String returns the date as "YYYY-MM-DD", or "" when absent
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// UnmarshalJSON decodes a date string. Empty, null and unparsable values
// leave the date absent instead of failing the whole dataset.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		*d = Date{}
		return nil
	}
	*d = parsed
	return nil
}

// MarshalJSON encodes the date as "YYYY-MM-DD"
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// DepartmentGroup is a vendor lookup aggregation bucket
type DepartmentGroup struct {
	Department string
	Items      []Item
	Count      int
}

// DepartmentSubtotal is a forecast aggregation bucket
type DepartmentSubtotal struct {
	Department    string
	Items         []Item
	Count         int
	Total         float64
	MonthlyTotals Monthly
}

// TableData represents formatted rows for display
type TableData struct {
	Title string
	Rows  [][]string
	Kinds []RowKind
}

// RowKind tells the renderer how to style a row
type RowKind int

const (
	RowHeader RowKind = iota
	RowItem
	RowGroup
	RowSubtotal
	RowMessage
)
