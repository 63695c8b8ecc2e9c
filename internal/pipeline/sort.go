package pipeline

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/jdlms/fpa-forecast/internal/types"
)

// SortKey names the item field to order by
type SortKey string

const (
	KeyID            SortKey = "id"
	KeySource        SortKey = "source"
	KeyVendor        SortKey = "vendor"
	KeyAccount       SortKey = "properAccount"
	KeyDepartment    SortKey = "department"
	KeySubdepartment SortKey = "subdepartment"
	KeyContractStart SortKey = "contractStart"
	KeyContractEnd   SortKey = "contractEnd"
	KeyFYTotal       SortKey = "fyTotal"
)

// SortKeys returns every key the sort engine understands
func SortKeys() []SortKey {
	return []SortKey{
		KeyID, KeySource, KeyVendor, KeyAccount, KeyDepartment,
		KeySubdepartment, KeyContractStart, KeyContractEnd, KeyFYTotal,
	}
}

// ParseSortKey matches s against the known keys, ignoring case
func ParseSortKey(s string) (SortKey, bool) {
	for _, key := range SortKeys() {
		if strings.EqualFold(string(key), strings.TrimSpace(s)) {
			return key, true
		}
	}
	return "", false
}

// Direction is asc or desc
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection matches s against asc/desc, ignoring case
func ParseDirection(s string) (Direction, bool) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Asc:
		return Asc, true
	case Desc:
		return Desc, true
	}
	return "", false
}

// SortConfig is the active sort key and direction
type SortConfig struct {
	Key       SortKey
	Direction Direction
}

// DefaultSort orders by annual total, largest first
func DefaultSort() SortConfig {
	return SortConfig{Key: KeyFYTotal, Direction: Desc}
}

// ToggleSort applies a column header selection: the active key flips from
// desc to asc, any other selection starts at desc.
func ToggleSort(current SortConfig, key SortKey) SortConfig {
	if current.Key == key && current.Direction == Desc {
		return SortConfig{Key: key, Direction: Asc}
	}
	return SortConfig{Key: key, Direction: Desc}
}

// valueKind ranks values of different kinds against each other:
// absent < number < date < text.
type valueKind int

const (
	kindAbsent valueKind = iota
	kindNumber
	kindDate
	kindText
)

type sortValue struct {
	kind valueKind
	num  float64
	date time.Time
	text string // lower-cased
}

func valueOf(item types.Item, key SortKey) sortValue {
	switch key {
	case KeyID:
		return sortValue{kind: kindNumber, num: float64(item.ID)}
	case KeySource:
		return textValue(string(item.Source))
	case KeyVendor:
		return textValue(item.Vendor)
	case KeyAccount:
		return textValue(item.ProperAccount)
	case KeyDepartment:
		return textValue(item.Department)
	case KeySubdepartment:
		return textValue(item.Subdepartment)
	}

	if item.Forecast == nil {
		return sortValue{}
	}
	switch key {
	case KeyFYTotal:
		return sortValue{kind: kindNumber, num: item.Forecast.FYTotal}
	case KeyContractStart:
		return dateValue(item.Forecast.ContractStart)
	case KeyContractEnd:
		return dateValue(item.Forecast.ContractEnd)
	}
	return sortValue{}
}

func textValue(s string) sortValue {
	return sortValue{kind: kindText, text: strings.ToLower(s)}
}

func dateValue(d types.Date) sortValue {
	if d.IsZero() {
		return sortValue{}
	}
	return sortValue{kind: kindDate, date: d.Time}
}

func compareValues(a, b sortValue) int {
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}
	switch a.kind {
	case kindNumber:
		return cmp.Compare(a.num, b.num)
	case kindDate:
		return a.date.Compare(b.date)
	case kindText:
		return strings.Compare(a.text, b.text)
	}
	return 0
}

// Sort returns a copy of items ordered by cfg. Ties keep their input order
// in both directions. Absent values are the smallest, so they lead an
// ascending sort and trail a descending one.
func Sort(items []types.Item, cfg SortConfig) []types.Item {
	type keyed struct {
		item  types.Item
		value sortValue
	}
	decorated := make([]keyed, len(items))
	for i, item := range items {
		decorated[i] = keyed{item: item, value: valueOf(item, cfg.Key)}
	}

	slices.SortStableFunc(decorated, func(a, b keyed) int {
		c := compareValues(a.value, b.value)
		if cfg.Direction == Desc {
			return -c
		}
		return c
	})

	out := make([]types.Item, len(decorated))
	for i, k := range decorated {
		out[i] = k.item
	}
	return out
}
