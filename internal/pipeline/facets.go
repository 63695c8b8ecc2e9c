package pipeline

import (
	"slices"

	"github.com/jdlms/fpa-forecast/internal/types"
)

// Facet names a categorical field used for exact-match filtering
type Facet string

const (
	FacetDepartment    Facet = "department"
	FacetAccount       Facet = "account"
	FacetSubdepartment Facet = "subdepartment"
)

func (f Facet) value(item types.Item) string {
	switch f {
	case FacetDepartment:
		return item.Department
	case FacetAccount:
		return item.ProperAccount
	case FacetSubdepartment:
		return item.Subdepartment
	}
	return ""
}

// FacetValues returns the distinct non-empty values of facet in the order
// they first occur
func FacetValues(items []types.Item, facet Facet) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, item := range items {
		v := facet.value(item)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Facets holds the option lists for the three filter selectors
type Facets struct {
	Departments    []string
	Accounts       []string
	Subdepartments []string
}

// BuildFacets derives all option lists from the tab partition
func BuildFacets(items []types.Item) Facets {
	return Facets{
		Departments:    FacetValues(items, FacetDepartment),
		Accounts:       FacetValues(items, FacetAccount),
		Subdepartments: FacetValues(items, FacetSubdepartment),
	}
}

// MonthKeys returns every month key present in the items, oldest first
func MonthKeys(items []types.Item) []string {
	seen := make(map[string]struct{})
	for _, item := range items {
		if item.Forecast == nil {
			continue
		}
		for month := range item.Forecast.Monthly {
			seen[month] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for month := range seen {
		keys = append(keys, month)
	}
	slices.Sort(keys)
	return keys
}

// UniqueAccounts returns the distinct account codes across items in first
// occurrence order
func UniqueAccounts(items []types.Item) []string {
	return FacetValues(items, FacetAccount)
}
