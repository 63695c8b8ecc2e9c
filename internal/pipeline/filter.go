package pipeline

import (
	"strings"

	"github.com/jdlms/fpa-forecast/internal/types"
)

// Criteria is the current search text and facet selections. Empty fields do
// not constrain.
type Criteria struct {
	Search        string
	Department    string
	Account       string
	Subdepartment string
}

// IsZero reports whether the criteria constrain nothing
func (c Criteria) IsZero() bool {
	return c == Criteria{}
}

// Matches reports whether item satisfies the text match and every facet
func (c Criteria) Matches(item types.Item) bool {
	return c.matchesText(strings.ToLower(c.Search), item) && c.matchesFacets(item)
}

func (c Criteria) matchesText(needle string, item types.Item) bool {
	if needle == "" {
		return true
	}
	for _, field := range []string{item.Vendor, item.ProperAccount, item.Department, item.Subdepartment} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Facets are exact and case-sensitive.
func (c Criteria) matchesFacets(item types.Item) bool {
	if c.Department != "" && item.Department != c.Department {
		return false
	}
	if c.Account != "" && item.ProperAccount != c.Account {
		return false
	}
	if c.Subdepartment != "" && item.Subdepartment != c.Subdepartment {
		return false
	}
	return true
}

// Filter returns the items matching c, preserving order
func Filter(items []types.Item, c Criteria) []types.Item {
	needle := strings.ToLower(c.Search)
	out := make([]types.Item, 0, len(items))
	for _, item := range items {
		if c.matchesText(needle, item) && c.matchesFacets(item) {
			out = append(out, item)
		}
	}
	return out
}
