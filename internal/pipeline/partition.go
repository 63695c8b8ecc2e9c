// Package pipeline derives the visible collections from the loaded records:
// tab partition, filter, sort, department aggregation and facet lists.
// Every function is pure and returns a new slice.
package pipeline

import "github.com/jdlms/fpa-forecast/internal/types"

// Partition returns the items belonging to source, in their original order
func Partition(items []types.Item, source types.Source) []types.Item {
	out := make([]types.Item, 0, len(items))
	for _, item := range items {
		if item.Source == source {
			out = append(out, item)
		}
	}
	return out
}
