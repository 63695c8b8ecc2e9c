package pipeline

import (
	"math"
	"slices"

	"github.com/jdlms/fpa-forecast/internal/types"
	"github.com/shopspring/decimal"
)

// bucket collects members of one department in first-appearance order
type bucket struct {
	department string
	items      []types.Item
}

func bucketByDepartment(items []types.Item) []*bucket {
	index := make(map[string]*bucket)
	var order []*bucket
	for _, item := range items {
		b, ok := index[item.Department]
		if !ok {
			b = &bucket{department: item.Department}
			index[item.Department] = b
			order = append(order, b)
		}
		b.items = append(b.items, item)
	}
	return order
}

// GroupByDepartment buckets items by department for the vendor lookup view.
// Groups are ordered by member count, largest first; equal counts keep the
// order in which the departments first appear.
func GroupByDepartment(items []types.Item) []types.DepartmentGroup {
	buckets := bucketByDepartment(items)
	groups := make([]types.DepartmentGroup, 0, len(buckets))
	for _, b := range buckets {
		groups = append(groups, types.DepartmentGroup{
			Department: b.department,
			Items:      b.items,
			Count:      len(b.items),
		})
	}
	slices.SortStableFunc(groups, func(a, b types.DepartmentGroup) int {
		return b.Count - a.Count
	})
	return groups
}

// SubtotalByDepartment buckets forecast items by department and sums their
// annual totals and monthly amounts. Total is the sum of FYTotal and is never
// derived from the monthly entries. Items without a forecast block count as
// members but contribute nothing to the sums.
func SubtotalByDepartment(items []types.Item) []types.DepartmentSubtotal {
	type accumulated struct {
		subtotal types.DepartmentSubtotal
		total    decimal.Decimal
	}

	buckets := bucketByDepartment(items)
	acc := make([]accumulated, 0, len(buckets))
	for _, b := range buckets {
		total := decimal.Zero
		months := make(map[string]decimal.Decimal)
		for _, item := range b.items {
			if item.Forecast == nil {
				continue
			}
			total = total.Add(amountOf(item.Forecast.FYTotal))
			for month, amount := range item.Forecast.Monthly {
				months[month] = months[month].Add(amountOf(amount))
			}
		}

		monthly := make(types.Monthly, len(months))
		for month, sum := range months {
			monthly[month] = sum.InexactFloat64()
		}
		acc = append(acc, accumulated{
			subtotal: types.DepartmentSubtotal{
				Department:    b.department,
				Items:         b.items,
				Count:         len(b.items),
				Total:         total.InexactFloat64(),
				MonthlyTotals: monthly,
			},
			total: total,
		})
	}

	slices.SortStableFunc(acc, func(a, b accumulated) int {
		return b.total.Cmp(a.total)
	})

	out := make([]types.DepartmentSubtotal, len(acc))
	for i, a := range acc {
		out[i] = a.subtotal
	}
	return out
}

// amountOf converts a recorded amount for summing. NaN and infinities have no
// decimal form and count as zero.
func amountOf(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
