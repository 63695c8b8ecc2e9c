package pipeline

import (
	"math"
	"reflect"
	"testing"

	"github.com/jdlms/fpa-forecast/internal/types"
)

func TestSubtotalByDepartmentExample(t *testing.T) {
	items := []types.Item{
		forecastItem(1, types.SourceTooling, "A", "Eng", 100, types.Monthly{"2024-01": 50}),
		forecastItem(2, types.SourceTooling, "B", "Eng", 200, types.Monthly{"2024-01": 75, "2024-02": 10}),
		forecastItem(3, types.SourceTooling, "C", "Sales", 30, types.Monthly{}),
	}

	groups := SubtotalByDepartment(items)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	eng := groups[0]
	if eng.Department != "Eng" || eng.Total != 300 || eng.Count != 2 {
		t.Errorf("unexpected first group: %+v", eng)
	}
	if want := (types.Monthly{"2024-01": 125, "2024-02": 10}); !reflect.DeepEqual(eng.MonthlyTotals, want) {
		t.Errorf("monthly totals = %v, want %v", eng.MonthlyTotals, want)
	}
	if got := ids(eng.Items); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("eng items = %v", got)
	}

	sales := groups[1]
	if sales.Department != "Sales" || sales.Total != 30 || sales.Count != 1 {
		t.Errorf("unexpected second group: %+v", sales)
	}
	if len(sales.MonthlyTotals) != 0 {
		t.Errorf("expected no monthly totals for Sales, got %v", sales.MonthlyTotals)
	}
}

func TestSubtotalKeepsFYTotalAuthoritative(t *testing.T) {
	// fyTotal deliberately disagrees with the monthly sum.
	items := []types.Item{
		forecastItem(1, types.SourceTooling, "A", "Eng", 1000, types.Monthly{"2024-01": 10, "2024-02": 10}),
	}
	groups := SubtotalByDepartment(items)
	if groups[0].Total != 1000 {
		t.Fatalf("total = %v, want 1000", groups[0].Total)
	}
	if groups[0].MonthlyTotals["2024-01"]+groups[0].MonthlyTotals["2024-02"] != 20 {
		t.Fatalf("monthly totals = %v", groups[0].MonthlyTotals)
	}
}

func TestSubtotalOrderingTiesUseFirstAppearance(t *testing.T) {
	items := []types.Item{
		forecastItem(1, types.SourceTooling, "a", "Ops", 50, nil),
		forecastItem(2, types.SourceTooling, "b", "Eng", 80, nil),
		forecastItem(3, types.SourceTooling, "c", "Legal", 50, nil),
		forecastItem(4, types.SourceTooling, "d", "HR", 50, nil),
	}
	var got []string
	for _, g := range SubtotalByDepartment(items) {
		got = append(got, g.Department)
	}
	if want := []string{"Eng", "Ops", "Legal", "HR"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestSubtotalToleratesMissingForecastAndMonthly(t *testing.T) {
	items := []types.Item{
		vendorItem(1, types.SourceTooling, "x", "", "Eng", ""),
		{ID: 2, Department: "Eng", Forecast: &types.Forecast{FYTotal: 5}},
	}
	groups := SubtotalByDepartment(items)
	if len(groups) != 1 || groups[0].Count != 2 || groups[0].Total != 5 {
		t.Fatalf("unexpected groups: %+v", groups)
	}
	if groups[0].MonthlyTotals == nil || len(groups[0].MonthlyTotals) != 0 {
		t.Fatalf("expected empty monthly totals, got %v", groups[0].MonthlyTotals)
	}
}

func TestSubtotalConservation(t *testing.T) {
	items := []types.Item{
		forecastItem(1, types.SourceTooling, "a", "Eng", 0.1, types.Monthly{"2024-01": 0.1}),
		forecastItem(2, types.SourceTooling, "b", "Ops", 0.2, types.Monthly{"2024-01": 0.2}),
		forecastItem(3, types.SourceTooling, "c", "Eng", 1234.56, types.Monthly{"2024-03": 7}),
		forecastItem(4, types.SourceTooling, "d", "Legal", 99.99, nil),
	}
	groups := SubtotalByDepartment(items)

	var count int
	var total float64
	for _, g := range groups {
		count += g.Count
		total += g.Total
	}
	if count != len(items) {
		t.Errorf("count = %d, want %d", count, len(items))
	}
	if want := 0.1 + 0.2 + 1234.56 + 99.99; total-want > 1e-9 || want-total > 1e-9 {
		t.Errorf("total = %v, want %v", total, want)
	}

	want := make(types.Monthly)
	for _, item := range items {
		for month, amount := range item.Forecast.Monthly {
			want[month] += amount
		}
	}
	got := make(types.Monthly)
	for _, g := range groups {
		for month, amount := range g.MonthlyTotals {
			got[month] += amount
		}
	}
	if len(got) != len(want) {
		t.Fatalf("monthly keys = %v, want %v", got, want)
	}
	for month, w := range want {
		if d := got[month] - w; d > 1e-9 || d < -1e-9 {
			t.Errorf("month %s = %v, want %v", month, got[month], w)
		}
	}
}

func TestSubtotalNonFiniteAmountsCountAsZero(t *testing.T) {
	tests := []struct {
		name    string
		fyTotal float64
		monthly types.Monthly
	}{
		{"inf total", math.Inf(1), nil},
		{"nan total", math.NaN(), nil},
		{"nan month", 10, types.Monthly{"2024-01": math.NaN()}},
		{"inf month", 10, types.Monthly{"2024-01": math.Inf(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := []types.Item{
				forecastItem(1, types.SourceTooling, "a", "Eng", tt.fyTotal, tt.monthly),
				forecastItem(2, types.SourceTooling, "b", "Eng", 5, types.Monthly{"2024-01": 2}),
			}
			groups := SubtotalByDepartment(items)
			if len(groups) != 1 || groups[0].Count != 2 {
				t.Fatalf("groups = %+v", groups)
			}
			wantTotal := 5.0
			if !math.IsNaN(tt.fyTotal) && !math.IsInf(tt.fyTotal, 0) {
				wantTotal += tt.fyTotal
			}
			if groups[0].Total != wantTotal {
				t.Errorf("total = %v, want %v", groups[0].Total, wantTotal)
			}
			if got := groups[0].MonthlyTotals["2024-01"]; got != 2 {
				t.Errorf("2024-01 = %v, want 2", got)
			}
		})
	}
}

func TestGroupByDepartment(t *testing.T) {
	items := []types.Item{
		vendorItem(1, types.SourceTooling, "a", "", "Design", ""),
		vendorItem(2, types.SourceTooling, "b", "", "Engineering", ""),
		vendorItem(3, types.SourceTooling, "c", "", "Engineering", ""),
		vendorItem(4, types.SourceTooling, "d", "", "Finance", ""),
		vendorItem(5, types.SourceTooling, "e", "", "Finance", ""),
		vendorItem(6, types.SourceTooling, "f", "", "Legal", ""),
	}
	groups := GroupByDepartment(items)

	type summary struct {
		dept  string
		count int
		ids   []int
	}
	var got []summary
	for _, g := range groups {
		got = append(got, summary{g.Department, g.Count, ids(g.Items)})
	}
	want := []summary{
		{"Engineering", 2, []int{2, 3}},
		{"Finance", 2, []int{4, 5}},
		{"Design", 1, []int{1}},
		{"Legal", 1, []int{6}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("groups = %+v, want %+v", got, want)
	}
}

func TestAggregatorsHandleEmptyInput(t *testing.T) {
	if got := GroupByDepartment(nil); got == nil || len(got) != 0 {
		t.Errorf("GroupByDepartment(nil) = %#v", got)
	}
	if got := SubtotalByDepartment(nil); got == nil || len(got) != 0 {
		t.Errorf("SubtotalByDepartment(nil) = %#v", got)
	}
}
