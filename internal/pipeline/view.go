package pipeline

import "github.com/jdlms/fpa-forecast/internal/types"

// ViewState is the complete set of user selections. It is a value: the
// With* helpers return a modified copy.
type ViewState struct {
	Tab      types.Source
	Criteria Criteria
	Sort     SortConfig
	Grouped  bool
	Variant  types.Variant
}

// DefaultViewState opens on the tooling tab sorted by annual total
func DefaultViewState() ViewState {
	return ViewState{
		Tab:     types.SourceTooling,
		Sort:    DefaultSort(),
		Variant: types.VariantAuto,
	}
}

func (s ViewState) WithTab(tab types.Source) ViewState {
	s.Tab = tab
	return s
}

func (s ViewState) WithSearch(search string) ViewState {
	s.Criteria.Search = search
	return s
}

// WithFacet sets one facet selection; an empty value clears it
func (s ViewState) WithFacet(facet Facet, value string) ViewState {
	switch facet {
	case FacetDepartment:
		s.Criteria.Department = value
	case FacetAccount:
		s.Criteria.Account = value
	case FacetSubdepartment:
		s.Criteria.Subdepartment = value
	}
	return s
}

func (s ViewState) WithSort(cfg SortConfig) ViewState {
	s.Sort = cfg
	return s
}

func (s ViewState) WithGrouped(grouped bool) ViewState {
	s.Grouped = grouped
	return s
}

// View is everything the presentation layer shows for one ViewState
type View struct {
	State     ViewState
	Variant   types.Variant
	Tab       []types.Item
	Facets    Facets
	Items     []types.Item
	Count     int
	MonthKeys []string
	Groups    []types.DepartmentGroup
	Subtotals []types.DepartmentSubtotal
}

// Derive runs the whole pipeline for state over the loaded records. Nothing
// is reused between calls.
func Derive(records []types.Item, state ViewState) View {
	variant := state.Variant
	if variant == "" || variant == types.VariantAuto {
		variant = types.DetectVariant(records)
	}

	tab := Partition(records, state.Tab)
	items := Sort(Filter(tab, state.Criteria), state.Sort)

	view := View{
		State:   state,
		Variant: variant,
		Tab:     tab,
		Facets:  BuildFacets(tab),
		Items:   items,
		Count:   len(items),
	}
	if variant == types.VariantForecast {
		view.MonthKeys = MonthKeys(items)
	}
	if state.Grouped {
		if variant == types.VariantForecast {
			view.Subtotals = SubtotalByDepartment(items)
		} else {
			view.Groups = GroupByDepartment(items)
		}
	}
	return view
}

// Summary holds the headline figures shown above the grouped view
type Summary struct {
	Departments    int
	Vendors        int
	UniqueAccounts int
	Total          float64
}

// Summary counts departments, vendors and distinct accounts in the visible set
func (v View) Summary() Summary {
	s := Summary{
		Vendors:        v.Count,
		UniqueAccounts: len(UniqueAccounts(v.Items)),
	}
	switch {
	case v.Subtotals != nil:
		s.Departments = len(v.Subtotals)
		for _, g := range v.Subtotals {
			s.Total += g.Total
		}
	case v.Groups != nil:
		s.Departments = len(v.Groups)
	default:
		s.Departments = len(bucketByDepartment(v.Items))
		for _, item := range v.Items {
			s.Total += item.FYTotalOrZero()
		}
	}
	return s
}
