// state.go - application state management
package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jdlms/fpa-forecast/internal/cache"
	"github.com/jdlms/fpa-forecast/internal/format"
	"github.com/jdlms/fpa-forecast/internal/pipeline"
	"github.com/jdlms/fpa-forecast/internal/types"
	"github.com/jdlms/fpa-forecast/internal/ui"
	"github.com/rivo/tview"
)

// AppState holds the widgets, the record store and the current selections.
// Everything except Store is touched only from the tview event loop.
type AppState struct {
	App       *tview.Application
	Grid      *tview.Grid
	Tabs      *tview.List
	Filters   *ui.Filters
	MainTable *tview.Table
	Header    *tview.TextView
	Footer    *tview.TextView

	Store *cache.Store

	view     pipeline.ViewState
	current  pipeline.View
	status   string
	loadErr  error
	loadedAt time.Time
	syncing  bool
	now      func() time.Time
	setFocus func(tview.Primitive)
	quit     func()
}

// newState builds the widgets and wires the filter callbacks. It does not
// create the tview application so it can be driven directly.
func newState(store *cache.Store, initial pipeline.ViewState) *AppState {
	state := &AppState{
		Store:     store,
		view:      initial,
		Header:    ui.CreateHeader(),
		Footer:    ui.CreateFooter(),
		Tabs:      ui.CreateTabs(),
		Filters:   ui.CreateFilters(),
		MainTable: ui.CreateMainTable(),
		now:       time.Now,
		setFocus:  func(tview.Primitive) {},
		quit:      func() {},
	}
	state.Grid = ui.SetupGrid(state.Header, state.Footer, state.Tabs, state.Filters, state.MainTable)

	f := state.Filters
	f.Search.SetChangedFunc(state.SetSearch)
	f.Grouped.SetChecked(initial.Grouped)
	f.Grouped.SetChangedFunc(state.SetGrouped)

	state.Render()
	return state
}

func (s *AppState) facetHandler(facet pipeline.Facet) func(string, int) {
	return func(option string, index int) {
		s.SetFacet(facet, ui.FacetValue(option, index))
	}
}

// ViewState returns the current selections
func (s *AppState) ViewState() pipeline.ViewState {
	return s.view
}

// View returns the last derived view
func (s *AppState) View() pipeline.View {
	return s.current
}

// SetTab switches the tab. Search and facet selections carry over.
func (s *AppState) SetTab(tab types.Source) {
	if tab == s.view.Tab {
		return
	}
	slog.Info("tab selected", "tab", tab)
	s.update(s.view.WithTab(tab))
}

func (s *AppState) SetSearch(text string) {
	if s.syncing || text == s.view.Criteria.Search {
		return
	}
	s.update(s.view.WithSearch(text))
}

func (s *AppState) SetFacet(facet pipeline.Facet, value string) {
	if s.syncing {
		return
	}
	next := s.view.WithFacet(facet, value)
	if next == s.view {
		return
	}
	slog.Debug("facet selected", "facet", facet, "value", value)
	s.update(next)
}

func (s *AppState) SetGrouped(grouped bool) {
	if s.syncing || grouped == s.view.Grouped {
		return
	}
	s.update(s.view.WithGrouped(grouped))
}

// ToggleSort applies the header behaviour for the column at index col.
// Columns without a sort key are ignored.
func (s *AppState) ToggleSort(col int) {
	cols := format.Columns(s.current)
	if col < 0 || col >= len(cols) || cols[col].Key == "" {
		return
	}
	next := pipeline.ToggleSort(s.view.Sort, cols[col].Key)
	slog.Debug("sort changed", "key", next.Key, "direction", next.Direction)
	s.update(s.view.WithSort(next))
}

func (s *AppState) update(next pipeline.ViewState) {
	s.view = next
	s.Render()
}

// Render derives the view from the store and redraws the table, the header
// and the filter widgets. Every call recomputes from scratch.
func (s *AppState) Render() {
	s.current = pipeline.Derive(s.Store.Items(), s.view)
	s.syncFilters()
	ui.PopulateTable(s.MainTable, format.Table(s.current, s.now()))
	s.Header.SetText(s.headerText())
}

func (s *AppState) headerText() string {
	switch {
	case s.loadErr != nil:
		return ui.Failed(fmt.Sprintf("Failed to load data: %s", tview.Escape(s.loadErr.Error())))
	case !s.Store.Loaded():
		if s.status != "" {
			return ui.Loading(s.status)
		}
		return ui.Loading("Loading records...")
	}
	return ui.Ready(fmt.Sprintf("FP&A Forecast - %s", s.current.State.Tab.Label())) +
		fmt.Sprintf(" | %s | %d records (Last updated: %s)", format.ItemsFound(s.current.Count), s.Store.Len(), s.loadedAt.Format("15:04:05"))
}

// syncFilters pushes facet options and selections into the widgets without
// firing their callbacks back into the state
func (s *AppState) syncFilters() {
	s.syncing = true
	defer func() { s.syncing = false }()

	f := s.Filters
	facets := s.current.Facets
	for _, entry := range []struct {
		dd       *tview.DropDown
		facet    pipeline.Facet
		values   []string
		selected string
	}{
		{f.Department, pipeline.FacetDepartment, facets.Departments, s.view.Criteria.Department},
		{f.Account, pipeline.FacetAccount, facets.Accounts, s.view.Criteria.Account},
		{f.Subdepartment, pipeline.FacetSubdepartment, facets.Subdepartments, s.view.Criteria.Subdepartment},
	} {
		// SetOptions replaces the selected handler, so it is passed again
		options, index := ui.FacetOptions(entry.values, entry.selected)
		entry.dd.SetOptions(options, s.facetHandler(entry.facet))
		entry.dd.SetCurrentOption(index)
	}
	if f.Search.GetText() != s.view.Criteria.Search {
		f.Search.SetText(s.view.Criteria.Search)
	}
	f.Grouped.SetChecked(s.view.Grouped)
	s.Tabs.SetCurrentItem(tabIndex(s.view.Tab))
}

func tabIndex(tab types.Source) int {
	for i, src := range types.Sources() {
		if src == tab {
			return i
		}
	}
	return 0
}
