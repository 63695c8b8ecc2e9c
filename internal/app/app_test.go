package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/jdlms/fpa-forecast/internal/cache"
	"github.com/jdlms/fpa-forecast/internal/pipeline"
	"github.com/jdlms/fpa-forecast/internal/types"
	"github.com/rivo/tview"
)

func records() []types.Item {
	item := func(id int, src types.Source, vendor, account, dept string, total float64) types.Item {
		return types.Item{
			ID: id, Source: src, Vendor: vendor, ProperAccount: account, Department: dept,
			Forecast: &types.Forecast{FYTotal: total, Monthly: types.Monthly{"2024-01": total / 12}},
		}
	}
	return []types.Item{
		item(1, types.SourceTooling, "GitHub", "6100", "Engineering", 12000),
		item(2, types.SourceTooling, "Figma", "6100", "Design", 3000),
		item(3, types.SourceTooling, "Datadog", "6150", "Engineering", 6000),
		item(4, types.SourcePS, "Deloitte", "6200", "Finance", 90000),
	}
}

func loadedState(t *testing.T) *AppState {
	t.Helper()
	store := cache.NewStore()
	store.Replace(records())
	state := newState(store, pipeline.DefaultViewState())
	state.now = func() time.Time { return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC) }
	state.loadFinished(store.Len(), nil)
	return state
}

func vendorColumn(t *testing.T, s *AppState) []string {
	t.Helper()
	var out []string
	for row := 1; row < s.MainTable.GetRowCount(); row++ {
		out = append(out, s.MainTable.GetCell(row, 0).Text)
	}
	return out
}

func TestRenderBeforeLoad(t *testing.T) {
	state := newState(cache.NewStore(), pipeline.DefaultViewState())
	if state.View().Count != 0 {
		t.Fatalf("count = %d", state.View().Count)
	}
	if !strings.Contains(state.Header.GetText(false), "Loading") {
		t.Errorf("header = %q", state.Header.GetText(false))
	}
}

func TestLoadFinishedRendersRecords(t *testing.T) {
	state := loadedState(t)

	if state.View().Count != 3 {
		t.Fatalf("count = %d", state.View().Count)
	}
	got := vendorColumn(t, state)
	if len(got) != 3 || !strings.Contains(got[0], "GitHub") || !strings.Contains(got[2], "Figma") {
		t.Errorf("vendors = %v", got)
	}
	header := state.Header.GetText(true)
	if !strings.Contains(header, "3 items found") || !strings.Contains(header, "12:00:00") {
		t.Errorf("header = %q", header)
	}
	if state.Filters.Department.GetOptionCount() != 3 {
		t.Errorf("department options = %d", state.Filters.Department.GetOptionCount())
	}
}

func TestLoadFailureKeepsEmptyView(t *testing.T) {
	state := newState(cache.NewStore(), pipeline.DefaultViewState())
	state.loadFinished(0, errors.New("tooling.json: unexpected status 500"))

	if state.View().Count != 0 {
		t.Errorf("count = %d", state.View().Count)
	}
	if !strings.Contains(state.Header.GetText(true), "Failed to load data") {
		t.Errorf("header = %q", state.Header.GetText(true))
	}
}

func TestSearchAndFacetEvents(t *testing.T) {
	state := loadedState(t)

	state.Filters.Search.SetText("git")
	if got := state.ViewState().Criteria.Search; got != "git" {
		t.Fatalf("search = %q", got)
	}
	if state.View().Count != 1 {
		t.Errorf("count after search = %d", state.View().Count)
	}

	state.SetSearch("")
	state.Filters.Department.SetCurrentOption(1) // Engineering
	if got := state.ViewState().Criteria.Department; got != "Engineering" {
		t.Fatalf("department = %q", got)
	}
	if state.View().Count != 2 {
		t.Errorf("count after facet = %d", state.View().Count)
	}
	if _, text := state.Filters.Department.GetCurrentOption(); text != "Engineering" {
		t.Errorf("drop-down shows %q", text)
	}

	state.Filters.Department.SetCurrentOption(0)
	if got := state.ViewState().Criteria.Department; got != "" {
		t.Errorf("All should clear the facet, got %q", got)
	}
}

func TestSetTabKeepsSelections(t *testing.T) {
	state := loadedState(t)
	state.SetFacet(pipeline.FacetAccount, "6100")
	state.SetSearch("i")
	if state.View().Count != 2 {
		t.Fatalf("count on tooling = %d", state.View().Count)
	}

	state.SetTab(types.SourcePS)
	vs := state.ViewState()
	if vs.Tab != types.SourcePS || vs.Criteria.Account != "6100" || vs.Criteria.Search != "i" {
		t.Fatalf("state = %+v", vs)
	}
	if state.Tabs.GetCurrentItem() != 1 {
		t.Errorf("tab list = %d", state.Tabs.GetCurrentItem())
	}
	if state.View().Count != 0 {
		t.Errorf("count on ps = %d", state.View().Count)
	}
	if index, _ := state.Filters.Account.GetCurrentOption(); index != 0 {
		t.Errorf("account drop-down should show All when the value is not on this tab, got %d", index)
	}

	state.SetTab(types.SourceTooling)
	if got := state.ViewState().Criteria.Account; got != "6100" {
		t.Fatalf("account after returning = %q", got)
	}
	if state.View().Count != 2 {
		t.Errorf("count back on tooling = %d", state.View().Count)
	}
	if _, text := state.Filters.Account.GetCurrentOption(); text != "6100" {
		t.Errorf("account drop-down shows %q", text)
	}
}

func TestToggleSortByColumn(t *testing.T) {
	state := loadedState(t)

	state.ToggleSort(0) // Vendor
	if got := state.ViewState().Sort; got != (pipeline.SortConfig{Key: pipeline.KeyVendor, Direction: pipeline.Desc}) {
		t.Fatalf("sort = %+v", got)
	}
	state.ToggleSort(0)
	if got := state.ViewState().Sort.Direction; got != pipeline.Asc {
		t.Fatalf("direction = %v", got)
	}
	got := vendorColumn(t, state)
	if !strings.Contains(got[0], "Datadog") || !strings.Contains(got[2], "GitHub") {
		t.Errorf("vendors = %v", got)
	}

	before := state.ViewState()
	state.ToggleSort(6) // Status has no sort key
	state.ToggleSort(99)
	if state.ViewState() != before {
		t.Errorf("unsortable columns changed the state")
	}
}

func TestGroupedToggle(t *testing.T) {
	state := loadedState(t)
	state.Filters.Grouped.SetChecked(true)
	state.SetGrouped(true)

	if state.View().Subtotals == nil {
		t.Fatal("expected subtotals")
	}
	if !strings.Contains(state.MainTable.GetTitle(), "2 departments") {
		t.Errorf("title = %q", state.MainTable.GetTitle())
	}
}

func TestHandleKey(t *testing.T) {
	state := loadedState(t)
	var focused tview.Primitive
	quit := false
	state.setFocus = func(p tview.Primitive) { focused = p }
	state.quit = func() { quit = true }

	key := func(r rune, focus tview.Primitive) *tcell.EventKey {
		return state.handleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone), focus)
	}

	if key('2', state.MainTable) != nil || state.ViewState().Tab != types.SourcePS {
		t.Errorf("'2' should select the second tab")
	}
	if key('g', state.MainTable) != nil || !state.ViewState().Grouped {
		t.Errorf("'g' should group")
	}
	if key('/', state.MainTable) != nil || focused != state.Filters.Search {
		t.Errorf("'/' should focus search")
	}
	if ev := key('q', state.Filters.Search); ev == nil || quit {
		t.Errorf("'q' in the search box should be typed, not quit")
	}
	if ev := state.handleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), state.Filters.Search); ev != nil || focused != state.MainTable {
		t.Errorf("Esc should leave the filters")
	}

	state.Tabs.SetCurrentItem(0)
	if key('j', state.Tabs) != nil || state.Tabs.GetCurrentItem() != 1 {
		t.Errorf("'j' should move down the tab list")
	}
	if key('k', state.Tabs) != nil || state.Tabs.GetCurrentItem() != 0 {
		t.Errorf("'k' should move up the tab list")
	}
	if ev := state.handleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), state.Tabs); ev != nil {
		t.Errorf("Enter on tabs should be consumed")
	}
	if state.ViewState().Tab != types.SourceTooling || focused != state.MainTable {
		t.Errorf("Enter should select the highlighted tab and focus the table")
	}

	if key('x', state.MainTable) == nil {
		t.Errorf("unbound keys should pass through")
	}
	if key('q', state.MainTable) != nil || !quit {
		t.Errorf("'q' should quit")
	}
}
