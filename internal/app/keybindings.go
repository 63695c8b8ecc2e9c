package app

import (
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"github.com/jdlms/fpa-forecast/internal/types"
	"github.com/rivo/tview"
)

// SetupKeyBindings configures keyboard input handling
func SetupKeyBindings(state *AppState) {
	state.setFocus = func(p tview.Primitive) { state.App.SetFocus(p) }
	state.quit = state.App.Stop
	state.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		return state.handleKey(event, state.App.GetFocus())
	})
}

// inFilters reports whether focus is somewhere in the filter form, including
// an open drop-down list
func (s *AppState) inFilters(focus tview.Primitive) bool {
	f := s.Filters
	switch focus {
	case f.Form, f.Search, f.Department, f.Account, f.Subdepartment, f.Grouped:
		return true
	}
	return f.Form.HasFocus()
}

func (s *AppState) handleKey(event *tcell.EventKey, focus tview.Primitive) *tcell.EventKey {
	// Typing in the filter form goes to the widgets; Esc leaves it
	if s.inFilters(focus) {
		if event.Key() == tcell.KeyEscape {
			s.setFocus(s.MainTable)
			return nil
		}
		return event
	}

	switch event.Key() {
	case tcell.KeyTab:
		if focus == s.Tabs {
			s.setFocus(s.MainTable)
		} else {
			s.setFocus(s.Filters.Form)
		}
		return nil
	case tcell.KeyEscape:
		s.setFocus(s.Tabs)
		return nil
	case tcell.KeyEnter:
		if focus == s.Tabs {
			current := s.Tabs.GetCurrentItem()
			if current < len(types.Sources()) {
				slog.Debug("enter pressed on tab", "tab", types.Sources()[current])
				s.SetTab(types.Sources()[current])
			}
			s.setFocus(s.MainTable)
			return nil
		}
	}

	switch event.Rune() {
	case 'q':
		s.quit()
		return nil
	case '1', '2', '3':
		s.SetTab(types.Sources()[event.Rune()-'1'])
		return nil
	case '/':
		s.setFocus(s.Filters.Search)
		return nil
	case 'g':
		s.SetGrouped(!s.view.Grouped)
		return nil
	case 's':
		_, col := s.MainTable.GetSelection()
		s.ToggleSort(col)
		return nil
	case 'j':
		// Move down in tabs
		if focus == s.Tabs {
			currentIndex := s.Tabs.GetCurrentItem()
			if currentIndex < s.Tabs.GetItemCount()-1 {
				s.Tabs.SetCurrentItem(currentIndex + 1)
			}
			return nil
		}
	case 'k':
		// Move up in tabs
		if focus == s.Tabs {
			currentIndex := s.Tabs.GetCurrentItem()
			if currentIndex > 0 {
				s.Tabs.SetCurrentItem(currentIndex - 1)
			}
			return nil
		}
	}

	return event
}
