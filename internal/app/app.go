package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jdlms/fpa-forecast/internal/cache"
	"github.com/jdlms/fpa-forecast/internal/pipeline"
	"github.com/jdlms/fpa-forecast/internal/source"
	"github.com/jdlms/fpa-forecast/internal/ui"
	"github.com/rivo/tview"
)

// App relays preload progress onto the UI goroutine
type App struct {
	state *AppState
}

// Progress implements cache.Populator
func (a *App) Progress(done, total int) {
	a.state.App.QueueUpdateDraw(func() {
		a.state.loadProgress(done, total)
	})
}

// Loaded implements cache.Populator
func (a *App) Loaded(count int, err error) {
	a.state.App.QueueUpdateDraw(func() {
		a.state.loadFinished(count, err)
	})
}

func (s *AppState) loadProgress(done, total int) {
	s.status = fmt.Sprintf("Loading data... (%d/%d complete)", done, total)
	s.Header.SetText(ui.Loading(s.status))
}

func (s *AppState) loadFinished(count int, err error) {
	if err != nil {
		s.loadErr = err
	} else {
		s.loadErr = nil
		s.loadedAt = s.now()
		slog.Info("records ready", "count", count, "variant", s.Store.Variant())
	}
	s.Render()
}

// CreateApp initializes the application state and starts loading the
// datasets in the background
func CreateApp(ctx context.Context, store *cache.Store, initial pipeline.ViewState, loaders []source.Loader) *AppState {
	ui.SetupRosePineTheme()

	state := newState(store, initial)

	// Create application
	state.App = tview.NewApplication().
		SetRoot(state.Grid, true).
		SetFocus(state.Tabs)

	// Setup key bindings
	SetupKeyBindings(state)

	// Preload all data concurrently on startup
	populator := &App{state: state}
	go func() {
		if err := cache.PreloadAllData(ctx, store, loaders, populator); err != nil {
			slog.Warn("continuing with empty records", "error", err)
		}
	}()

	return state
}
