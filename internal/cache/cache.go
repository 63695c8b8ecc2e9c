package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jdlms/fpa-forecast/internal/source"
	"github.com/jdlms/fpa-forecast/internal/types"
	"golang.org/x/sync/errgroup"
)

// DefaultLoadTimeout bounds the whole preload
const DefaultLoadTimeout = 2 * time.Minute

// Store holds the loaded records. It starts empty, is replaced wholesale on
// load and is never patched.
type Store struct {
	mu      sync.RWMutex
	items   []types.Item
	loaded  bool
	variant types.Variant
}

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{variant: types.VariantVendor}
}

// Replace swaps in a new collection
func (s *Store) Replace(items []types.Item) {
	cloned := slices.Clone(items)
	variant := types.DetectVariant(cloned)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = cloned
	s.loaded = true
	s.variant = variant
}

// Clear drops the collection, leaving an empty unloaded store
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.loaded = false
	s.variant = types.VariantVendor
}

// Items returns a copy of the collection
func (s *Store) Items() []types.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Loaded reports whether a load has completed successfully
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Variant is the record shape detected at the last Replace
func (s *Store) Variant() types.Variant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.variant
}

// Populator is told about load progress and the final outcome
type Populator interface {
	Progress(done, total int)
	Loaded(count int, err error)
}

// PreloadAllData fetches every dataset concurrently and replaces the store
// with their concatenation, in loader order. If any dataset fails the store
// is left untouched and the error is returned; nothing is retried.
func PreloadAllData(ctx context.Context, store *Store, loaders []source.Loader, populator Populator) error {
	slog.Info("starting concurrent data preload", "datasets", len(loaders))

	if len(loaders) == 0 {
		err := errors.New("no datasets configured")
		slog.Error("data preload failed", "error", err)
		populator.Loaded(0, err)
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultLoadTimeout)
	defer cancel()

	type result struct {
		index int
		items []types.Item
	}
	results := make(chan result, len(loaders))

	g, gctx := errgroup.WithContext(ctx)
	for i, loader := range loaders {
		g.Go(func() error {
			slog.Info("fetching dataset", "dataset", loader.Name())
			items, err := loader.Load(gctx)
			if err != nil {
				return fmt.Errorf("%s: %w", loader.Name(), err)
			}
			results <- result{index: i, items: items}
			return nil
		})
	}

	errc := make(chan error, 1)
	go func() {
		errc <- g.Wait()
		close(results)
	}()

	parts := make([][]types.Item, len(loaders))
	loadedCount := 0
	for r := range results {
		parts[r.index] = r.items
		loadedCount++
		slog.Info("dataset loaded", "dataset", loaders[r.index].Name(), "records", len(r.items), "done", loadedCount, "total", len(loaders))
		populator.Progress(loadedCount, len(loaders))
	}

	if err := <-errc; err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("data loading timed out after %s: %w", DefaultLoadTimeout, err)
		}
		slog.Error("data preload failed, records stay empty", "error", err)
		populator.Loaded(0, err)
		return err
	}

	merged := slices.Concat(parts...)
	warnDuplicateIDs(merged)
	store.Replace(merged)

	slog.Info("all data preloaded successfully", "records", len(merged))
	populator.Loaded(len(merged), nil)
	return nil
}

func warnDuplicateIDs(items []types.Item) {
	seen := make(map[int]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			slog.Warn("duplicate record id", "id", item.ID, "vendor", item.Vendor)
			continue
		}
		seen[item.ID] = struct{}{}
	}
}
