package source

import (
	"context"
	"fmt"
	"os"

	"github.com/jdlms/fpa-forecast/internal/types"
)

// FileLoader reads a dataset from the local filesystem
type FileLoader struct {
	Path        string
	RecordsPath string
}

func (l *FileLoader) Name() string { return l.Path }

func (l *FileLoader) Load(ctx context.Context) ([]types.Item, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	items, err := decodeContext(ctx, f, l.RecordsPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.Path, err)
	}
	return items, nil
}
