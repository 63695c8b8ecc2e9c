package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	"github.com/jdlms/fpa-forecast/internal/types"
)

// Decode reads a JSON document and returns the items it holds. With an empty
// recordsPath the document must be an array of items; otherwise the path is
// evaluated against the document and must yield that array.
func Decode(r io.Reader, recordsPath string) ([]types.Item, error) {
	if recordsPath == "" {
		var items []types.Item
		if err := json.NewDecoder(r).Decode(&items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
		return items, nil
	}

	var doc interface{}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	selected, err := jsonpath.Get(recordsPath, doc)
	if err != nil {
		return nil, fmt.Errorf("records path %q: %w", recordsPath, err)
	}

	raw, err := json.Marshal(selected)
	if err != nil {
		return nil, fmt.Errorf("records path %q: %w", recordsPath, err)
	}
	var items []types.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("records path %q does not hold an item array: %w", recordsPath, err)
	}
	return items, nil
}

// decodeContext decodes r unless ctx is already done
func decodeContext(ctx context.Context, r io.Reader, recordsPath string) ([]types.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Decode(r, recordsPath)
}
