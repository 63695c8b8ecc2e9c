package source

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jdlms/fpa-forecast/internal/types"
)

// HTTPLoader fetches a dataset with a single GET
type HTTPLoader struct {
	URL         string
	Client      *http.Client
	RecordsPath string
}

func (l *HTTPLoader) Name() string { return l.URL }

func (l *HTTPLoader) Load(ctx context.Context) ([]types.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", l.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %w: %s", l.URL, ErrStatus, resp.Status)
	}

	items, err := decodeContext(ctx, resp.Body, l.RecordsPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.URL, err)
	}
	return items, nil
}
