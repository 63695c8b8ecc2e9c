// Package source loads item datasets from files, HTTP endpoints, S3 objects
// and AWS Cost Explorer. Every loader fetches once and returns the complete
// collection or an error.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jdlms/fpa-forecast/internal/types"
)

var (
	// ErrUnsupportedScheme is returned by Open for URIs it has no driver for
	ErrUnsupportedScheme = errors.New("unsupported dataset scheme")
	// ErrStatus is returned when an HTTP dataset answers with a non-200 status
	ErrStatus = errors.New("unexpected HTTP status")
)

// Loader fetches a dataset
type Loader interface {
	Load(ctx context.Context) ([]types.Item, error)
	Name() string
}

// Options configures every driver Open can build
type Options struct {
	// RecordsPath is a JSONPath locating the item array inside the document.
	// Empty means the document itself is the array.
	RecordsPath    string
	RequestTimeout time.Duration
	HTTPClient     *http.Client
	S3             S3Options
	CostExplorer   CostExplorerOptions
}

// DefaultRequestTimeout bounds a single fetch
const DefaultRequestTimeout = 30 * time.Second

func (o Options) timeout() time.Duration {
	if o.RequestTimeout <= 0 {
		return DefaultRequestTimeout
	}
	return o.RequestTimeout
}

// Open returns the loader for uri. Supported forms:
//
//	data/forecast.json, file:///abs/path.json
//	http://host/data/forecast.json, https://...
//	s3://bucket/key.json
//	aws-ce://tooling?department=Engineering&account=...
func Open(ctx context.Context, uri string, opts Options) (Loader, error) {
	if uri == "" {
		return nil, fmt.Errorf("empty dataset uri")
	}
	if !strings.Contains(uri, "://") {
		return &FileLoader{Path: uri, RecordsPath: opts.RecordsPath}, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse dataset uri %q: %w", uri, err)
	}

	switch u.Scheme {
	case "file":
		return &FileLoader{Path: u.Path, RecordsPath: opts.RecordsPath}, nil
	case "http", "https":
		client := opts.HTTPClient
		if client == nil {
			client = &http.Client{Timeout: opts.timeout()}
		}
		return &HTTPLoader{URL: uri, Client: client, RecordsPath: opts.RecordsPath}, nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("s3 uri %q needs a bucket and a key", uri)
		}
		return NewS3Loader(ctx, u.Host, key, opts)
	case "aws-ce":
		return NewCostExplorerLoader(ctx, u, opts)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
}
