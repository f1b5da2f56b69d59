// Package file reads the dataset from a JSON file on local disk.
package file

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"bbcstats/internal/core"
	"bbcstats/internal/source"
)

var _ source.Fetcher = (*Source)(nil)

// Source serves the data file the way a static file server would: a missing
// file is a 404, any other read failure a 500.
type Source struct {
	path string
}

func New(path string) *Source {
	return &Source{path: path}
}

// Fetch reads and decodes the file.
func (s *Source) Fetch(ctx context.Context) (core.Dataset, error) {
	resource := source.ResourceName(s.path)
	data, err := os.ReadFile(s.path)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, fs.ErrNotExist) {
			code = http.StatusNotFound
		}
		slog.WarnContext(ctx, "Data file read failed", "path", s.path, "error", err)
		return core.Dataset{}, &source.StatusError{Code: code, Resource: resource}
	}
	ds, err := core.DecodeDataset(data)
	if err != nil {
		return core.Dataset{}, err
	}
	slog.DebugContext(ctx, "Data file loaded", "path", s.path, "entries", ds.Len())
	return ds, nil
}
