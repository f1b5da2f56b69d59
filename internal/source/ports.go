// Package source defines where the broadcast dataset comes from.
package source

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"bbcstats/internal/core"
)

//go:generate mockgen -destination=mocks/mock_fetcher.go -package=mocks bbcstats/internal/source Fetcher

// Fetcher retrieves the dataset from its configured location. Implementations
// make a single attempt; callers decide what a failure means.
type Fetcher interface {
	Fetch(ctx context.Context) (core.Dataset, error)
}

// StatusError reports a retrieval that completed with a non-OK status.
type StatusError struct {
	Code     int
	Resource string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d when loading %s", e.Code, e.Resource)
}

// ResourceName returns the last path element of a file path or URL, which is
// how failures name the resource ("data.json").
func ResourceName(location string) string {
	location = strings.TrimSpace(location)
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && u.Host != "" {
		location = u.Path
	}
	location = strings.ReplaceAll(location, "\\", "/")
	name := path.Base(location)
	if name == "." || name == "/" || name == "" {
		return "data.json"
	}
	return name
}
