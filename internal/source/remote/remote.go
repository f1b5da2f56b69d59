// Package remote fetches the dataset over HTTP.
package remote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"bbcstats/internal/core"
	"bbcstats/internal/source"
)

var _ source.Fetcher = (*Source)(nil)

// Source performs one GET of a fixed URL per Fetch. There are no retries and
// no client-side timeout; the caller's context is the only bound.
type Source struct {
	url    string
	client *http.Client
}

// Option configures a Source.
type Option func(*Source)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) {
		if c != nil {
			s.client = c
		}
	}
}

func New(url string, opts ...Option) *Source {
	s := &Source{url: url, client: &http.Client{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch retrieves and decodes the document. A response outside 2xx becomes a
// *source.StatusError carrying the status code.
func (s *Source) Fetch(ctx context.Context) (core.Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("get %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		slog.WarnContext(ctx, "Data fetch returned non-OK status", "url", s.url, "status_code", resp.StatusCode)
		return core.Dataset{}, &source.StatusError{Code: resp.StatusCode, Resource: source.ResourceName(s.url)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("read %s: %w", s.url, err)
	}
	ds, err := core.DecodeDataset(body)
	if err != nil {
		return core.Dataset{}, err
	}
	slog.DebugContext(ctx, "Remote data loaded", "url", s.url, "entries", ds.Len())
	return ds, nil
}
