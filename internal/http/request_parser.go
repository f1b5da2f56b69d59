// Package http provides HTTP server and handler implementations.
//
// This file implements parsing of the sort query shared by the full page
// and the table partial.

package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"bbcstats/internal/core"
)

const (
	paramSort  = "sort"
	paramState = "state"
)

// errMissingSortKey is returned by the partial when no column was named.
var errMissingSortKey = errors.New("missing sort key")

// SortParams is a parsed header activation request.
type SortParams struct {
	Key   string
	State core.HeaderState

	// StateErr is set when the state parameter could not be parsed and
	// State fell back to the initial header state.
	StateErr error
}

// ParseSortParams reads the sort key and the encoded header state. A
// malformed state falls back to the initial state rather than failing the
// request, since it only carries the pending directions.
func ParseSortParams(query url.Values, cols core.Columns) SortParams {
	params := SortParams{
		Key:   sanitizeInput(query.Get(paramSort)),
		State: core.NewHeaderState(cols),
	}

	raw := sanitizeInput(query.Get(paramState))
	state, err := core.ParseHeaderState(cols, raw)
	if err != nil {
		params.StateErr = err
		return params
	}
	params.State = state
	return params
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequireGET is a convenience function for read-only handlers.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}
