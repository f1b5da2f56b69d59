package backend

import (
	"context"

	"bbcstats/internal/source"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the fetcher and an optional cleanup function
type BackendResult struct {
	Fetcher source.Fetcher
	Cleanup CleanupFunc
}

// Factory creates dataset sources based on configuration
type Factory interface {
	// CreateBackend creates a fetcher for the configured backend
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// File backend
	DataFile string

	// HTTP backend
	DataURL string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetRange         string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
}

// BackendType represents the type of backend
type BackendType string

const (
	FileBackend   BackendType = "file"
	HTTPBackend   BackendType = "http"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case FileBackend, HTTPBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
