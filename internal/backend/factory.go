package backend

import (
	"context"
	"fmt"
	"log/slog"

	"bbcstats/internal/source/file"
	"bbcstats/internal/source/google"
	"bbcstats/internal/source/memory"
	"bbcstats/internal/source/remote"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case FileBackend:
		f.logger.Info("Initialized file backend", "path", config.DataFile)
		return &BackendResult{Fetcher: file.New(config.DataFile)}, nil
	case HTTPBackend:
		f.logger.Info("Initialized http backend", "url", config.DataURL)
		return &BackendResult{Fetcher: remote.New(config.DataURL)}, nil
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return &BackendResult{Fetcher: memory.New(memory.Sample())}, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := google.New(ctx, google.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		Range:              config.GoogleSheetRange,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "range", config.GoogleSheetRange)

	return &BackendResult{Fetcher: cli}, nil
}
