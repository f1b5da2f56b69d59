package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"bbcstats/internal/core"
	"bbcstats/internal/source"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultRange covers the date column and the seven channels.
const DefaultRange = "Data!A:H"

// Config selects the spreadsheet and the service account used to read it.
type Config struct {
	SpreadsheetID      string
	Range              string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	readRange     string
}

var _ source.Fetcher = (*Client)(nil)

// New creates a Sheets-backed source authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, cfg.Range), nil
}

// NewWithService wraps an existing service. An empty range means DefaultRange.
func NewWithService(svc *gsheet.Service, spreadsheetID, readRange string) *Client {
	if strings.TrimSpace(readRange) == "" {
		readRange = DefaultRange
	}
	return &Client{svc: svc, spreadsheetID: strings.TrimSpace(spreadsheetID), readRange: readRange}
}

// newSheetsService initializes a read-only Sheets service from inline JSON
// credentials, a credentials file, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Fetch reads the configured range once. API errors carrying an HTTP code
// become *source.StatusError so they surface like any other failed load.
func (c *Client) Fetch(ctx context.Context) (core.Dataset, error) {
	if c.svc == nil {
		return core.Dataset{}, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code != 0 {
			slog.WarnContext(ctx, "Sheets read failed", "range", c.readRange, "status_code", gerr.Code)
			return core.Dataset{}, &source.StatusError{Code: gerr.Code, Resource: sheetName(c.readRange)}
		}
		return core.Dataset{}, fmt.Errorf("read range %s: %w", c.readRange, err)
	}
	ds, err := parseDataset(resp.Values)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("parse range %s: %w", c.readRange, err)
	}
	slog.DebugContext(ctx, "Sheet data loaded", "range", c.readRange, "entries", ds.Len())
	return ds, nil
}

// sheetName strips the cell reference from an A1 range.
func sheetName(rng string) string {
	name, _, _ := strings.Cut(rng, "!")
	return strings.Trim(name, "'")
}
