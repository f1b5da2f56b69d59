// Package loader runs the single startup fetch of the broadcast dataset.
package loader

import (
	"context"
	"errors"

	"bbcstats/internal/core"
	applog "bbcstats/internal/log"
	"bbcstats/internal/source"
)

// Result is the outcome of the startup load. It holds either the dataset or
// the reason the load failed, never both.
type Result struct {
	dataset core.Dataset
	reason  string
	err     error
}

// OK reports whether the dataset was loaded.
func (r Result) OK() bool {
	return r.err == nil
}

// Dataset returns the loaded dataset. It is empty when OK is false.
func (r Result) Dataset() core.Dataset {
	return r.dataset
}

// Reason is the human-readable failure message shown in place of the table.
func (r Result) Reason() string {
	return r.reason
}

// Err returns the underlying error, if any.
func (r Result) Err() error {
	return r.err
}

// Success wraps an already available dataset.
func Success(ds core.Dataset) Result {
	return Result{dataset: ds}
}

// Failure builds a failed result from err.
func Failure(err error) Result {
	return Result{reason: reasonFor(err), err: err}
}

// Load makes exactly one attempt to fetch the dataset. Failures are logged and
// returned in the Result; they are not retried.
func Load(ctx context.Context, fetcher source.Fetcher) Result {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentLoader)

	ds, err := fetcher.Fetch(ctx)
	if err != nil {
		res := Failure(err)
		logger.ErrorContext(ctx, "Dataset load failed",
			applog.FieldOperation, applog.OpLoad,
			applog.FieldError, res.Reason())
		return res
	}

	logger.DebugContext(ctx, "Fetch succeeded",
		applog.FieldOperation, applog.OpLoad,
		applog.FieldRows, ds.Len())
	return Success(ds)
}

func reasonFor(err error) string {
	var se *source.StatusError
	if errors.As(err, &se) {
		return se.Error()
	}
	return err.Error()
}
