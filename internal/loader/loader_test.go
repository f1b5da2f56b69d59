package loader

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"bbcstats/internal/core"
	"bbcstats/internal/source"
	"bbcstats/internal/source/mocks"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		ds         core.Dataset
		err        error
		wantOK     bool
		wantReason string
	}{
		{
			name:   "success",
			ds:     core.NewDataset(core.Entry{Key: "2018-01", Record: core.DayRecord{BBCOne: 5}}),
			wantOK: true,
		},
		{
			name:       "not found",
			err:        &source.StatusError{Code: 404, Resource: "data.json"},
			wantReason: "404 when loading data.json",
		},
		{
			name:       "wrapped status",
			err:        fmt.Errorf("fetch: %w", &source.StatusError{Code: 500, Resource: "data.json"}),
			wantReason: "500 when loading data.json",
		},
		{
			name:       "decode failure",
			err:        errors.New("decode dataset: unexpected end"),
			wantReason: "decode dataset: unexpected end",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			fetcher := mocks.NewMockFetcher(ctrl)
			fetcher.EXPECT().Fetch(gomock.Any()).Return(tt.ds, tt.err).Times(1)

			res := Load(context.Background(), fetcher)

			assert.Equal(t, tt.wantOK, res.OK())
			assert.Equal(t, tt.wantReason, res.Reason())
			if tt.wantOK {
				require.NoError(t, res.Err())
				assert.Equal(t, tt.ds.Keys(), res.Dataset().Keys())
			} else {
				require.Error(t, res.Err())
				assert.Zero(t, res.Dataset().Len())
			}
		})
	}
}

func TestLoadPassesContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "marker")
	fetcher.EXPECT().
		Fetch(gomock.Any()).
		DoAndReturn(func(got context.Context) (core.Dataset, error) {
			assert.Equal(t, "marker", got.Value(ctxKey{}))
			return core.NewDataset(), nil
		})

	res := Load(ctx, fetcher)
	assert.True(t, res.OK())
}

func TestSuccessAndFailure(t *testing.T) {
	assert.True(t, Success(core.NewDataset()).OK())

	res := Failure(&source.StatusError{Code: 403, Resource: "data.json"})
	assert.False(t, res.OK())
	assert.Equal(t, "403 when loading data.json", res.Reason())
}

func TestLoadAddsNoDeadline(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any()).DoAndReturn(func(ctx context.Context) (core.Dataset, error) {
		_, ok := ctx.Deadline()
		assert.False(t, ok)
		return core.NewDataset(), nil
	})

	assert.True(t, Load(context.Background(), fetcher).OK())
}
