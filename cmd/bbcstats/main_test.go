package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bbcstats/internal/config"
	applog "bbcstats/internal/log"
)

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{
		Component: applog.ComponentApp,
		Handler:   slog.NewTextHandler(&bytes.Buffer{}, nil),
	})
}

func TestLoadDatasetFromHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"2018-01":{"bbcone":5},"2018-02":{"bbcone":3}}`))
	}))
	defer srv.Close()

	cfg := &config.Config{DataBackend: "http", DataURL: srv.URL + "/data.json"}
	res, err := loadDataset(context.Background(), cfg, quietLogger())

	require.NoError(t, err)
	require.True(t, res.OK(), res.Reason())
	assert.Equal(t, []string{"2018-01", "2018-02"}, res.Dataset().Keys())
}

func TestLoadDatasetBoundOnlyByCallerContext(t *testing.T) {
	arrived := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(arrived)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan string, 1)
	go func() {
		cfg := &config.Config{DataBackend: "http", DataURL: srv.URL + "/data.json"}
		res, err := loadDataset(ctx, cfg, quietLogger())
		if err != nil {
			done <- err.Error()
			return
		}
		done <- res.Reason()
	}()

	<-arrived
	cancel()
	reason := <-done
	assert.Contains(t, reason, "context canceled")
}

func TestLoadDatasetRejectsUnknownBackend(t *testing.T) {
	_, err := loadDataset(context.Background(), &config.Config{DataBackend: "ftp"}, quietLogger())
	assert.Error(t, err)
}
