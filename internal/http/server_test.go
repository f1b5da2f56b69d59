package http

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bbcstats/internal/cache"
	"bbcstats/internal/chart"
	"bbcstats/internal/core"
	"bbcstats/internal/loader"
	applog "bbcstats/internal/log"
	"bbcstats/internal/source"
	"bbcstats/internal/source/memory"
	"bbcstats/internal/table"
	"bbcstats/web"
)

type failingChart struct{}

func (failingChart) Render(chart.Config) (template.HTML, error) { return "", errors.New("boom") }
func (failingChart) Assets() []string                             { return nil }

type serverOpts struct {
	result    loader.Result
	charts    chart.Renderer
	perMinute int
}

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{
		Component: applog.ComponentApp,
		Handler:   slog.NewTextHandler(&bytes.Buffer{}, nil),
	})
}

func newTestServer(t *testing.T, o serverOpts) *Server {
	t.Helper()

	deps := Deps{Logger: quietLogger(), Result: o.result, Charts: o.charts}
	if o.result.OK() {
		renderer, err := table.NewRenderer(web.TemplatesFS, core.DefaultColumns)
		require.NoError(t, err)
		bodies := cache.NewLRUCache[template.HTML](16, time.Minute)
		deps.Tables = table.NewController(o.result.Dataset(), renderer, bodies)
		deps.BodyStats = bodies.Stats
	}

	srv, err := NewServer(Config{Addr: ":0", RequestsPerMinute: o.perMinute}, deps)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func loaded() serverOpts {
	return serverOpts{result: loader.Success(memory.Sample()), charts: chart.NewECharts()}
}

func failed() serverOpts {
	err := &source.StatusError{Code: http.StatusNotFound, Resource: "data.json"}
	return serverOpts{result: loader.Failure(err), charts: chart.NewECharts()}
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestIndexRendersTableAndChart(t *testing.T) {
	srv := newTestServer(t, loaded())
	rr := get(t, srv, "/")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `id="tbHead"`)
	assert.Contains(t, body, `id="tbData"`)
	assert.Equal(t, 4*len(core.DefaultColumns), strings.Count(body, "<td>"))
	assert.Contains(t, body, `id="bbcChart"`)
	assert.Contains(t, body, chart.DefaultAssetsHost+"echarts.min.js")
	assert.NotContains(t, body, "Chart unavailable")

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rr.Header().Get("Content-Security-Policy"), "https://unpkg.com")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestIndexSortsWithoutScripts(t *testing.T) {
	srv := newTestServer(t, loaded())
	rr := get(t, srv, "/?sort=bbcone&state=")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()

	// bbcone: Jan 412, Feb 388, Mar 430, Apr 405
	feb := strings.Index(body, "February 2018")
	apr := strings.Index(body, "April 2018")
	jan := strings.Index(body, "January 2018")
	mar := strings.Index(body, "March 2018")
	assert.True(t, feb < apr && apr < jan && jan < mar, "rows not ascending by bbcone")
	assert.Contains(t, body, `<span class="asc"></span>`)
}

func TestIndexFallsBackOnBadInput(t *testing.T) {
	srv := newTestServer(t, loaded())

	for _, target := range []string{"/?sort=bbcalba", "/?sort=bbcone&state=sideways"} {
		rr := get(t, srv, target)
		assert.Equal(t, http.StatusOK, rr.Code, target)
		assert.Contains(t, rr.Body.String(), `id="tbData"`, target)
	}
}

func TestIndexShowsLoadFailure(t *testing.T) {
	srv := newTestServer(t, failed())
	rr := get(t, srv, "/")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "404 when loading data.json")
	assert.NotContains(t, body, `id="tbData"`)
	assert.NotContains(t, body, "echarts.min.js")
}

func TestIndexChartFailureShowsPlaceholder(t *testing.T) {
	o := loaded()
	o.charts = failingChart{}
	srv := newTestServer(t, o)
	rr := get(t, srv, "/")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Chart unavailable")
	assert.Contains(t, rr.Body.String(), `id="tbData"`)
}

func TestUnknownPathNotFound(t *testing.T) {
	srv := newTestServer(t, loaded())
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/nope").Code)
}

func TestTablePartial(t *testing.T) {
	srv := newTestServer(t, loaded())
	rr := get(t, srv, "/ui/table?sort=bbcone&state=")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.HasPrefix(body, `<tbody id="tbData">`))
	assert.Contains(t, body, `hx-swap-oob="true"`)
	assert.Equal(t, 4*len(core.DefaultColumns), strings.Count(body, "<td>"))

	trigger := rr.Header().Get("HX-Trigger")
	assert.JSONEq(t, `{"table:sorted":{"key":"bbcone","direction":"asc"}}`, trigger)
}

func TestTablePartialFollowsState(t *testing.T) {
	srv := newTestServer(t, loaded())

	_, next, err := core.NewHeaderState(core.DefaultColumns).Activate(core.KeyBBCOne)
	require.NoError(t, err)

	rr := get(t, srv, "/ui/table?sort=bbcone&state="+next.Encode())
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("HX-Trigger"), `"direction":"desc"`)

	body := rr.Body.String()
	assert.Less(t, strings.Index(body, "March 2018"), strings.Index(body, "February 2018"))
}

func TestTablePartialErrors(t *testing.T) {
	tests := []struct {
		name   string
		opts   serverOpts
		target string
		want   int
		body   string
	}{
		{"missing key", loaded(), "/ui/table", http.StatusBadRequest, "missing sort key"},
		{"unknown key", loaded(), "/ui/table?sort=bbcalba", http.StatusBadRequest, "unknown column"},
		{"load failed", failed(), "/ui/table?sort=bbcone", http.StatusServiceUnavailable, "404 when loading data.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := get(t, newTestServer(t, tt.opts), tt.target)
			assert.Equal(t, tt.want, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.body)
		})
	}
}

func TestTablePartialRejectsPost(t *testing.T) {
	srv := newTestServer(t, loaded())
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/ui/table?sort=bbcone", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET, HEAD", rr.Header().Get("Allow"))
}

func TestChartAPI(t *testing.T) {
	srv := newTestServer(t, loaded())

	// a prior sort must not change the chart
	require.Equal(t, http.StatusOK, get(t, srv, "/ui/table?sort=cbbc").Code)

	rr := get(t, srv, "/api/chart")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var cfg chart.Config
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cfg))
	assert.Equal(t, []string{"2018-01", "2018-02", "2018-03", "2018-04"}, cfg.XAxis.Categories)
	require.Len(t, cfg.Series, 7)
	assert.Equal(t, "bbcfour", cfg.Series[0].Name)
	for _, s := range cfg.Series {
		assert.Len(t, s.Data, 4, s.Name)
	}
}

func TestDataJSONKeepsLoadOrder(t *testing.T) {
	srv := newTestServer(t, loaded())
	rr := get(t, srv, "/data.json")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.HasPrefix(body, `{"2018-01":`))
	assert.Less(t, strings.Index(body, `"2018-03"`), strings.Index(body, `"2018-04"`))
}

func TestJSONEndpointsUnavailableWithoutData(t *testing.T) {
	srv := newTestServer(t, failed())
	for _, target := range []string{"/api/chart", "/data.json"} {
		rr := get(t, srv, target)
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code, target)
		assert.JSONEq(t, `{"error":"404 when loading data.json"}`, rr.Body.String(), target)
	}
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, loaded())
	assert.Equal(t, http.StatusOK, get(t, srv, "/healthz").Code)

	rr := get(t, srv, "/readyz")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ready"`)
	assert.Contains(t, rr.Body.String(), `"body_cache"`)

	down := newTestServer(t, failed())
	assert.Equal(t, http.StatusOK, get(t, down, "/healthz").Code)
	rr = get(t, down, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "404 when loading data.json")
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t, loaded())
	rr := get(t, srv, "/static/app.css")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "public, max-age=3600", rr.Header().Get("Cache-Control"))
}

func TestRateLimitSparesTablePartials(t *testing.T) {
	o := loaded()
	o.perMinute = 1
	srv := newTestServer(t, o)

	codes := map[int]int{}
	for range 130 {
		codes[get(t, srv, "/ui/table?sort=bbcone").Code]++
	}
	assert.Equal(t, map[int]int{http.StatusOK: 130}, codes)

	assert.Equal(t, http.StatusOK, get(t, srv, "/api/chart").Code)
	limited := get(t, srv, "/api/chart")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, get(t, srv, "/").Code)
	assert.Equal(t, http.StatusOK, get(t, srv, "/").Code)
}

func TestNewServerRequiresController(t *testing.T) {
	_, err := NewServer(Config{Addr: ":0"}, Deps{Result: loader.Success(memory.Sample())})
	assert.Error(t, err)
}

func TestShutdownIsIdempotent(t *testing.T) {
	srv := newTestServer(t, loaded())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, srv.Shutdown(ctx))
}
