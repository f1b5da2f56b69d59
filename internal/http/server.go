package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/justinas/alice"

	"bbcstats/internal/cache"
	"bbcstats/internal/chart"
	"bbcstats/internal/core"
	"bbcstats/internal/loader"
	applog "bbcstats/internal/log"
	"bbcstats/internal/middleware/ratelimit"
	"bbcstats/internal/middleware/security"
	"bbcstats/internal/middleware/trace"
	"bbcstats/internal/table"
	appweb "bbcstats/web"
)

const (
	staticMaxAge = 3600

	pathChart   = "/api/chart"
	pathData    = "/data.json"
	pathHealth  = "/healthz"
	pathReady   = "/readyz"
	pathStatic  = "/static/"
	prefixAPI   = "/api/"
	pageTmpl    = "index.html"
	pagePattern = "templates/index.html"
)

// Config holds the listener settings.
type Config struct {
	Addr              string
	RequestsPerMinute int
}

// Deps are the collaborators the handlers read from. Tables may be nil
// when the startup load failed; Result then carries the reason.
type Deps struct {
	Logger *applog.Logger
	Result loader.Result
	Tables *table.Controller
	Charts chart.Renderer
	Caches *cache.Manager

	// BodyStats reports the rendered body cache for /readyz.
	BodyStats func() cache.Stats
}

type Server struct {
	http.Server
	page    *template.Template
	logger  *applog.Logger
	result  loader.Result
	tables  *table.Controller
	charts  chart.Renderer
	caches  *cache.Manager
	limiter *ratelimit.Limiter
	stats   func() cache.Stats
	started time.Time

	chartHTML func() (template.HTML, error)
	chartJSON func() ([]byte, error)

	shutdownOnce sync.Once
}

// pageData feeds index.html.
type pageData struct {
	ChartAssets []string
	Reason      string
	Head        template.HTML
	Body        template.HTML
	Chart       template.HTML
}

// NewServer configures routes, templates and the middleware chain,
// returning a ready-to-run server.
func NewServer(cfg Config, deps Deps) (*Server, error) {
	if deps.Result.OK() && deps.Tables == nil {
		return nil, errors.New("table controller is required when the dataset is loaded")
	}

	page, err := template.ParseFS(appweb.TemplatesFS, pagePattern)
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}

	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		page:    page,
		logger:  logger,
		result:  deps.Result,
		tables:  deps.Tables,
		charts:  deps.Charts,
		caches:  deps.Caches,
		stats:   deps.BodyStats,
		started: time.Now(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RequestsPerMinute}),
	}

	// The chart ignores sort state, so it is built once from the load order.
	s.chartHTML = sync.OnceValues(func() (template.HTML, error) {
		if s.charts == nil {
			return "", nil
		}
		return s.charts.Render(chart.Build(s.result.Dataset()))
	})
	s.chartJSON = sync.OnceValues(func() ([]byte, error) {
		return chart.Build(s.result.Dataset()).JSON()
	})

	mux := http.NewServeMux()

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	mux.Handle(pathStatic, security.StaticAssetMiddleware(staticMaxAge)(
		http.StripPrefix(pathStatic, http.FileServer(http.FS(static)))))

	mux.HandleFunc(table.PagePath, s.handleIndex)
	mux.HandleFunc(table.PartialPath, s.handleTable)
	mux.HandleFunc(pathChart, s.handleChart)
	mux.HandleFunc(pathData, s.handleData)
	mux.HandleFunc(pathHealth, s.handleHealth)
	mux.HandleFunc(pathReady, s.handleReady)

	detector := security.NewDetector()
	tracer := trace.NewMiddleware(detector.ExtractClientIP, detector.DetectSuspiciousRequest)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).
			WarnContext(r.Context(), "Rate limit exceeded", applog.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	}

	chain := alice.New(
		applog.Middleware(logger.WithComponent(applog.ComponentHTTP)),
		tracer.Middleware,
		headers.Middleware,
		s.limiter.Middleware(detector.ExtractClientIP, onLimit, prefixAPI),
	)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           chain.Then(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Shutdown stops the background goroutines and gracefully shuts down the
// listener. Only the first call has any effect.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		if s.caches != nil {
			s.caches.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// handleIndex renders the full page. A sort query lets the header links
// work without scripts.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != table.PagePath {
		NotFoundError("Page not found").Write(w)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentHTTP)

	var data pageData
	if s.charts != nil {
		data.ChartAssets = s.charts.Assets()
	}

	if !s.result.OK() {
		data.ChartAssets = nil
		data.Reason = s.result.Reason()
		s.renderPage(w, r, data)
		return
	}

	view, err := s.pageView(ctx, r.URL.Query())
	if err != nil {
		logger.ErrorContext(ctx, "Failed to render table", applog.FieldError, err)
		InternalServerError("Failed to render table").Write(w)
		return
	}
	data.Head, data.Body = view.Head, view.Body

	chartHTML, err := s.chartHTML()
	if err != nil {
		applog.FromContext(ctx).WithComponent(applog.ComponentChart).
			ErrorContext(ctx, "Failed to render chart", applog.FieldError, err)
	}
	data.Chart = chartHTML

	s.renderPage(w, r, data)
}

func (s *Server) pageView(ctx context.Context, query url.Values) (table.View, error) {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentTable)
	params := ParseSortParams(query, s.tables.Columns())
	if params.StateErr != nil {
		logger.WarnContext(ctx, "Ignoring malformed header state", applog.FieldError, params.StateErr)
	}
	if params.Key == "" {
		return s.tables.Initial(ctx)
	}

	view, err := s.tables.Activate(ctx, params.State, params.Key)
	if errors.Is(err, core.ErrUnknownColumn) {
		logger.WarnContext(ctx, "Ignoring unknown sort key", applog.FieldSortKey, params.Key)
		return s.tables.Initial(ctx)
	}
	return view, err
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, data pageData) {
	var buf bytes.Buffer
	if err := s.page.ExecuteTemplate(&buf, pageTmpl, data); err != nil {
		ctx := r.Context()
		applog.FromContext(ctx).WithComponent(applog.ComponentTemplate).
			ErrorContext(ctx, "Failed to execute page template", applog.FieldError, err)
		InternalServerError("Failed to render page").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// handleTable serves the sorted body partial plus the next header as an
// out-of-band swap.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	if !s.result.OK() {
		UnavailableError(s.result.Reason()).Write(w)
		return
	}

	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentTable)

	params := ParseSortParams(r.URL.Query(), s.tables.Columns())
	if params.Key == "" {
		BadRequestError(errMissingSortKey.Error()).Write(w)
		return
	}
	if params.StateErr != nil {
		logger.WarnContext(ctx, "Ignoring malformed header state", applog.FieldError, params.StateErr)
	}

	view, err := s.tables.Activate(ctx, params.State, params.Key)
	if err != nil {
		if errors.Is(err, core.ErrUnknownColumn) {
			BadRequestError(err.Error()).Write(w)
			return
		}
		applog.NewStructuredLogger(logger).LogError(ctx, "Failed to sort table", err,
			applog.ComponentTable, applog.OpSort, applog.NewFields().WithSort(params.Key, ""))
		InternalServerError("Failed to render table").Write(w)
		return
	}

	applied := view.Applied.String()
	applog.NewStructuredLogger(logger).LogTableSorted(ctx, view.Key, applied, view.Rows, view.Cached)

	NewHTMXResponse().
		TriggerTableSorted(view.Key, applied).
		BodyHTML(view.Body + view.HeadOOB).
		Write(w)
}

// handleChart serves the chart configuration for external consumers.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	if !s.result.OK() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": s.result.Reason()})
		return
	}

	body, err := s.chartJSON()
	if err != nil {
		ctx := r.Context()
		applog.FromContext(ctx).WithComponent(applog.ComponentChart).
			ErrorContext(ctx, "Failed to encode chart", applog.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to encode chart"})
		return
	}
	writeJSONBytes(w, http.StatusOK, body)
}

// handleData serves the dataset in load order.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	if !s.result.OK() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": s.result.Reason()})
		return
	}

	body, err := s.result.Dataset().MarshalJSON()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to encode dataset"})
		return
	}
	writeJSONBytes(w, http.StatusOK, body)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports ready only when the startup load succeeded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status, code := "ready", http.StatusOK
	checks := map[string]interface{}{}

	if s.result.OK() {
		checks["dataset"] = "ok"
		checks["rows"] = s.result.Dataset().Len()
	} else {
		checks["dataset"] = "failed: " + s.result.Reason()
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	if s.stats != nil {
		st := s.stats()
		checks["body_cache"] = map[string]interface{}{
			"size":   st.Size,
			"hits":   st.Hits,
			"misses": st.Misses,
		}
	}

	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}
