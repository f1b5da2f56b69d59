package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *fakeClock) {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour})
	t.Cleanup(rl.Stop)
	clock := &fakeClock{t: time.Date(2018, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl.now = clock.now
	return rl, clock
}

func TestAllowWithinWindow(t *testing.T) {
	rl, clock := newTestLimiter(t, 2)

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"), "clients are counted separately")

	clock.advance(window)
	assert.True(t, rl.Allow("1.1.1.1"), "a new window resets the count")

	m := rl.GetMetrics()
	assert.Equal(t, int64(1), m.Rejected)
	assert.Equal(t, int64(2), m.ClientCount)
}

func TestWindowDoesNotSlideOnTraffic(t *testing.T) {
	rl, clock := newTestLimiter(t, 1)

	require.True(t, rl.Allow("ip"))
	clock.advance(40 * time.Second)
	require.False(t, rl.Allow("ip"))
	clock.advance(20 * time.Second)
	assert.True(t, rl.Allow("ip"))
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, clock := newTestLimiter(t, 5)

	rl.Allow("old")
	clock.advance(11 * window)
	rl.Allow("fresh")
	rl.cleanupStaleEntries()

	assert.Equal(t, int64(1), rl.GetMetrics().ClientCount)
}

func TestNewLimiterDefaults(t *testing.T) {
	rl := NewLimiter(Config{})
	defer rl.Stop()

	assert.Equal(t, DefaultConfig().RequestsPerMinute, rl.requestsPerMinute)
	assert.Equal(t, DefaultConfig().CleanupInterval, rl.cleanupInterval)
	rl.Stop()
}

func TestMiddlewarePrefixes(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	ip := func(*http.Request) string { return "9.9.9.9" }
	h := rl.Middleware(ip, nil, "/ui/", "/api/")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusNoContent, serve("/ui/table").Code)
	limited := serve("/api/chart")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, serve("/").Code, "unlisted paths are never limited")
	assert.Equal(t, http.StatusNoContent, serve("/static/app.css").Code)
}

func TestMiddlewareOnLimit(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	called := false
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}
	h := rl.Middleware(func(*http.Request) string { return "ip" }, onLimit)(http.NotFoundHandler())

	for range 2 {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	}
	assert.True(t, called)
}
