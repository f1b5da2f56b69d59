package cache

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCacheGetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	_, ok := c.Get("bbcone:asc")
	assert.False(t, ok)

	c.Set("bbcone:asc", "<tr>a</tr>")
	v, ok := c.Get("bbcone:asc")
	require.True(t, ok)
	assert.Equal(t, "<tr>a</tr>", v)

	stats := c.Stats()
	assert.Equal(t, Stats{Size: 1, Hits: 1, Misses: 1}, stats)
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Size())
}

func TestLRUCacheOverwrite(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("a", 2)
	v, _ := c.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Size())
}

func TestLRUCacheExpiry(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)
	now := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	c.Set("b", 2)
	now = now.Add(2 * time.Minute)
	c.Set("c", 3)

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 1, c.Size())
}

func TestLRUCacheDelete(t *testing.T) {
	c := NewLRUCache[int](0, time.Minute)
	c.Set("a", 1)
	c.Delete("a")
	c.Delete("missing")
	assert.Zero(t, c.Size())
}

func TestManager(t *testing.T) {
	c := NewLRUCache[int](4, time.Millisecond)
	m := NewManager()
	m.Register(c)

	c.Set("a", 1)
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 1, m.CleanNow())

	m.StartCleanup(time.Millisecond)
	m.StartCleanup(time.Millisecond)
	m.Stop()
	m.Stop()
}

func TestManagerCleanupLogsAsCache(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer slog.SetDefault(prev)

	c := NewLRUCache[int](4, time.Millisecond)
	m := NewManager()
	m.Register(c)

	c.Set("a", 1)
	time.Sleep(5 * time.Millisecond)
	m.StartCleanup(time.Millisecond)
	require.Eventually(t, func() bool { return c.Size() == 0 }, time.Second, time.Millisecond)
	m.Stop()

	out := buf.String()
	assert.Contains(t, out, "component=cache")
	assert.Contains(t, out, "removed=1")
}

func TestManagerStopWithoutStart(t *testing.T) {
	done := make(chan struct{})
	go func() {
		NewManager().Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without a running cleanup")
	}
}
