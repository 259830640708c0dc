package assistant

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	calls  atomic.Int32
	answer string
	err    error
	delay  time.Duration
}

func (s *stubCompleter) Complete(ctx context.Context, _ string) (string, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.answer, s.err
}

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := OpenCache(CacheConfig{InMemory: true, TTL: time.Hour})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestAnswerFromModel(t *testing.T) {
	stub := &stubCompleter{answer: "Use a sync.WaitGroup."}
	a := New(Options{Completer: stub, Model: "test-model"})

	res := a.Answer(context.Background(), "How do I wait for goroutines?")
	assert.Equal(t, "Use a sync.WaitGroup.", res.Answer)
	assert.Equal(t, "test-model", res.ModelUsed)
	assert.GreaterOrEqual(t, res.ResponseTime, 0.0)
}

func TestAnswerFallsBack(t *testing.T) {
	cases := map[string]Options{
		"no completer":   {Model: "m"},
		"upstream error": {Completer: &stubCompleter{err: errors.New("503")}, Model: "m"},
		"empty answer":   {Completer: &stubCompleter{answer: "  "}, Model: "m"},
		"timeout": {
			Completer: &stubCompleter{answer: "late", delay: time.Second},
			Model:     "m",
			Timeout:   20 * time.Millisecond,
		},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			res := New(opts).Answer(context.Background(), "anything")
			assert.Equal(t, FallbackAnswer, res.Answer)
			assert.Equal(t, FallbackModel, res.ModelUsed)
		})
	}
}

func TestAnswerUsesCache(t *testing.T) {
	stub := &stubCompleter{answer: "cached answer"}
	a := New(Options{Completer: stub, Cache: openTestCache(t), Model: "m"})
	ctx := context.Background()

	first := a.Answer(ctx, "What is a slice?")
	second := a.Answer(ctx, "  what IS a   slice? ")
	assert.Equal(t, "cached answer", first.Answer)
	assert.Equal(t, "cached answer", second.Answer)
	assert.EqualValues(t, 1, stub.calls.Load())
}

func TestFallbackIsNotCached(t *testing.T) {
	stub := &stubCompleter{err: errors.New("down")}
	cache := openTestCache(t)
	a := New(Options{Completer: stub, Cache: cache, Model: "m"})

	a.Answer(context.Background(), "q")
	_, ok, err := cache.Get(cacheKey("q"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAnswerRateLimited(t *testing.T) {
	stub := &stubCompleter{answer: "ok"}
	a := New(Options{Completer: stub, Model: "m", RatePerMinute: 1})
	ctx := context.Background()

	assert.Equal(t, "ok", a.Answer(ctx, "one").Answer)
	assert.Equal(t, FallbackAnswer, a.Answer(ctx, "two").Answer)
	assert.EqualValues(t, 1, stub.calls.Load())
}

func TestCacheExpiry(t *testing.T) {
	c, err := OpenCache(CacheConfig{InMemory: true, TTL: time.Second})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Put("k", "v"))
	v, ok, err := c.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	time.Sleep(2100 * time.Millisecond)
	_, ok, err = c.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenCacheNeedsPath(t *testing.T) {
	_, err := OpenCache(CacheConfig{})
	assert.Error(t, err)

	c, err := OpenCache(CacheConfig{Path: t.TempDir(), TTL: time.Minute})
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}

func TestOpenAICompleter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","model":"m",` +
			`"choices":[{"index":0,"message":{"role":"assistant","content":" Use channels. "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAICompleter("test-key", srv.URL+"/v1", "m")
	got, err := c.Complete(context.Background(), "How do goroutines talk?")
	require.NoError(t, err)
	assert.Equal(t, "Use channels.", got)
	assert.Equal(t, "m", c.Model())
}

func TestOpenAICompleterUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	c := NewOpenAICompleter("test-key", srv.URL+"/v1", "m")
	_, err := c.Complete(context.Background(), "q")
	assert.Error(t, err)
}
