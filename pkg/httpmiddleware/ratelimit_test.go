package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// fakeClock is a manually advanced clock.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func serve(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimit_UnderBurst(t *testing.T) {
	clock := newClock()
	h := RateLimit(RateLimitConfig{RPS: 1, Burst: 5, Now: clock.Now})(okHandler())

	for i := range 5 {
		w := serve(h, "192.168.1.1:12345")
		assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimit_OverBurst(t *testing.T) {
	clock := newClock()
	h := RateLimit(RateLimitConfig{RPS: 0.5, Burst: 2, Now: clock.Now})(okHandler())

	for range 2 {
		require.Equal(t, http.StatusOK, serve(h, "10.0.0.1:9999").Code)
	}

	w := serve(h, "10.0.0.1:9999")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "2", w.Header().Get("Retry-After"))

	var (
		code int
		msg  string
	)
	require.NoError(t, jx.DecodeBytes(w.Body.Bytes()).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "code":
			code, err = d.Int()
		case "message":
			msg, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}))
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "rate limit exceeded", msg)
}

func TestRateLimit_Refill(t *testing.T) {
	clock := newClock()
	h := RateLimit(RateLimitConfig{RPS: 1, Burst: 1, Now: clock.Now})(okHandler())

	require.Equal(t, http.StatusOK, serve(h, "10.0.0.1:1").Code)
	require.Equal(t, http.StatusTooManyRequests, serve(h, "10.0.0.1:1").Code)

	clock.Advance(time.Second)
	assert.Equal(t, http.StatusOK, serve(h, "10.0.0.1:1").Code)
}

func TestRateLimit_RejectedRequestsDoNotConsume(t *testing.T) {
	clock := newClock()
	h := RateLimit(RateLimitConfig{RPS: 1, Burst: 1, Now: clock.Now})(okHandler())

	require.Equal(t, http.StatusOK, serve(h, "10.0.0.1:1").Code)
	for range 5 {
		require.Equal(t, http.StatusTooManyRequests, serve(h, "10.0.0.1:1").Code)
	}

	clock.Advance(time.Second)
	assert.Equal(t, http.StatusOK, serve(h, "10.0.0.1:1").Code)
}

func TestRateLimit_DifferentClients(t *testing.T) {
	clock := newClock()
	h := RateLimit(RateLimitConfig{RPS: 1, Burst: 1, Now: clock.Now})(okHandler())

	assert.Equal(t, http.StatusOK, serve(h, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, serve(h, "10.0.0.2:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, "10.0.0.1:5678").Code)
}

func TestRateLimit_CustomKeyFunc(t *testing.T) {
	clock := newClock()
	h := RateLimit(RateLimitConfig{
		RPS:   1,
		Burst: 1,
		Now:   clock.Now,
		KeyFunc: func(r *http.Request) string {
			return r.Header.Get("X-Client")
		},
	})(okHandler())

	do := func(key string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Client", key)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("a"))
	assert.Equal(t, http.StatusTooManyRequests, do("a"))
	assert.Equal(t, http.StatusOK, do("b"))
}

func TestRateLimit_XForwardedFor(t *testing.T) {
	clock := newClock()
	h := RateLimit(RateLimitConfig{RPS: 1, Burst: 1, Now: clock.Now})(okHandler())

	do := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		req.Header.Set("X-Forwarded-For", "203.0.113.50, 70.41.3.18")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("192.168.1.1:4444"))
	assert.Equal(t, http.StatusTooManyRequests, do("192.168.1.2:5555"))
}

func TestLimiters_Evict(t *testing.T) {
	clock := newClock()
	l := newLimiters(RateLimitConfig{RPS: 1, Burst: 1, IdleTTL: time.Minute, Now: clock.Now})

	l.get("a", clock.Now())
	clock.Advance(30 * time.Second)
	l.get("b", clock.Now())
	clock.Advance(45 * time.Second)

	assert.Equal(t, 1, l.evict(clock.Now()))
	assert.Equal(t, 1, l.size())
}
