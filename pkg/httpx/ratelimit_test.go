package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/femundo/cms/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", httpx.ClientIP(req))
	})

	t.Run("prefers X-Real-IP", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Real-IP", "203.0.113.2")
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		require.Equal(t, "203.0.113.2", httpx.ClientIP(req))
	})

	t.Run("first X-Forwarded-For entry", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
		require.Equal(t, "203.0.113.1", httpx.ClientIP(req))
	})
}

func TestRateLimit(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allows requests within burst", func(t *testing.T) {
		h := httpx.Chain(okHandler, httpx.RateLimit(httpx.RateLimitConfig{
			RequestsPerWindow: 5, Window: time.Second, Burst: 5,
		}, httpx.IPKey))

		for i := range 5 {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.0.0.1:1000"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
		}
	})

	t.Run("rejects over burst with Retry-After", func(t *testing.T) {
		h := httpx.Chain(okHandler, httpx.RateLimit(httpx.RateLimitConfig{
			RequestsPerWindow: 2, Window: time.Minute, Burst: 2,
		}, httpx.IPKey))

		for range 2 {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.0.0.2:1000"
			h.ServeHTTP(httptest.NewRecorder(), req)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.2:1000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("separate keys get separate buckets", func(t *testing.T) {
		h := httpx.Chain(okHandler, httpx.RateLimit(httpx.RateLimitConfig{
			RequestsPerWindow: 1, Window: time.Minute, Burst: 1,
		}, httpx.IPKey))

		req1 := httptest.NewRequest(http.MethodGet, "/", nil)
		req1.RemoteAddr = "10.0.0.3:1000"
		h.ServeHTTP(httptest.NewRecorder(), req1)

		// A different IP is unaffected by the first bucket being drained.
		req2 := httptest.NewRequest(http.MethodGet, "/", nil)
		req2.RemoteAddr = "10.0.0.4:1000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req2)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestUserKey_FallsBackToIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.1.1:4444"
	require.Equal(t, "10.1.1.1", httpx.UserKey(req))

	req = req.WithContext(httpx.ContextWithUserID(req.Context(), "42"))
	require.Equal(t, "42", httpx.UserKey(req))
}
