package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"conference/httpx"
	"conference/httpx/basic"
)

func TestLimiter_PerIP(t *testing.T) {
	l := New(1, 2)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("2.2.2.2"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("1.1.1.1"))
}

func TestLimiter_Sweep(t *testing.T) {
	l := New(10, 10)
	now := time.Now()
	l.now = func() time.Time { return now }
	l.Allow("a")
	now = now.Add(time.Hour)
	l.Allow("b")

	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.Size())
}

func TestMiddleware(t *testing.T) {
	l := New(1, 1)
	srv := basic.NewHTTPServer(httpx.WebConfig{})
	srv.Use(l.Middleware())
	srv.GET("/ping", func(ctx httpx.IHttpContext) error {
		return ctx.String(http.StatusOK, "pong")
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do().Code)
	rec := do()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOO_MANY_REQUESTS")
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}
