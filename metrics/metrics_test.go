package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "conference/errors"
	"conference/httpx"
	"conference/httpx/basic"
	"conference/messaging"
)

func TestHTTPMiddleware(t *testing.T) {
	m := New(nil)
	srv := basic.NewHTTPServer(httpx.WebConfig{})
	srv.Use(m.HTTP())
	srv.GET("/conference/:websafeConferenceKey", func(ctx httpx.IHttpContext) error {
		if ctx.GetParam("websafeConferenceKey") == "missing" {
			return apperrors.NewError(apperrors.ErrCodeNotFound, "no conference")
		}
		return ctx.String(http.StatusOK, "ok")
	})
	srv.Handle(http.MethodGet, "/metrics", m.Handler())

	for _, key := range []string{"a", "b", "missing"} {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/conference/"+key, nil))
	}

	route := "/conference/:websafeConferenceKey"
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestTotal.WithLabelValues("GET", route, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestTotal.WithLabelValues("GET", route, "404")))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "conference_http_requests_total"))
}

func TestTaskMiddleware(t *testing.T) {
	m := New(nil)
	boom := errors.New("boom")
	calls := 0
	h := m.Tasks()(messaging.NewHandler("t", func(context.Context, messaging.IMessage) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	}))

	msg := messaging.NewMessage("send_confirmation_email", nil)
	require.NoError(t, h.Handle(context.Background(), msg))
	assert.ErrorIs(t, h.Handle(context.Background(), msg), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TasksTotal.WithLabelValues("send_confirmation_email", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TasksTotal.WithLabelValues("send_confirmation_email", "error")))
}
