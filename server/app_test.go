package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference/auth"
	"conference/config"
	"conference/mail"
	"conference/service"
)

func testApp(t *testing.T, engine string) (*App, *mail.Outbox) {
	t.Helper()
	loader := config.New("")
	v := loader.Viper()
	v.Set("server.engine", engine)
	v.Set("database.dsn", ":memory:")
	v.Set("messaging.driver", "sync")
	v.Set("auth.secret", "test-secret")
	v.Set("ratelimit.enabled", true)
	v.Set("log.level", "error")

	outbox := &mail.Outbox{}
	app := NewApp(WithLoader(loader), WithMailer(outbox))
	require.NoError(t, app.LoadConfig())
	require.NoError(t, app.SetupDependencies(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, app.StartBackgroundTasks(ctx))
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, app.Shutdown(context.Background()))
	})
	return app, outbox
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestApp_EndToEnd(t *testing.T) {
	for _, engine := range []string{"basic", "gin"} {
		t.Run(engine, func(t *testing.T) {
			app, outbox := testApp(t, engine)
			h := app.Handler()

			rec := call(t, h, http.MethodGet, "/healthz", "", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			var health struct {
				Status string `json:"status"`
				Tasks  struct {
					Running      bool     `json:"running"`
					MessageTypes []string `json:"message_types"`
				} `json:"tasks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
			assert.Equal(t, "ok", health.Status)
			assert.True(t, health.Tasks.Running)
			assert.ElementsMatch(t, []string{"send_confirmation_email", "cache_featured_speaker"}, health.Tasks.MessageTypes)

			token, err := app.Authenticator().IssueToken(auth.User{ID: "u1", Email: "organizer@example.com"})
			require.NoError(t, err)

			rec = call(t, h, http.MethodPost, "/conference", token, service.ConferenceForm{Name: "GopherCon", MaxAttendees: 10})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var conf service.ConferenceForm
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conf))
			assert.Equal(t, 10, conf.SeatsAvailable)

			sent := outbox.Sent()
			require.Len(t, sent, 1)
			assert.Equal(t, "organizer@example.com", sent[0].To)

			rec = call(t, h, http.MethodGet, "/conference/"+conf.WebsafeKey, "", nil)
			assert.Equal(t, http.StatusOK, rec.Code)

			rec = call(t, h, http.MethodGet, "/profile", "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			rec = call(t, h, http.MethodGet, "/metrics", "", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			assert.True(t, strings.Contains(body, "conference_http_requests_total"))
			assert.True(t, strings.Contains(body, `type="send_confirmation_email"`))
		})
	}
}

func TestApp_InvalidConfig(t *testing.T) {
	cfg := &config.Config{}
	app := NewApp(WithConfig(cfg))
	assert.Error(t, app.LoadConfig())
	assert.Error(t, NewApp().SetupDependencies(context.Background()))
}
