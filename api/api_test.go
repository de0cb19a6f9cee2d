package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"conference/auth"
	"conference/cache"
	"conference/codegen/snowflake"
	core "conference/data/db"
	"conference/data/db/basic"
	"conference/filter"
	"conference/httpx"
	httpbasic "conference/httpx/basic"
	"conference/logging"
	"conference/messaging"
	synctransport "conference/messaging/transport/sync"
	"conference/service"
	"conference/storage"
)

type client struct {
	t       *testing.T
	handler http.Handler
	tokens  *auth.Authenticator
}

func newClient(t *testing.T) *client {
	t.Helper()
	ctx := context.Background()

	database, err := basic.Open(ctx, core.DBConfig{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, storage.Migrate(ctx, database))
	ids, err := snowflake.NewGenerator(0, 1)
	require.NoError(t, err)

	bus := messaging.NewMessageBus(synctransport.NewSyncTransport())
	require.NoError(t, bus.Start(ctx))

	svc := service.New(service.Deps{
		Repos:     storage.New(database, ids),
		Cache:     cache.NewMemoryStore(16),
		Publisher: bus,
		Logger:    logging.NewNoopLogger(),
	})

	tokens := auth.NewAuthenticator("test-secret", "conference", time.Hour)
	srv := httpbasic.NewHTTPServer(httpx.WebConfig{})
	srv.Use(httpx.RequestID(), auth.Middleware(tokens, logging.NewNoopLogger()))
	NewHandlers(svc).Register(srv.Group(""))

	return &client{t: t, handler: srv.Handler(), tokens: tokens}
}

func (c *client) do(method, path string, user *auth.User, body any, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != nil {
		token, err := c.tokens.IssueToken(*user)
		require.NoError(c.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

var (
	alice = &auth.User{ID: "alice", Email: "alice@example.com", Nickname: "alice"}
	bob   = &auth.User{ID: "bob", Email: "bob@example.com", Nickname: "bob"}
)

func TestAuthenticatedRoutesRequireUser(t *testing.T) {
	c := newClient(t)
	var errBody httpx.ErrorPayload
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/profile", nil, nil, &errBody))
	assert.Equal(t, "UNAUTHORIZED", errBody.Code)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/conference", nil, service.ConferenceForm{Name: "x"}, nil))
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/wishlist", nil, nil, nil))
}

func TestProfileRoutes(t *testing.T) {
	c := newClient(t)
	var p service.ProfileForm
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/profile", alice, nil, &p))
	assert.Equal(t, "alice", p.DisplayName)

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/profile", alice, service.ProfileMiniForm{TeeShirtSize: "L_M"}, &p))
	assert.Equal(t, "L_M", p.TeeShirtSize)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/profile", alice, service.ProfileMiniForm{TeeShirtSize: "nope"}, nil))
}

func TestConferenceLifecycle(t *testing.T) {
	c := newClient(t)

	var conf service.ConferenceForm
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/conference", alice,
		service.ConferenceForm{Name: "GopherCon", City: "London", MaxAttendees: 2, StartDate: "2026-06-01"}, &conf))
	require.NotEmpty(t, conf.WebsafeKey)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/conference", alice, service.ConferenceForm{}, nil))

	var got service.ConferenceForm
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/conference/"+conf.WebsafeKey, nil, nil, &got))
	assert.Equal(t, "GopherCon", got.Name)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/conference/%21%21", nil, nil, nil))

	assert.Equal(t, http.StatusForbidden, c.do(http.MethodPut, "/conference/"+conf.WebsafeKey, bob, service.ConferenceForm{City: "Rome"}, nil))
	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/conference/"+conf.WebsafeKey, alice, service.ConferenceForm{City: "Rome"}, &got))
	assert.Equal(t, "Rome", got.City)

	var created service.ConferenceForms
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/getConferencesCreated", alice, nil, &created))
	assert.Len(t, created.Items, 1)

	var found service.ConferenceForms
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/queryConferences", nil, service.ConferenceQueryForms{
		Filters: []filter.Spec{{Field: "CITY", Operator: "EQ", Value: "Rome"}},
	}, &found))
	assert.Len(t, found.Items, 1)

	var errBody httpx.ErrorPayload
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/queryConferences", nil, service.ConferenceQueryForms{
		Filters: []filter.Spec{
			{Field: "MONTH", Operator: "GT", Value: "1"},
			{Field: "MAX_ATTENDEES", Operator: "GT", Value: "1"},
		},
	}, &errBody))
	assert.Equal(t, "INVALID_INPUT", errBody.Code)

	var ok service.BooleanMessage
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/conference/"+conf.WebsafeKey+"/registration", bob, nil, &ok))
	assert.True(t, ok.Data)
	assert.Equal(t, http.StatusConflict, c.do(http.MethodPost, "/conference/"+conf.WebsafeKey+"/registration", bob, nil, nil))

	var attending service.ConferenceForms
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/conferences/attending", bob, nil, &attending))
	assert.Len(t, attending.Items, 1)

	require.Equal(t, http.StatusOK, c.do(http.MethodDelete, "/conference/"+conf.WebsafeKey+"/registration", bob, nil, &ok))
	assert.True(t, ok.Data)

	var announcement service.StringMessage
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/conference/announcement/get", nil, nil, &announcement))
	assert.Empty(t, announcement.Data)
}

func TestSessionAndWishlistRoutes(t *testing.T) {
	c := newClient(t)

	var conf service.ConferenceForm
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/conference", alice, service.ConferenceForm{Name: "GopherCon"}, &conf))

	base := "/conference/" + conf.WebsafeKey
	var session service.SessionForm
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, base+"/session", alice, service.SessionForm{
		Title: "Go intro", Date: "2026-06-01", StartTime: "09:00", TypeOfSession: "Workshop",
		SpeakerEmails: []string{"sp@example.com"},
	}, &session))
	require.NotEmpty(t, session.WebsafeSessionKey)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, base+"/session", alice, service.SessionForm{Title: "x"}, nil))

	var list service.SessionForms
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, base+"/sessions", nil, nil, &list))
	assert.Len(t, list.Items, 1)

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, base+"/sessions/Lecture", nil, nil, &list))
	assert.Empty(t, list.Items)

	var speakers service.SpeakerForms
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/speakers", nil, nil, &speakers))
	require.Len(t, speakers.Items, 1)

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/speaker/"+speakers.Items[0].WebsafeKey+"/sessions", nil, nil, &list))
	assert.Len(t, list.Items, 1)

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/querySessions", nil, service.SessionQueryForms{
		WebsafeConferenceKey: conf.WebsafeKey,
		TypeOfSession:        "Workshop",
		Filters:              []filter.Spec{{Field: "DURATION", Operator: "GTEQ", Value: "0"}},
	}, &list))
	assert.Len(t, list.Items, 1)

	var featured service.FeaturedSpeakerForm
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/speaker/featured", nil, nil, &featured))
	assert.Empty(t, featured.WebsafeSpeakerKey)

	var w service.WishlistForm
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/wishlist/"+session.WebsafeSessionKey, bob, nil, &w))
	assert.Equal(t, []string{session.WebsafeSessionKey}, w.SessionKeys)
	assert.Equal(t, http.StatusConflict, c.do(http.MethodPost, "/wishlist/"+session.WebsafeSessionKey, bob, nil, nil))

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/wishlist", bob, nil, &list))
	assert.Len(t, list.Items, 1)
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/wishlist/sessions-by-speakers", bob, nil, &list))
	assert.Len(t, list.Items, 1)
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/wishlist/sessions-by-types", bob, nil, &list))
	assert.Len(t, list.Items, 1)

	require.Equal(t, http.StatusOK, c.do(http.MethodDelete, "/wishlist/"+session.WebsafeSessionKey, bob, nil, &w))
	assert.Empty(t, w.SessionKeys)
	assert.Equal(t, http.StatusConflict, c.do(http.MethodDelete, "/wishlist/"+session.WebsafeSessionKey, bob, nil, nil))
}
