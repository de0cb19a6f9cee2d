package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference/errors"
	"conference/httpx"
	"conference/httpx/basic"
	"conference/logging"
)

func TestIssueAndVerify(t *testing.T) {
	a := NewAuthenticator("secret", "conference", time.Hour)
	token, err := a.IssueToken(User{ID: "u1", Email: "ann@example.com"})
	require.NoError(t, err)

	u, err := a.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "ann", u.Nickname)

	_, err = NewAuthenticator("other", "conference", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewAuthenticator("secret", "someone-else", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	a := NewAuthenticator("secret", "", time.Minute)
	a.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := a.IssueToken(User{ID: "u1"})
	require.NoError(t, err)

	_, err = NewAuthenticator("secret", "", time.Minute).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNoSecret(t *testing.T) {
	_, err := NewAuthenticator("", "", 0).IssueToken(User{ID: "u"})
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestRequireUser(t *testing.T) {
	_, err := RequireUser(context.Background())
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeUnauthorized))

	u, err := RequireUser(WithUser(context.Background(), &User{ID: "x"}))
	require.NoError(t, err)
	assert.Equal(t, "x", u.ID)
}

func TestMiddleware(t *testing.T) {
	a := NewAuthenticator("secret", "conference", time.Hour)
	srv := basic.NewHTTPServer(httpx.WebConfig{})
	srv.Use(Middleware(a, logging.NewNoopLogger()))
	srv.GET("/me", func(ctx httpx.IHttpContext) error {
		u, err := RequireUser(ctx.Context())
		if err != nil {
			return err
		}
		return ctx.String(http.StatusOK, u.ID)
	})

	token, err := a.IssueToken(User{ID: "u1", Email: "a@x"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authorization required")
}
