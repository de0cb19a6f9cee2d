package ginx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"conference/errors"
	"conference/httpx"
)

func TestServer_RoutesAndMiddleware(t *testing.T) {
	srv := New(httpx.WebConfig{})
	var order []string
	srv.Use(func(ctx httpx.IHttpContext, next func() error) error {
		order = append(order, "global")
		return next()
	})

	g := srv.Group("/api")
	g.Use(func(ctx httpx.IHttpContext, next func() error) error {
		order = append(order, "group")
		return next()
	})
	g.POST("/conference/:key", func(ctx httpx.IHttpContext) error {
		var body struct {
			Name string `json:"name"`
		}
		if err := ctx.BindJSON(&body); err != nil {
			return err
		}
		order = append(order, "handler")
		return ctx.JSON(http.StatusCreated, map[string]string{"key": ctx.GetParam("key"), "name": body.Name})
	})
	srv.GET("/conference/announcement/get", func(ctx httpx.IHttpContext) error {
		return errors.NewError(errors.ErrCodeConflict, "already registered")
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/conference/k1", strings.NewReader(`{"name":"Go"}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"key":"k1","name":"Go"}`, rec.Body.String())
	assert.Equal(t, []string{"global", "group", "handler"}, order)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/conference/announcement/get", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already registered")

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/conference/k1", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
