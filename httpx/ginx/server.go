// Package ginx 基于 gin 实现 httpx.IHttpServer
package ginx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	apperrors "conference/errors"
	"conference/httpx"
)

// maxBodyBytes 请求体上限
const maxBodyBytes = 1 << 20

// Server gin 引擎适配
type Server struct {
	config      httpx.WebConfig
	engine      *gin.Engine
	middlewares []httpx.Middleware

	mu     sync.Mutex
	server *http.Server
}

// New 创建 gin 服务器，使用 release 模式且不挂载 gin 自带的日志中间件
func New(config httpx.WebConfig) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.HandleMethodNotAllowed = true
	return &Server{config: config, engine: engine}
}

func (s *Server) GET(path string, h httpx.HttpHandler) httpx.IHttpServer {
	return s.handle(&s.engine.RouterGroup, http.MethodGet, path, nil, h)
}
func (s *Server) POST(path string, h httpx.HttpHandler) httpx.IHttpServer {
	return s.handle(&s.engine.RouterGroup, http.MethodPost, path, nil, h)
}
func (s *Server) PUT(path string, h httpx.HttpHandler) httpx.IHttpServer {
	return s.handle(&s.engine.RouterGroup, http.MethodPut, path, nil, h)
}
func (s *Server) DELETE(path string, h httpx.HttpHandler) httpx.IHttpServer {
	return s.handle(&s.engine.RouterGroup, http.MethodDelete, path, nil, h)
}

// handle 组装 全局 -> 组 -> 处理器 的中间件链
//
// 全局中间件在注册时捕获，须先于路由调用 Use。
func (s *Server) handle(rg *gin.RouterGroup, method, path string, group []httpx.Middleware, h httpx.HttpHandler) *Server {
	chain := append(append([]httpx.Middleware(nil), s.middlewares...), group...)
	rg.Handle(method, path, func(gc *gin.Context) {
		ctx := &Context{gc: gc}
		httpx.SetRoute(ctx, gc.FullPath())
		if err := httpx.Chain(ctx, chain, h); err != nil {
			_ = httpx.WriteErrorResponse(ctx, err)
		}
	})
	return s
}

func (s *Server) Group(prefix string) httpx.IRouteGroup {
	return &RouteGroup{server: s, group: s.engine.Group(prefix)}
}

func (s *Server) Use(middleware ...httpx.Middleware) httpx.IHttpServer {
	s.middlewares = append(s.middlewares, middleware...)
	return s
}

func (s *Server) Handle(method, path string, handler http.Handler) httpx.IHttpServer {
	s.engine.Handle(method, path, gin.WrapH(handler))
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) Start(addr string) error {
	if addr == "" {
		addr = s.config.Addr
	}
	s.mu.Lock()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	srv := s.server
	s.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// RouteGroup gin 路由组适配
type RouteGroup struct {
	server      *Server
	group       *gin.RouterGroup
	middlewares []httpx.Middleware
}

func (g *RouteGroup) GET(path string, h httpx.HttpHandler) httpx.IRouteGroup {
	g.server.handle(g.group, http.MethodGet, path, g.middlewares, h)
	return g
}
func (g *RouteGroup) POST(path string, h httpx.HttpHandler) httpx.IRouteGroup {
	g.server.handle(g.group, http.MethodPost, path, g.middlewares, h)
	return g
}
func (g *RouteGroup) PUT(path string, h httpx.HttpHandler) httpx.IRouteGroup {
	g.server.handle(g.group, http.MethodPut, path, g.middlewares, h)
	return g
}
func (g *RouteGroup) DELETE(path string, h httpx.HttpHandler) httpx.IRouteGroup {
	g.server.handle(g.group, http.MethodDelete, path, g.middlewares, h)
	return g
}

func (g *RouteGroup) Group(prefix string) httpx.IRouteGroup {
	return &RouteGroup{
		server:      g.server,
		group:       g.group.Group(prefix),
		middlewares: append([]httpx.Middleware(nil), g.middlewares...),
	}
}

func (g *RouteGroup) Use(mw ...httpx.Middleware) httpx.IRouteGroup {
	g.middlewares = append(g.middlewares, mw...)
	return g
}

// Context 包装 *gin.Context
type Context struct {
	gc *gin.Context
}

func (c *Context) GetMethod() string           { return c.gc.Request.Method }
func (c *Context) GetPath() string             { return c.gc.Request.URL.Path }
func (c *Context) GetHeader(key string) string { return c.gc.GetHeader(key) }
func (c *Context) GetQuery(key string) string  { return c.gc.Query(key) }
func (c *Context) GetParam(key string) string  { return c.gc.Param(key) }
func (c *Context) ClientIP() string            { return c.gc.ClientIP() }
func (c *Context) GetRequest() *http.Request   { return c.gc.Request }

// BindJSON 空请求体视为 {}
func (c *Context) BindJSON(obj any) error {
	body, err := io.ReadAll(io.LimitReader(c.gc.Request.Body, maxBodyBytes))
	if err != nil {
		return apperrors.WrapError(err, apperrors.ErrCodeInvalidInput, "failed to read request body")
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, obj); err != nil {
		return apperrors.WrapError(err, apperrors.ErrCodeInvalidInput, "failed to parse JSON")
	}
	return nil
}

func (c *Context) SetHeader(key, value string) { c.gc.Header(key, value) }

func (c *Context) Status() int {
	if !c.gc.Writer.Written() {
		return 0
	}
	return c.gc.Writer.Status()
}

func (c *Context) JSON(code int, obj any) error {
	c.gc.JSON(code, obj)
	httpx.MarkWritten(c)
	return nil
}

func (c *Context) String(code int, text string) error {
	c.gc.String(code, "%s", text)
	httpx.MarkWritten(c)
	return nil
}

func (c *Context) Set(key string, value any)  { c.gc.Set(key, value) }
func (c *Context) Get(key string) (any, bool) { return c.gc.Get(key) }

func (c *Context) Abort()          { c.gc.Abort() }
func (c *Context) IsAborted() bool { return c.gc.IsAborted() }

func (c *Context) Context() context.Context { return c.gc.Request.Context() }
func (c *Context) SetContext(ctx context.Context) {
	c.gc.Request = c.gc.Request.WithContext(ctx)
}
