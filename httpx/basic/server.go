// Package basic 基于标准库 net/http 实现 httpx.IHttpServer
package basic

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"conference/httpx"
)

// HttpServer 基于 http.ServeMux 的服务器
//
// 路由须在首次调用 Handler 或 Start 之前注册完毕。
type HttpServer struct {
	config      httpx.WebConfig
	mux         *http.ServeMux
	server      *http.Server
	routes      []*route
	raw         []rawRoute
	middlewares []httpx.Middleware

	mu    sync.Mutex
	build sync.Once
}

type route struct {
	method  string
	pattern string
	handler httpx.HttpHandler
}

type rawRoute struct {
	method  string
	pattern string
	handler http.Handler
}

// NewHTTPServer 创建基于 net/http 的服务器
func NewHTTPServer(config httpx.WebConfig) *HttpServer {
	return &HttpServer{config: config, mux: http.NewServeMux()}
}

func (s *HttpServer) GET(path string, handler httpx.HttpHandler) httpx.IHttpServer {
	return s.addRoute(http.MethodGet, path, handler)
}
func (s *HttpServer) POST(path string, handler httpx.HttpHandler) httpx.IHttpServer {
	return s.addRoute(http.MethodPost, path, handler)
}
func (s *HttpServer) PUT(path string, handler httpx.HttpHandler) httpx.IHttpServer {
	return s.addRoute(http.MethodPut, path, handler)
}
func (s *HttpServer) DELETE(path string, handler httpx.HttpHandler) httpx.IHttpServer {
	return s.addRoute(http.MethodDelete, path, handler)
}

func (s *HttpServer) addRoute(method, path string, handler httpx.HttpHandler) *HttpServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = append(s.routes, &route{method: method, pattern: path, handler: handler})
	return s
}

// Group 创建路由组
func (s *HttpServer) Group(prefix string) httpx.IRouteGroup {
	return &RouteGroup{prefix: prefix, server: s}
}

// Use 全局中间件，按注册顺序执行
func (s *HttpServer) Use(middleware ...httpx.Middleware) httpx.IHttpServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.middlewares = append(s.middlewares, middleware...)
	return s
}

func (s *HttpServer) Handle(method, path string, handler http.Handler) httpx.IHttpServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = append(s.raw, rawRoute{method: method, pattern: path, handler: handler})
	return s
}

func (s *HttpServer) Handler() http.Handler {
	s.build.Do(s.registerRoutes)
	return s.mux
}

func (s *HttpServer) Start(addr string) error {
	if addr == "" {
		addr = s.config.Addr
	}
	s.mu.Lock()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
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

func (s *HttpServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *HttpServer) registerRoutes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.raw {
		s.mux.Handle(r.method+" "+convertPathPattern(r.pattern), r.handler)
	}
	for _, r := range s.routes {
		s.mux.HandleFunc(r.method+" "+convertPathPattern(r.pattern), s.createHandler(r))
	}
}

// convertPathPattern 将 :id 转为 {id}
func convertPathPattern(pattern string) string {
	parts := strings.Split(pattern, "/")
	for i, p := range parts {
		if strings.HasPrefix(p, ":") {
			parts[i] = "{" + p[1:] + "}"
		}
	}
	return strings.Join(parts, "/")
}

func (s *HttpServer) createHandler(r *route) http.HandlerFunc {
	params := paramNames(r.pattern)
	middlewares := append([]httpx.Middleware(nil), s.middlewares...)
	return func(w http.ResponseWriter, req *http.Request) {
		ctx := NewHttpContext(w, req)
		httpx.SetRoute(ctx, r.pattern)
		for _, name := range params {
			ctx.SetParam(name, req.PathValue(name))
		}
		if err := httpx.Chain(ctx, middlewares, r.handler); err != nil {
			_ = httpx.WriteErrorResponse(ctx, err)
		}
	}
}

func paramNames(pattern string) []string {
	var names []string
	for _, part := range strings.Split(strings.Trim(pattern, "/"), "/") {
		if strings.HasPrefix(part, ":") {
			names = append(names, part[1:])
		}
	}
	return names
}

// RouteGroup 实现 httpx.IRouteGroup
type RouteGroup struct {
	prefix      string
	server      *HttpServer
	middlewares []httpx.Middleware
}

func (g *RouteGroup) GET(path string, h httpx.HttpHandler) httpx.IRouteGroup {
	return g.add(http.MethodGet, path, h)
}
func (g *RouteGroup) POST(path string, h httpx.HttpHandler) httpx.IRouteGroup {
	return g.add(http.MethodPost, path, h)
}
func (g *RouteGroup) PUT(path string, h httpx.HttpHandler) httpx.IRouteGroup {
	return g.add(http.MethodPut, path, h)
}
func (g *RouteGroup) DELETE(path string, h httpx.HttpHandler) httpx.IRouteGroup {
	return g.add(http.MethodDelete, path, h)
}

// Group 子组继承当前组的中间件
func (g *RouteGroup) Group(prefix string) httpx.IRouteGroup {
	return &RouteGroup{
		prefix:      g.prefix + prefix,
		server:      g.server,
		middlewares: append([]httpx.Middleware(nil), g.middlewares...),
	}
}

func (g *RouteGroup) Use(mw ...httpx.Middleware) httpx.IRouteGroup {
	g.middlewares = append(g.middlewares, mw...)
	return g
}

func (g *RouteGroup) add(method, path string, h httpx.HttpHandler) httpx.IRouteGroup {
	mws := g.middlewares
	g.server.addRoute(method, g.prefix+path, func(ctx httpx.IHttpContext) error {
		return httpx.Chain(ctx, mws, h)
	})
	return g
}
