package httpx

import (
	"context"
	"net/http"
)

// IHttpServer HTTP 服务器接口
//
// 路径参数使用 :name 形式。
type IHttpServer interface {
	GET(path string, handler HttpHandler) IHttpServer
	POST(path string, handler HttpHandler) IHttpServer
	PUT(path string, handler HttpHandler) IHttpServer
	DELETE(path string, handler HttpHandler) IHttpServer

	Group(prefix string) IRouteGroup
	Use(middleware ...Middleware) IHttpServer

	// Handle 挂载原生 http.Handler，不经过中间件（如 /metrics）
	Handle(method, path string, handler http.Handler) IHttpServer

	// Handler 返回完整路由，供 httptest 使用
	Handler() http.Handler

	Start(addr string) error
	Stop(ctx context.Context) error
}

// IRouteGroup 路由组接口
type IRouteGroup interface {
	GET(path string, handler HttpHandler) IRouteGroup
	POST(path string, handler HttpHandler) IRouteGroup
	PUT(path string, handler HttpHandler) IRouteGroup
	DELETE(path string, handler HttpHandler) IRouteGroup

	Group(prefix string) IRouteGroup
	Use(middleware ...Middleware) IRouteGroup
}
