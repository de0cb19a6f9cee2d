// Package httpx 定义与框架无关的 HTTP 抽象
//
// 处理器只依赖 IHttpContext，具体引擎见 httpx/basic（net/http）与 httpx/ginx（gin）。
package httpx

import (
	"context"
	"net/http"
)

// IRequestReader 请求读取
type IRequestReader interface {
	GetMethod() string
	GetPath() string
	GetHeader(key string) string
	GetQuery(key string) string
	GetParam(key string) string
	ClientIP() string
	GetRequest() *http.Request
}

// IResponseWriter 响应写入
type IResponseWriter interface {
	SetHeader(key, value string)
	JSON(code int, obj any) error
	String(code int, text string) error
	// Status 已写出的状态码，尚未写出时为 0
	Status() int
}

// IContextStorage 请求级键值存储
type IContextStorage interface {
	Set(key string, value any)
	Get(key string) (any, bool)
}

// IHttpContext 处理器可见的请求上下文
type IHttpContext interface {
	IRequestReader
	IResponseWriter
	IContextStorage

	BindJSON(obj any) error

	Abort()
	IsAborted() bool

	// Context 请求的 context.Context，中间件可通过 SetContext 附加值
	Context() context.Context
	SetContext(ctx context.Context)
}

// HttpHandler 处理器函数类型
type HttpHandler func(ctx IHttpContext) error

// Middleware HTTP 中间件签名
type Middleware func(ctx IHttpContext, next func() error) error

// responseWrittenKey 标记响应已写出
const responseWrittenKey = "response_written"

// MarkWritten 记录响应已写出，引擎实现写响应后调用
func MarkWritten(ctx IContextStorage) {
	ctx.Set(responseWrittenKey, true)
}

// Written 是否已写出响应
func Written(ctx IContextStorage) bool {
	v, ok := ctx.Get(responseWrittenKey)
	written, _ := v.(bool)
	return ok && written
}

const routeKey = "route_pattern"

// SetRoute 记录匹配到的路由模板
func SetRoute(ctx IContextStorage, pattern string) {
	ctx.Set(routeKey, pattern)
}

// Route 匹配到的路由模板，未记录时返回请求路径
func Route(ctx IHttpContext) string {
	if v, ok := ctx.Get(routeKey); ok {
		if p, _ := v.(string); p != "" {
			return p
		}
	}
	return ctx.GetPath()
}

// Chain 依次执行中间件，最后执行 handler
func Chain(ctx IHttpContext, middlewares []Middleware, handler HttpHandler) error {
	if len(middlewares) == 0 {
		return handler(ctx)
	}
	return middlewares[0](ctx, func() error {
		if ctx.IsAborted() {
			return nil
		}
		return Chain(ctx, middlewares[1:], handler)
	})
}
