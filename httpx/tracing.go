package httpx

import (
	"context"
	"time"

	"github.com/google/uuid"

	"conference/logging"
)

type contextKey string

const contextKeyRequestID contextKey = "request_id"

// RequestIDHeader 请求 ID 头
const RequestIDHeader = "X-Request-ID"

// WithRequestID 在 context 中设置请求 ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

// GetRequestID 从 context 中获取请求 ID，不存在时返回空字符串
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

// RequestID 沿用客户端的 X-Request-ID，没有时生成 UUID，并回写到响应头
func RequestID() Middleware {
	return func(ctx IHttpContext, next func() error) error {
		id := ctx.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.SetHeader(RequestIDHeader, id)
		ctx.SetContext(WithRequestID(ctx.Context(), id))
		return next()
	}
}

// AccessLog 记录请求方法、路径、状态与耗时
//
// 处理器返回的错误在这里写出，保证日志中的状态码与响应一致。
func AccessLog(logger logging.Logger) Middleware {
	if logger == nil {
		logger = logging.ComponentLogger("http")
	}
	return func(ctx IHttpContext, next func() error) error {
		start := time.Now()
		err := next()
		if err != nil {
			_ = WriteErrorResponse(ctx, err)
		}
		fields := []logging.Field{
			logging.String("method", ctx.GetMethod()),
			logging.String("path", ctx.GetPath()),
			logging.Int("status", ctx.Status()),
			logging.Duration("elapsed", time.Since(start)),
			logging.String("request_id", GetRequestID(ctx.Context())),
		}
		if err != nil {
			logger.Warn(ctx.Context(), "request failed", append(fields, logging.Error(err))...)
		} else {
			logger.Info(ctx.Context(), "request", fields...)
		}
		return nil
	}
}
