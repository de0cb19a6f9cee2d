// Package metrics 暴露 Prometheus 指标
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"conference/httpx"
	"conference/messaging"
)

const namespace = "conference"

// Metrics 服务指标集合
type Metrics struct {
	gatherer prometheus.Gatherer

	RequestTotal    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	TasksTotal      *prometheus.CounterVec
	TaskDuration    *prometheus.HistogramVec
}

// New 在 reg 上注册指标；reg 为 nil 时使用独立的 Registry
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		RequestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		TasksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_total",
				Help:      "Total number of processed background tasks",
			},
			[]string{"type", "result"},
		),
		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "task_duration_seconds",
				Help:      "Background task latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type"},
		),
	}
}

// HTTP 记录请求数与耗时，path 取路由模板
//
// 需放在 AccessLog 之外，此时错误响应已写出。
func (m *Metrics) HTTP() httpx.Middleware {
	return func(ctx httpx.IHttpContext, next func() error) error {
		start := time.Now()
		err := next()
		if err != nil {
			_ = httpx.WriteErrorResponse(ctx, err)
		}
		route := httpx.Route(ctx)
		status := ctx.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestTotal.WithLabelValues(ctx.GetMethod(), route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(ctx.GetMethod(), route).Observe(time.Since(start).Seconds())
		return nil
	}
}

// Tasks 记录后台任务结果
func (m *Metrics) Tasks() messaging.HandlerMiddleware {
	return func(next messaging.IMessageHandler) messaging.IMessageHandler {
		return messaging.NewHandler(next.Type(), func(ctx context.Context, message messaging.IMessage) error {
			start := time.Now()
			err := next.Handle(ctx, message)
			result := "ok"
			if err != nil {
				result = "error"
			}
			m.TasksTotal.WithLabelValues(message.GetType(), result).Inc()
			m.TaskDuration.WithLabelValues(message.GetType()).Observe(time.Since(start).Seconds())
			return err
		})
	}
}

// Handler 指标抓取端点
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
