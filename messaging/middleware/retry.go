// Package middleware 提供消息处理器中间件
package middleware

import (
	"context"
	"errors"
	"time"

	"conference/logging"
	"conference/messaging"
)

// ErrPermanent 标记不可重试的错误
var ErrPermanent = errors.New("permanent failure")

// Permanent 包装错误，使重试中间件立即放弃
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrPermanent, err)
}

// RetryConfig 重试配置
type RetryConfig struct {
	MaxAttempts   int           // 最大尝试次数（包括首次）
	InitialDelay  time.Duration // 初始退避延迟
	BackoffFactor float64       // 退避倍数
	MaxDelay      time.Duration // 最大延迟
}

// DefaultRetryConfig 默认 3 次尝试，10ms 起指数退避，上限 1s
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  10 * time.Millisecond,
		BackoffFactor: 2.0,
		MaxDelay:      time.Second,
	}
}

// delay 第 attempt 次失败后的等待时间
func (c RetryConfig) delay(attempt int) time.Duration {
	d := float64(c.InitialDelay)
	for i := 1; i < attempt; i++ {
		d *= c.BackoffFactor
	}
	if c.MaxDelay > 0 && time.Duration(d) > c.MaxDelay {
		return c.MaxDelay
	}
	return time.Duration(d)
}

// Retry 对处理器失败进行指数退避重试
func Retry(cfg RetryConfig) messaging.HandlerMiddleware {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return func(next messaging.IMessageHandler) messaging.IMessageHandler {
		return messaging.NewHandler(next.Type(), func(ctx context.Context, message messaging.IMessage) error {
			var lastErr error
			for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				lastErr = next.Handle(ctx, message)
				if lastErr == nil || errors.Is(lastErr, ErrPermanent) {
					return lastErr
				}
				if attempt == cfg.MaxAttempts {
					break
				}
				select {
				case <-time.After(cfg.delay(attempt)):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return lastErr
		})
	}
}

// Logging 记录处理耗时与失败
func Logging(logger logging.Logger) messaging.HandlerMiddleware {
	if logger == nil {
		logger = logging.ComponentLogger("messaging")
	}
	return func(next messaging.IMessageHandler) messaging.IMessageHandler {
		return messaging.NewHandler(next.Type(), func(ctx context.Context, message messaging.IMessage) error {
			start := time.Now()
			err := next.Handle(ctx, message)
			fields := []logging.Field{
				logging.String("handler", next.Type()),
				logging.String("message_type", message.GetType()),
				logging.String("message_id", message.GetID()),
				logging.Duration("elapsed", time.Since(start)),
			}
			if err != nil {
				logger.Error(ctx, "message handler failed", append(fields, logging.Error(err))...)
				return err
			}
			logger.Debug(ctx, "message handled", fields...)
			return nil
		})
	}
}
