// Package sync 提供同步消息传输：Publish 在调用方 goroutine 中直接执行处理器
//
// 适用于测试与单实例开发环境，处理器错误会返回给发布者。
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"conference/messaging"
)

// SyncTransport 同步传输实现
type SyncTransport struct {
	registry *messaging.HandlerRegistry
	running  atomic.Bool
}

// NewSyncTransport 创建一个新的同步传输实例
func NewSyncTransport() *SyncTransport {
	return &SyncTransport{registry: messaging.NewHandlerRegistry()}
}

// Publish 立即、同步地发布消息
func (t *SyncTransport) Publish(ctx context.Context, message messaging.IMessage) error {
	if !t.running.Load() {
		return fmt.Errorf("sync transport is not running")
	}

	var errs []error
	for _, handler := range t.registry.Lookup(message.GetType()) {
		if err := handler.Handle(ctx, message); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", handler.Type(), err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("message %s handled with %d errors: %w", message.GetType(), len(errs), errors.Join(errs...))
	}
	return nil
}

// PublishAll 批量发布消息（同步执行），遇错即停
func (t *SyncTransport) PublishAll(ctx context.Context, messages []messaging.IMessage) error {
	for _, message := range messages {
		if err := t.Publish(ctx, message); err != nil {
			return fmt.Errorf("failed to publish message %s: %w", message.GetID(), err)
		}
	}
	return nil
}

// Subscribe 订阅消息处理器
func (t *SyncTransport) Subscribe(messageType string, handler messaging.IMessageHandler) error {
	t.registry.Add(messageType, handler)
	return nil
}

// Unsubscribe 取消订阅消息处理器
func (t *SyncTransport) Unsubscribe(messageType string, handler messaging.IMessageHandler) error {
	return t.registry.Remove(messageType, handler)
}

// Start 启动传输层
func (t *SyncTransport) Start(ctx context.Context) error {
	if !t.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sync transport is already running")
	}
	return nil
}

// Close 关闭传输层
func (t *SyncTransport) Close() error {
	if !t.running.CompareAndSwap(true, false) {
		return fmt.Errorf("sync transport is not running")
	}
	return nil
}

// Stats 返回统计信息
func (t *SyncTransport) Stats() messaging.TransportStats {
	return messaging.TransportStats{
		Running:      t.running.Load(),
		HandlerCount: t.registry.Count(),
		MessageTypes: t.registry.Types(),
	}
}
