// Package memory 提供基于内存队列与 Worker 池的异步消息传输
//
// 处理器错误只记录日志，不会传播给发布者；需要重试时在订阅侧使用重试中间件。
package memory

import (
	"context"
	"fmt"
	"sync"

	"conference/logging"
	"conference/messaging"
)

// 默认队列与 Worker 配置
const (
	DefaultQueueSize   = 1000
	DefaultWorkerCount = 4
)

// MemoryTransport 内存消息传输实现
type MemoryTransport struct {
	registry    *messaging.HandlerRegistry
	logger      logging.Logger
	queue       chan messaging.IMessage
	queueSize   int
	workerCount int
	running     bool
	mutex       sync.RWMutex
	wg          sync.WaitGroup
}

// NewMemoryTransport 创建内存传输实例
//
// queueSize、workerCount <= 0 时使用默认值。
func NewMemoryTransport(queueSize, workerCount int) *MemoryTransport {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if workerCount <= 0 {
		workerCount = DefaultWorkerCount
	}

	return &MemoryTransport{
		registry:    messaging.NewHandlerRegistry(),
		logger:      logging.ComponentLogger("transport.memory"),
		queueSize:   queueSize,
		workerCount: workerCount,
	}
}

// Publish 发布消息到队列；队列满时立即返回错误
func (t *MemoryTransport) Publish(ctx context.Context, message messaging.IMessage) error {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if !t.running {
		return fmt.Errorf("memory transport is not running")
	}

	select {
	case t.queue <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("message queue is full")
	}
}

// PublishAll 批量发布消息到队列
func (t *MemoryTransport) PublishAll(ctx context.Context, messages []messaging.IMessage) error {
	for _, message := range messages {
		if err := t.Publish(ctx, message); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe 订阅消息处理器，支持通配符 "*"
func (t *MemoryTransport) Subscribe(messageType string, handler messaging.IMessageHandler) error {
	t.registry.Add(messageType, handler)
	return nil
}

// Unsubscribe 取消订阅消息处理器
func (t *MemoryTransport) Unsubscribe(messageType string, handler messaging.IMessageHandler) error {
	return t.registry.Remove(messageType, handler)
}

// Start 启动 Worker 池
func (t *MemoryTransport) Start(ctx context.Context) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.running {
		return fmt.Errorf("memory transport is already running")
	}

	t.queue = make(chan messaging.IMessage, t.queueSize)
	t.running = true

	for i := 0; i < t.workerCount; i++ {
		t.wg.Add(1)
		go t.worker(ctx, t.queue)
	}
	return nil
}

// Close 停止接收新消息，等待队列中已有消息处理完毕
func (t *MemoryTransport) Close() error {
	t.mutex.Lock()
	if !t.running {
		t.mutex.Unlock()
		return fmt.Errorf("memory transport is not running")
	}
	t.running = false
	close(t.queue)
	t.mutex.Unlock()

	t.wg.Wait()
	return nil
}

// Stats 获取统计信息
func (t *MemoryTransport) Stats() messaging.TransportStats {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return messaging.TransportStats{
		Running:      t.running,
		HandlerCount: t.registry.Count(),
		MessageTypes: t.registry.Types(),
		QueueSize:    t.queueSize,
		QueueDepth:   len(t.queue),
		WorkerCount:  t.workerCount,
	}
}

func (t *MemoryTransport) worker(ctx context.Context, queue <-chan messaging.IMessage) {
	defer t.wg.Done()

	for {
		select {
		case message, ok := <-queue:
			if !ok {
				return
			}
			t.dispatch(ctx, message)
		case <-ctx.Done():
			return
		}
	}
}

func (t *MemoryTransport) dispatch(ctx context.Context, message messaging.IMessage) {
	for _, handler := range t.registry.Lookup(message.GetType()) {
		if err := handler.Handle(ctx, message); err != nil {
			t.logger.Warn(ctx, "message handler failed",
				logging.String("message_type", message.GetType()),
				logging.String("message_id", message.GetID()),
				logging.String("handler", handler.Type()),
				logging.Error(err))
		}
	}
}
