package messaging

import (
	"context"
	"fmt"
	"sync"
)

// HandlerFunc 消息处理函数，也是发布侧中间件链的执行单元
type HandlerFunc func(ctx context.Context, message IMessage) error

// IMiddleware 发布侧中间件，在消息交给 Transport 前执行
type IMiddleware interface {
	Handle(ctx context.Context, message IMessage, next HandlerFunc) error
	Name() string
}

// HandlerMiddleware 消费侧中间件，在订阅时包装处理器
type HandlerMiddleware func(next IMessageHandler) IMessageHandler

// IMessageBus 消息总线接口
type IMessageBus interface {
	Subscribe(ctx context.Context, messageType string, handler IMessageHandler) error
	Unsubscribe(ctx context.Context, messageType string, handler IMessageHandler) error
	Publish(ctx context.Context, message IMessage) error
	PublishAll(ctx context.Context, messages []IMessage) error
	Use(middleware IMiddleware)
}

// IPublisher 只需发布能力的调用方（服务层）依赖此接口
type IPublisher interface {
	Publish(ctx context.Context, message IMessage) error
}

type subscription struct {
	messageType string
	handler     IMessageHandler
}

// MessageBus 消息总线基础实现
// 它依赖于 Transport 接口来处理实际的消息传输，并支持两侧中间件
type MessageBus struct {
	transport          Transport
	middlewares        []IMiddleware
	handlerMiddlewares []HandlerMiddleware
	wrapped            map[subscription]IMessageHandler
	mutex              sync.RWMutex
}

// NewMessageBus 创建消息总线
func NewMessageBus(transport Transport) *MessageBus {
	return &MessageBus{
		transport: transport,
		wrapped:   make(map[subscription]IMessageHandler),
	}
}

// Transport 返回底层传输
func (bus *MessageBus) Transport() Transport {
	return bus.transport
}

// Use 注册发布侧中间件
func (bus *MessageBus) Use(middleware IMiddleware) {
	bus.mutex.Lock()
	defer bus.mutex.Unlock()
	bus.middlewares = append(bus.middlewares, middleware)
}

// UseHandler 注册消费侧中间件，仅对之后的订阅生效；先注册的在最外层
func (bus *MessageBus) UseHandler(middleware HandlerMiddleware) {
	bus.mutex.Lock()
	defer bus.mutex.Unlock()
	bus.handlerMiddlewares = append(bus.handlerMiddlewares, middleware)
}

// Subscribe 订阅消息处理器
func (bus *MessageBus) Subscribe(ctx context.Context, messageType string, handler IMessageHandler) error {
	bus.mutex.Lock()
	wrapped := handler
	for i := len(bus.handlerMiddlewares) - 1; i >= 0; i-- {
		wrapped = bus.handlerMiddlewares[i](wrapped)
	}
	bus.wrapped[subscription{messageType, handler}] = wrapped
	bus.mutex.Unlock()

	return bus.transport.Subscribe(messageType, wrapped)
}

// Unsubscribe 取消订阅消息处理器
func (bus *MessageBus) Unsubscribe(ctx context.Context, messageType string, handler IMessageHandler) error {
	key := subscription{messageType, handler}

	bus.mutex.Lock()
	wrapped, ok := bus.wrapped[key]
	delete(bus.wrapped, key)
	bus.mutex.Unlock()

	if !ok {
		wrapped = handler
	}
	return bus.transport.Unsubscribe(messageType, wrapped)
}

// Publish 发布消息，并在发送到 Transport 前执行中间件
func (bus *MessageBus) Publish(ctx context.Context, message IMessage) error {
	return bus.executeMiddlewares(ctx, message, bus.transport.Publish)
}

// PublishAll 发布多个消息
func (bus *MessageBus) PublishAll(ctx context.Context, messages []IMessage) error {
	if len(messages) == 0 {
		return nil
	}

	batched := make([]IMessage, 0, len(messages))
	for _, message := range messages {
		err := bus.executeMiddlewares(ctx, message, func(ctx context.Context, msg IMessage) error {
			batched = append(batched, msg)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to publish message %s: %w", message.GetID(), err)
		}
	}

	if len(batched) == 0 {
		return nil
	}

	if err := bus.transport.PublishAll(ctx, batched); err != nil {
		return fmt.Errorf("failed to publish batch (%d messages): %w", len(batched), err)
	}
	return nil
}

// Start 启动底层传输
func (bus *MessageBus) Start(ctx context.Context) error {
	return bus.transport.Start(ctx)
}

// Close 关闭底层传输
func (bus *MessageBus) Close() error {
	return bus.transport.Close()
}

// executeMiddlewares 构建并执行中间件链
func (bus *MessageBus) executeMiddlewares(ctx context.Context, message IMessage, finalHandler HandlerFunc) error {
	bus.mutex.RLock()
	middlewares := bus.middlewares
	bus.mutex.RUnlock()

	next := finalHandler
	for i := len(middlewares) - 1; i >= 0; i-- {
		middleware := middlewares[i]
		currentNext := next
		next = func(ctx context.Context, msg IMessage) error {
			return middleware.Handle(ctx, msg, currentNext)
		}
	}
	return next(ctx, message)
}
