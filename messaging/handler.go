package messaging

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// IMessageHandler 消息处理器接口
type IMessageHandler interface {
	// Handle 处理消息
	Handle(ctx context.Context, message IMessage) error

	// Type 返回处理器类型（用于日志和调试）
	Type() string
}

type funcHandler struct {
	name string
	fn   HandlerFunc
}

func (h *funcHandler) Handle(ctx context.Context, message IMessage) error { return h.fn(ctx, message) }
func (h *funcHandler) Type() string                                       { return h.name }

// NewHandler 将函数包装为处理器
func NewHandler(name string, fn HandlerFunc) IMessageHandler {
	return &funcHandler{name: name, fn: fn}
}

// Wildcard 订阅全部消息类型
const Wildcard = "*"

// HandlerRegistry 按消息类型登记处理器，供各传输实现复用
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string][]IMessageHandler
}

// NewHandlerRegistry 创建处理器登记表
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string][]IMessageHandler)}
}

// Add 登记处理器
func (r *HandlerRegistry) Add(messageType string, handler IMessageHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[messageType] = append(r.handlers[messageType], handler)
}

// Remove 移除处理器
func (r *HandlerRegistry) Remove(messageType string, handler IMessageHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	handlers, ok := r.handlers[messageType]
	if !ok {
		return fmt.Errorf("no handlers for message type %s", messageType)
	}
	for i, h := range handlers {
		if h == handler {
			r.handlers[messageType] = append(handlers[:i:i], handlers[i+1:]...)
			if len(r.handlers[messageType]) == 0 {
				delete(r.handlers, messageType)
			}
			return nil
		}
	}
	return fmt.Errorf("handler not found for message type %s", messageType)
}

// Lookup 返回精确匹配与通配符处理器的副本
func (r *HandlerRegistry) Lookup(messageType string) []IMessageHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exact := r.handlers[messageType]
	wildcard := r.handlers[Wildcard]
	out := make([]IMessageHandler, 0, len(exact)+len(wildcard))
	out = append(out, exact...)
	if messageType != Wildcard {
		out = append(out, wildcard...)
	}
	return out
}

// Types 返回已登记的消息类型（已排序）
func (r *HandlerRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.handlers))
	for mt := range r.handlers {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// Count 返回处理器总数
func (r *HandlerRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, hs := range r.handlers {
		n += len(hs)
	}
	return n
}
