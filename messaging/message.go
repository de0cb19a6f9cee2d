// Package messaging 提供后台任务使用的消息抽象、总线与传输层接口
package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IMessage 消息接口
type IMessage interface {
	// GetID 获取消息ID
	GetID() string

	// GetType 获取消息类型，传输层据此路由
	GetType() string

	// GetTimestamp 获取时间戳
	GetTimestamp() time.Time

	// GetPayload 获取消息数据
	GetPayload() any

	// GetMetadata 获取元数据
	GetMetadata() map[string]any
}

// Message 消息基础实现
type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   any            `json:"payload"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// GetID 获取消息ID
func (m *Message) GetID() string { return m.ID }

// GetType 获取消息类型
func (m *Message) GetType() string { return m.Type }

// GetTimestamp 获取时间戳
func (m *Message) GetTimestamp() time.Time { return m.Timestamp }

// GetPayload 获取消息数据
func (m *Message) GetPayload() any { return m.Payload }

// GetMetadata 获取元数据
func (m *Message) GetMetadata() map[string]any {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	return m.Metadata
}

// SetMetadata 设置元数据
func (m *Message) SetMetadata(key string, value any) {
	m.GetMetadata()[key] = value
}

// NewMessage 创建新消息，ID 为随机 UUID
func NewMessage(messageType string, payload any) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Type:      messageType,
		Timestamp: time.Now(),
		Payload:   payload,
		Metadata:  make(map[string]any),
	}
}

// DecodePayload 将消息数据解码到 target
//
// 经过序列化的传输层（Redis、NATS）投递的数据是通用的 map，
// 同进程传输投递的是原始结构体，两种情况统一经 JSON 转换。
func DecodePayload(message IMessage, target any) error {
	raw, err := json.Marshal(message.GetPayload())
	if err != nil {
		return fmt.Errorf("encode payload of %s: %w", message.GetType(), err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode payload of %s: %w", message.GetType(), err)
	}
	return nil
}
