package messaging

import (
	"encoding/json"
	"time"
)

// envelope 消息的线上格式
type envelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
	Metadata  map[string]any  `json:"metadata"`
}

// Marshal 序列化消息；零时间戳按当前时间写入
func Marshal(msg IMessage) ([]byte, error) {
	payload, err := json.Marshal(msg.GetPayload())
	if err != nil {
		return nil, err
	}
	ts := msg.GetTimestamp()
	if ts.IsZero() {
		ts = time.Now()
	}
	return json.Marshal(envelope{
		ID:        msg.GetID(),
		Type:      msg.GetType(),
		Timestamp: ts.UnixNano(),
		Payload:   payload,
		Metadata:  msg.GetMetadata(),
	})
}

// Unmarshal 反序列化消息，Payload 解码为通用 JSON 值
func Unmarshal(data []byte) (*Message, error) {
	var wire envelope
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}

	var payload any
	if len(wire.Payload) > 0 {
		if err := json.Unmarshal(wire.Payload, &payload); err != nil {
			return nil, err
		}
	}
	if wire.Metadata == nil {
		wire.Metadata = make(map[string]any)
	}

	return &Message{
		ID:        wire.ID,
		Type:      wire.Type,
		Timestamp: time.Unix(0, wire.Timestamp),
		Payload:   payload,
		Metadata:  wire.Metadata,
	}, nil
}
