// Package natsjetstream 基于 NATS JetStream 实现消息传输
//
// 所有任务写入同一个 Stream（SubjectPrefix + ">"），每种消息类型一个持久化队列订阅。
package natsjetstream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"conference/logging"
	"conference/messaging"
)

// Config JetStream 传输配置
type Config struct {
	URL           string
	Stream        string
	SubjectPrefix string
	DurablePrefix string
	AckWait       time.Duration
	MaxAckPending int
	// MaxDeliver 处理失败（Nak）后的最大投递次数
	MaxDeliver int
	Conn       *nats.Conn
	Logger     logging.Logger
}

// withDefaults 填充默认值
func (c Config) withDefaults() Config {
	if c.URL == "" {
		c.URL = nats.DefaultURL
	}
	if c.Stream == "" {
		c.Stream = "CONFERENCE_TASKS"
	}
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = "conference.tasks."
	}
	if c.DurablePrefix == "" {
		c.DurablePrefix = "conference-"
	}
	if c.AckWait <= 0 {
		c.AckWait = 30 * time.Second
	}
	if c.MaxAckPending <= 0 {
		c.MaxAckPending = 256
	}
	if c.MaxDeliver <= 0 {
		c.MaxDeliver = 5
	}
	if c.Logger == nil {
		c.Logger = logging.ComponentLogger("transport.nats")
	}
	return c
}

// Transport 基于 JetStream 的 messaging.Transport
type Transport struct {
	cfg      Config
	logger   logging.Logger
	registry *messaging.HandlerRegistry

	mu       sync.Mutex
	conn     *nats.Conn
	js       nats.JetStreamContext
	ownsConn bool
	subs     map[string]*nats.Subscription
	running  bool
}

// NewTransport 创建 JetStream 传输，连接在 Start 时建立
func NewTransport(cfg Config) *Transport {
	cfg = cfg.withDefaults()
	return &Transport{
		cfg:      cfg,
		logger:   cfg.Logger,
		registry: messaging.NewHandlerRegistry(),
		subs:     make(map[string]*nats.Subscription),
	}
}

// Publish 发布消息并等待 JetStream 确认
func (t *Transport) Publish(ctx context.Context, message messaging.IMessage) error {
	t.mu.Lock()
	js, running := t.js, t.running
	t.mu.Unlock()
	if !running || js == nil {
		return errors.New("nats transport not running")
	}

	data, err := messaging.Marshal(message)
	if err != nil {
		return err
	}
	_, err = js.Publish(t.subjectName(message.GetType()), data, nats.Context(ctx), nats.MsgId(message.GetID()))
	return err
}

// PublishAll 逐条发布
func (t *Transport) PublishAll(ctx context.Context, messages []messaging.IMessage) error {
	for _, msg := range messages {
		if err := t.Publish(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe 登记处理器；运行中立即建立订阅
func (t *Transport) Subscribe(messageType string, handler messaging.IMessageHandler) error {
	if messageType == messaging.Wildcard {
		return errors.New("nats transport does not support wildcard subscriptions")
	}
	t.registry.Add(messageType, handler)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return t.subscribeLocked(messageType)
	}
	return nil
}

// Unsubscribe 移除处理器；该类型没有处理器后排空订阅
func (t *Transport) Unsubscribe(messageType string, handler messaging.IMessageHandler) error {
	if err := t.registry.Remove(messageType, handler); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.registry.Lookup(messageType)) == 0 {
		if sub, ok := t.subs[messageType]; ok {
			_ = sub.Drain()
			delete(t.subs, messageType)
		}
	}
	return nil
}

// Start 建立连接、确保 Stream 存在并订阅已登记的类型
func (t *Transport) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return errors.New("nats transport already running")
	}
	if err := t.connectLocked(); err != nil {
		return err
	}
	if err := t.ensureStreamLocked(); err != nil {
		return err
	}
	for _, mt := range t.registry.Types() {
		if err := t.subscribeLocked(mt); err != nil {
			return err
		}
	}
	t.running = true
	return nil
}

// Close 排空订阅；自建的连接一并关闭
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = false
	for mt, sub := range t.subs {
		_ = sub.Drain()
		delete(t.subs, mt)
	}
	if t.ownsConn && t.conn != nil {
		t.conn.Close()
	}
	t.conn, t.js = nil, nil
	return nil
}

// Stats 返回基础统计
func (t *Transport) Stats() messaging.TransportStats {
	t.mu.Lock()
	running := t.running
	t.mu.Unlock()
	return messaging.TransportStats{
		Running:      running,
		HandlerCount: t.registry.Count(),
		MessageTypes: t.registry.Types(),
	}
}

func (t *Transport) connectLocked() error {
	if t.cfg.Conn != nil {
		t.conn = t.cfg.Conn
	} else {
		conn, err := nats.Connect(t.cfg.URL, nats.Name("conference"))
		if err != nil {
			return fmt.Errorf("connect nats %s: %w", t.cfg.URL, err)
		}
		t.conn = conn
		t.ownsConn = true
	}
	js, err := t.conn.JetStream()
	if err != nil {
		return err
	}
	t.js = js
	return nil
}

func (t *Transport) ensureStreamLocked() error {
	_, err := t.js.StreamInfo(t.cfg.Stream)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) && !strings.Contains(err.Error(), "stream not found") {
		return err
	}
	_, err = t.js.AddStream(streamConfig(t.cfg))
	return err
}

func streamConfig(cfg Config) *nats.StreamConfig {
	return &nats.StreamConfig{
		Name:              cfg.Stream,
		Subjects:          []string{cfg.SubjectPrefix + ">"},
		Retention:         nats.WorkQueuePolicy,
		MaxMsgsPerSubject: -1,
	}
}

func (t *Transport) subscribeLocked(messageType string) error {
	if _, exists := t.subs[messageType]; exists {
		return nil
	}
	durable := t.durableName(messageType)
	sub, err := t.js.QueueSubscribe(t.subjectName(messageType), durable, t.handleMessage,
		nats.ManualAck(),
		nats.Durable(durable),
		nats.AckWait(t.cfg.AckWait),
		nats.MaxAckPending(t.cfg.MaxAckPending),
		nats.MaxDeliver(t.cfg.MaxDeliver))
	if err != nil {
		return err
	}
	t.subs[messageType] = sub
	return nil
}

// handleMessage 处理成功 Ack，失败 Nak 交由 JetStream 重投
func (t *Transport) handleMessage(msg *nats.Msg) {
	ctx := context.Background()

	decoded, err := messaging.Unmarshal(msg.Data)
	if err != nil {
		t.logger.Warn(ctx, "decode nats message failed", logging.String("subject", msg.Subject), logging.Error(err))
		_ = msg.Term()
		return
	}
	if decoded.Type == "" {
		decoded.Type = strings.TrimPrefix(msg.Subject, t.cfg.SubjectPrefix)
	}

	if err := t.dispatch(ctx, decoded); err != nil {
		t.logger.Warn(ctx, "nats message handling failed",
			logging.String("message_type", decoded.Type),
			logging.String("message_id", decoded.ID),
			logging.Error(err))
		_ = msg.Nak()
		return
	}
	if err := msg.Ack(); err != nil {
		t.logger.Warn(ctx, "nats ack failed", logging.Error(err))
	}
}

func (t *Transport) dispatch(ctx context.Context, message messaging.IMessage) error {
	var errs []error
	for _, h := range t.registry.Lookup(message.GetType()) {
		if err := h.Handle(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *Transport) subjectName(messageType string) string {
	return t.cfg.SubjectPrefix + messageType
}

// durableName 消费者名不允许包含 '.'
func (t *Transport) durableName(messageType string) string {
	return strings.ReplaceAll(t.cfg.DurablePrefix+messageType, ".", "_")
}
