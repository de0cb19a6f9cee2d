// Package redisstreams 基于 Redis Streams 消费组实现消息传输
//
// 每种消息类型对应一个 Stream（StreamPrefix + type），多个实例共享一个消费组，
// 一条消息只被组内一个消费者处理。
package redisstreams

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"conference/logging"
	"conference/messaging"
)

// client 依赖的 go-redis 命令子集（便于测试替换）
type client interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	Close() error
}

// Config Redis Streams 传输配置
type Config struct {
	Client       redis.UniversalClient
	Addr         string
	Password     string
	DB           int
	StreamPrefix string
	GroupName    string
	ConsumerName string
	BlockTimeout time.Duration
	ReadCount    int64
	// MaxLen 每个 Stream 的近似最大长度，0 表示不裁剪
	MaxLen         int64
	MinReadBackoff time.Duration
	MaxReadBackoff time.Duration
	Logger         logging.Logger
}

// Transport 基于 Redis Streams 的 messaging.Transport
type Transport struct {
	cfg       Config
	client    client
	ownClient bool
	logger    logging.Logger
	registry  *messaging.HandlerRegistry

	mu      sync.Mutex
	readers map[string]bool
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewTransport 创建传输；未提供 Client 时按 Addr 建立连接
func NewTransport(cfg Config) (*Transport, error) {
	if cfg.StreamPrefix == "" {
		cfg.StreamPrefix = "conference:tasks:"
	}
	if cfg.GroupName == "" {
		cfg.GroupName = "conference"
	}
	if cfg.ConsumerName == "" {
		cfg.ConsumerName = "consumer-" + uuid.NewString()
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = 5 * time.Second
	}
	if cfg.ReadCount <= 0 {
		cfg.ReadCount = 10
	}
	if cfg.MinReadBackoff <= 0 {
		cfg.MinReadBackoff = 100 * time.Millisecond
	}
	if cfg.MaxReadBackoff <= 0 {
		cfg.MaxReadBackoff = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.ComponentLogger("transport.redisstreams")
	}

	var cl client
	own := false
	if cfg.Client != nil {
		cl = cfg.Client
	} else {
		if cfg.Addr == "" {
			return nil, errors.New("redis streams: addr or client required")
		}
		cl = redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
		own = true
	}

	return newTransport(cfg, cl, own), nil
}

func newTransport(cfg Config, cl client, own bool) *Transport {
	return &Transport{
		cfg:       cfg,
		client:    cl,
		ownClient: own,
		logger:    cfg.Logger,
		registry:  messaging.NewHandlerRegistry(),
		readers:   make(map[string]bool),
	}
}

// Publish 将消息写入对应的 Stream
func (t *Transport) Publish(ctx context.Context, message messaging.IMessage) error {
	values, err := encodeMessage(message)
	if err != nil {
		return err
	}
	args := &redis.XAddArgs{Stream: t.streamName(message.GetType()), Values: values}
	if t.cfg.MaxLen > 0 {
		args.MaxLen = t.cfg.MaxLen
		args.Approx = true
	}
	return t.client.XAdd(ctx, args).Err()
}

// PublishAll 逐条写入（Streams 不支持多条原子追加）
func (t *Transport) PublishAll(ctx context.Context, messages []messaging.IMessage) error {
	for _, msg := range messages {
		if err := t.Publish(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe 登记处理器；运行中订阅新类型会立即启动读取协程
func (t *Transport) Subscribe(messageType string, handler messaging.IMessageHandler) error {
	if messageType == messaging.Wildcard {
		return errors.New("redis streams transport does not support wildcard subscriptions")
	}
	t.registry.Add(messageType, handler)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		t.startReaderLocked(messageType)
	}
	return nil
}

// Unsubscribe 移除处理器，读取协程保持运行直至关闭
func (t *Transport) Unsubscribe(messageType string, handler messaging.IMessageHandler) error {
	return t.registry.Remove(messageType, handler)
}

// Start 为每个已订阅类型启动消费协程
func (t *Transport) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return fmt.Errorf("redis streams transport already running")
	}
	t.ctx, t.cancel = context.WithCancel(ctx)
	t.running = true
	for _, mt := range t.registry.Types() {
		t.startReaderLocked(mt)
	}
	return nil
}

// Close 停止消费者；自建的客户端一并关闭
func (t *Transport) Close() error {
	t.mu.Lock()
	running := t.running
	t.running = false
	cancel := t.cancel
	t.readers = make(map[string]bool)
	t.mu.Unlock()

	if running && cancel != nil {
		cancel()
		t.wg.Wait()
	}
	if t.ownClient {
		return t.client.Close()
	}
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

func (t *Transport) startReaderLocked(messageType string) {
	if t.readers[messageType] {
		return
	}
	t.readers[messageType] = true
	t.wg.Add(1)
	go t.readLoop(t.ctx, messageType)
}

func (t *Transport) readLoop(ctx context.Context, messageType string) {
	defer t.wg.Done()

	stream := t.streamName(messageType)
	if err := t.ensureGroup(ctx, stream); err != nil {
		t.logger.Warn(ctx, "ensure group failed", logging.String("stream", stream), logging.Error(err))
	}

	args := &redis.XReadGroupArgs{
		Group:    t.cfg.GroupName,
		Consumer: t.cfg.ConsumerName,
		Streams:  []string{stream, ">"},
		Count:    t.cfg.ReadCount,
		Block:    t.cfg.BlockTimeout,
	}
	backoff := t.cfg.MinReadBackoff

	for ctx.Err() == nil {
		res, err := t.client.XReadGroup(ctx, args).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			t.logger.Warn(ctx, "xreadgroup failed", logging.Duration("backoff", backoff), logging.Error(err))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			backoff = min(backoff*2, t.cfg.MaxReadBackoff)
			continue
		}
		backoff = t.cfg.MinReadBackoff

		for _, streamRes := range res {
			for _, entry := range streamRes.Messages {
				t.consume(ctx, streamRes.Stream, entry)
			}
		}
	}
}

func (t *Transport) consume(ctx context.Context, stream string, entry redis.XMessage) {
	msg, err := decodeMessage(entry)
	if err != nil {
		t.logger.Warn(ctx, "decode redis stream entry failed", logging.String("entry", entry.ID), logging.Error(err))
	} else {
		for _, h := range t.registry.Lookup(msg.GetType()) {
			if herr := h.Handle(ctx, msg); herr != nil {
				t.logger.Warn(ctx, "message handler failed",
					logging.String("message_type", msg.GetType()),
					logging.String("handler", h.Type()),
					logging.Error(herr))
			}
		}
	}
	if ackErr := t.client.XAck(ctx, stream, t.cfg.GroupName, entry.ID).Err(); ackErr != nil {
		t.logger.Warn(ctx, "xack failed", logging.Error(ackErr))
	}
}

func (t *Transport) ensureGroup(ctx context.Context, stream string) error {
	err := t.client.XGroupCreateMkStream(ctx, stream, t.cfg.GroupName, "0").Err()
	if err == nil || strings.Contains(strings.ToUpper(err.Error()), "BUSYGROUP") {
		return nil
	}
	return err
}

func (t *Transport) streamName(messageType string) string {
	return t.cfg.StreamPrefix + messageType
}

// encodeMessage 将消息展开为 Stream 字段；payload 与 metadata 以 JSON 字符串存放
func encodeMessage(msg messaging.IMessage) (map[string]any, error) {
	data, err := messaging.Marshal(msg)
	if err != nil {
		return nil, err
	}
	ts := msg.GetTimestamp()
	if ts.IsZero() {
		ts = time.Now()
	}
	return map[string]any{
		"id":        msg.GetID(),
		"type":      msg.GetType(),
		"timestamp": ts.UnixNano(),
		"envelope":  string(data),
	}, nil
}

func decodeMessage(entry redis.XMessage) (messaging.IMessage, error) {
	raw, _ := entry.Values["envelope"].(string)
	if raw == "" {
		return nil, fmt.Errorf("entry %s has no envelope", entry.ID)
	}

	msg, err := messaging.Unmarshal([]byte(raw))
	if err != nil {
		return nil, err
	}
	if msg.ID == "" {
		msg.ID = entry.ID
	}
	if msg.Type == "" {
		msg.Type, _ = entry.Values["type"].(string)
	}
	if msg.Timestamp.UnixNano() == 0 {
		if s, ok := entry.Values["timestamp"].(string); ok {
			if ns, perr := strconv.ParseInt(s, 10, 64); perr == nil {
				msg.Timestamp = time.Unix(0, ns)
			}
		}
	}
	return msg, nil
}
