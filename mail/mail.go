// Package mail 邮件发送
package mail

import (
	"context"
	"sync"

	"conference/logging"
)

// Message 一封邮件
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer 邮件发送接口
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer 不投递，只写日志
type LogMailer struct {
	logger logging.Logger
}

// NewLogMailer 创建日志邮件发送器
func NewLogMailer(logger logging.Logger) *LogMailer {
	if logger == nil {
		logger = logging.ComponentLogger("mail")
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.Info(ctx, "mail sent",
		logging.String("to", msg.To),
		logging.String("subject", msg.Subject),
		logging.Int("body_bytes", len(msg.Body)),
	)
	return nil
}

// Outbox 记录发出的邮件，用于测试
type Outbox struct {
	mu   sync.Mutex
	sent []Message
}

func (o *Outbox) Send(_ context.Context, msg Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

// Sent 已发送邮件的副本
func (o *Outbox) Sent() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message(nil), o.sent...)
}
