// Package tasks 定义后台任务的消息类型与处理器
package tasks

import (
	"context"
	"fmt"
	"strings"

	"conference/logging"
	"conference/mail"
	"conference/messaging"
	"conference/messaging/middleware"
)

// 任务消息类型
const (
	TypeSendConfirmationEmail = "send_confirmation_email"
	TypeCacheFeaturedSpeaker  = "cache_featured_speaker"
)

// SpeakerKeySeparator 演讲者键列表的分隔符
const SpeakerKeySeparator = "|||"

// SendConfirmationEmail 创建会议后的确认邮件
type SendConfirmationEmail struct {
	Email          string `json:"email"`
	ConferenceInfo string `json:"conferenceInfo"`
}

// CacheFeaturedSpeaker 新增场次后重新计算推荐演讲者
type CacheFeaturedSpeaker struct {
	Speakers             string `json:"speakers"`
	WebsafeConferenceKey string `json:"websafe_conference_key"`
}

// SpeakerKeys 拆分演讲者键
func (p CacheFeaturedSpeaker) SpeakerKeys() []string {
	if p.Speakers == "" {
		return nil
	}
	return strings.Split(p.Speakers, SpeakerKeySeparator)
}

// NewSendConfirmationEmail 构造确认邮件任务
func NewSendConfirmationEmail(email, conferenceInfo string) *messaging.Message {
	return messaging.NewMessage(TypeSendConfirmationEmail, SendConfirmationEmail{
		Email:          email,
		ConferenceInfo: conferenceInfo,
	})
}

// NewCacheFeaturedSpeaker 构造推荐演讲者任务
func NewCacheFeaturedSpeaker(speakerKeys []string, websafeConferenceKey string) *messaging.Message {
	return messaging.NewMessage(TypeCacheFeaturedSpeaker, CacheFeaturedSpeaker{
		Speakers:             strings.Join(speakerKeys, SpeakerKeySeparator),
		WebsafeConferenceKey: websafeConferenceKey,
	})
}

// FeaturedSpeakerComputer 推荐演讲者计算
type FeaturedSpeakerComputer interface {
	Compute(ctx context.Context, speakerKeys []string, websafeConferenceKey string) error
}

// ConfirmationEmailHandler 发送会议创建确认邮件
func ConfirmationEmailHandler(mailer mail.Mailer) messaging.IMessageHandler {
	return messaging.NewHandler(TypeSendConfirmationEmail, func(ctx context.Context, msg messaging.IMessage) error {
		var p SendConfirmationEmail
		if err := messaging.DecodePayload(msg, &p); err != nil {
			return middleware.Permanent(err)
		}
		if p.Email == "" {
			return middleware.Permanent(fmt.Errorf("confirmation email without recipient"))
		}
		return mailer.Send(ctx, mail.Message{
			To:      p.Email,
			Subject: "You created a new Conference!",
			Body:    "Hi, you have created a following conference:\r\n\r\n" + p.ConferenceInfo,
		})
	})
}

// FeaturedSpeakerHandler 计算并缓存推荐演讲者
func FeaturedSpeakerHandler(computer FeaturedSpeakerComputer) messaging.IMessageHandler {
	return messaging.NewHandler(TypeCacheFeaturedSpeaker, func(ctx context.Context, msg messaging.IMessage) error {
		var p CacheFeaturedSpeaker
		if err := messaging.DecodePayload(msg, &p); err != nil {
			return middleware.Permanent(err)
		}
		return computer.Compute(ctx, p.SpeakerKeys(), p.WebsafeConferenceKey)
	})
}

// Subscriber 可订阅处理器的总线
type Subscriber interface {
	Subscribe(ctx context.Context, messageType string, handler messaging.IMessageHandler) error
}

// Register 在总线上订阅全部任务处理器
func Register(ctx context.Context, bus Subscriber, mailer mail.Mailer, computer FeaturedSpeakerComputer) error {
	handlers := []messaging.IMessageHandler{
		ConfirmationEmailHandler(mailer),
		FeaturedSpeakerHandler(computer),
	}
	for _, h := range handlers {
		if err := bus.Subscribe(ctx, h.Type(), h); err != nil {
			return fmt.Errorf("subscribe %s: %w", h.Type(), err)
		}
		logging.ComponentLogger("tasks").Debug(ctx, "task handler registered", logging.String("type", h.Type()))
	}
	return nil
}
