// Package service 实现会议系统的业务用例
//
// 服务只依赖 domain 中的仓储接口、缓存与消息发布；认证由调用方完成，
// 需要用户的方法接收已认证的 *auth.User。
package service

import (
	"time"

	"conference/auth"
	"conference/cache"
	"conference/domain"
	"conference/errors"
	"conference/filter"
	"conference/logging"
	"conference/messaging"
)

// Repositories 服务使用的仓储集合
type Repositories interface {
	domain.Transactor
	Conferences() domain.ConferenceRepository
	Profiles() domain.ProfileRepository
	Sessions() domain.SessionRepository
	Speakers() domain.SpeakerRepository
	Wishlists() domain.WishlistRepository
}

// Deps 服务依赖
type Deps struct {
	Repos     Repositories
	Cache     cache.Store
	Publisher messaging.IPublisher
	Logger    logging.Logger
}

// Services 全部服务
type Services struct {
	Profiles        *ProfileService
	Conferences     *ConferenceService
	Announcements   *AnnouncementService
	Speakers        *SpeakerService
	Sessions        *SessionService
	FeaturedSpeaker *FeaturedSpeakerService
	Wishlists       *WishlistService
}

// New 组装全部服务
func New(d Deps) *Services {
	if d.Logger == nil {
		d.Logger = logging.ComponentLogger("service")
	}
	profiles := NewProfileService(d.Repos)
	speakers := NewSpeakerService(d.Repos)
	sessions := NewSessionService(d.Repos, speakers, d.Publisher, d.Logger)
	return &Services{
		Profiles:        profiles,
		Conferences:     NewConferenceService(d.Repos, profiles, d.Publisher, d.Logger),
		Announcements:   NewAnnouncementService(d.Repos, d.Cache, d.Logger),
		Speakers:        speakers,
		Sessions:        sessions,
		FeaturedSpeaker: NewFeaturedSpeakerService(d.Repos, d.Cache, speakers, d.Logger),
		Wishlists:       NewWishlistService(d.Repos, sessions),
	}
}

func conflict(msg string) error {
	return errors.NewError(errors.ErrCodeConflict, msg)
}

func forbidden(msg string) error {
	return errors.NewError(errors.ErrCodeForbidden, msg)
}

func requireUser(u *auth.User) error {
	if u == nil || u.ID == "" {
		return errors.ErrUnauthorized
	}
	return nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(filter.DateLayout)
}

// firstTen 取日期字符串前 10 个字符，兼容带时间的 ISO 格式
func firstTen(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
