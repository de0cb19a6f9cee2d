package domain

import (
	"slices"
	"time"
)

// Session 会议场次，父键为所属会议
type Session struct {
	Key                  *Key
	Title                string
	Highlights           string
	WebsafeConferenceKey string
	SpeakerKeys          []string
	Duration             int
	TypeOfSession        string
	DateTime             time.Time
	Hour                 int
}

// WebsafeKey 返回场次的 websafe 键
func (s *Session) WebsafeKey() string {
	return s.Key.Encode()
}

// HasSpeaker 场次是否有指定演讲者
func (s *Session) HasSpeaker(websafeSpeakerKey string) bool {
	return slices.Contains(s.SpeakerKeys, websafeSpeakerKey)
}

// Speaker 演讲者，按邮箱唯一
type Speaker struct {
	Key   *Key
	Name  string
	Email string
}

// WebsafeKey 返回演讲者的 websafe 键
func (s *Speaker) WebsafeKey() string {
	return s.Key.Encode()
}

// Wishlist 用户收藏的场次，父键为 Profile
type Wishlist struct {
	Key         *Key
	SessionKeys []string
}

// Contains 是否已收藏场次
func (w *Wishlist) Contains(websafeSessionKey string) bool {
	return slices.Contains(w.SessionKeys, websafeSessionKey)
}

// Add 收藏场次，已存在时返回 false
func (w *Wishlist) Add(websafeSessionKey string) bool {
	if w.Contains(websafeSessionKey) {
		return false
	}
	w.SessionKeys = append(w.SessionKeys, websafeSessionKey)
	return true
}

// Remove 取消收藏，不存在时返回 false
func (w *Wishlist) Remove(websafeSessionKey string) bool {
	i := slices.Index(w.SessionKeys, websafeSessionKey)
	if i < 0 {
		return false
	}
	w.SessionKeys = slices.Delete(w.SessionKeys, i, i+1)
	return true
}
