package service

import (
	"conference/domain"
	"conference/filter"
)

// ProfileForm 用户资料
type ProfileForm struct {
	DisplayName            string   `json:"displayName"`
	MainEmail              string   `json:"mainEmail"`
	TeeShirtSize           string   `json:"teeShirtSize"`
	ConferenceKeysToAttend []string `json:"conferenceKeysToAttend"`
}

// ProfileMiniForm 可修改的资料字段
type ProfileMiniForm struct {
	DisplayName  string `json:"displayName"`
	TeeShirtSize string `json:"teeShirtSize"`
}

// ConferenceForm 会议表单，日期格式 YYYY-MM-DD
type ConferenceForm struct {
	Name                 string   `json:"name"`
	Description          string   `json:"description,omitempty"`
	OrganizerUserID      string   `json:"organizerUserId,omitempty"`
	Topics               []string `json:"topics,omitempty"`
	City                 string   `json:"city,omitempty"`
	StartDate            string   `json:"startDate,omitempty"`
	Month                int      `json:"month"`
	MaxAttendees         int      `json:"maxAttendees"`
	SeatsAvailable       int      `json:"seatsAvailable"`
	EndDate              string   `json:"endDate,omitempty"`
	WebsafeKey           string   `json:"websafeKey,omitempty"`
	OrganizerDisplayName string   `json:"organizerDisplayName,omitempty"`
}

// ConferenceForms 会议列表
type ConferenceForms struct {
	Items []ConferenceForm `json:"items"`
}

// ConferenceQueryForms 会议查询条件
type ConferenceQueryForms struct {
	Filters []filter.Spec `json:"filters"`
}

// SessionForm 场次表单，date 为 YYYY-MM-DD，startTime 为 HH:MM
type SessionForm struct {
	Title                string   `json:"title"`
	Highlights           string   `json:"highlights,omitempty"`
	SpeakerEmails        []string `json:"speakerEmails,omitempty"`
	Duration             int      `json:"duration"`
	TypeOfSession        string   `json:"typeOfSession,omitempty"`
	Date                 string   `json:"date"`
	StartTime            string   `json:"startTime"`
	WebsafeConferenceKey string   `json:"websafeConferenceKey,omitempty"`
	WebsafeSessionKey    string   `json:"websafeSessionKey,omitempty"`
}

// SessionForms 场次列表
type SessionForms struct {
	Items []SessionForm `json:"items"`
}

// SessionQueryForms 场次查询条件
type SessionQueryForms struct {
	Filters              []filter.Spec `json:"filters"`
	TypeOfSession        string        `json:"typeOfSession"`
	WebsafeConferenceKey string        `json:"websafeConferenceKey"`
}

// SpeakerForm 演讲者
type SpeakerForm struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email"`
	WebsafeKey string `json:"websafeKey"`
}

// SpeakerForms 演讲者列表
type SpeakerForms struct {
	Items []SpeakerForm `json:"items"`
}

// FeaturedSpeakerForm 推荐演讲者，未计算出时各字段为空
type FeaturedSpeakerForm struct {
	WebsafeSpeakerKey string       `json:"websafeSpeakerKey"`
	Speaker           *SpeakerForm `json:"speaker,omitempty"`
}

// WishlistForm 收藏的场次键
type WishlistForm struct {
	SessionKeys []string `json:"sessionKeys"`
}

// StringMessage 单个字符串
type StringMessage struct {
	Data string `json:"data"`
}

// BooleanMessage 单个布尔值
type BooleanMessage struct {
	Data bool `json:"data"`
}

func profileToForm(p *domain.Profile) *ProfileForm {
	keys := p.ConferenceKeysToAttend
	if keys == nil {
		keys = []string{}
	}
	return &ProfileForm{
		DisplayName:            p.DisplayName,
		MainEmail:              p.MainEmail,
		TeeShirtSize:           string(p.TeeShirtSize),
		ConferenceKeysToAttend: keys,
	}
}

func conferenceToForm(c *domain.Conference, organizerDisplayName string) ConferenceForm {
	return ConferenceForm{
		Name:                 c.Name,
		Description:          c.Description,
		OrganizerUserID:      c.OrganizerUserID,
		Topics:               c.Topics,
		City:                 c.City,
		StartDate:            formatDate(c.StartDate),
		Month:                c.Month,
		MaxAttendees:         c.MaxAttendees,
		SeatsAvailable:       c.SeatsAvailable,
		EndDate:              formatDate(c.EndDate),
		WebsafeKey:           c.WebsafeKey(),
		OrganizerDisplayName: organizerDisplayName,
	}
}

// sessionToForm emails 为演讲者邮箱，按 SpeakerKeys 顺序
func sessionToForm(s *domain.Session, emails []string) SessionForm {
	return SessionForm{
		Title:                s.Title,
		Highlights:           s.Highlights,
		SpeakerEmails:        emails,
		Duration:             s.Duration,
		TypeOfSession:        s.TypeOfSession,
		Date:                 s.DateTime.Format(filter.DateLayout),
		StartTime:            s.DateTime.Format("15:04"),
		WebsafeConferenceKey: s.WebsafeConferenceKey,
		WebsafeSessionKey:    s.WebsafeKey(),
	}
}

func speakerToForm(sp *domain.Speaker) SpeakerForm {
	return SpeakerForm{Name: sp.Name, Email: sp.Email, WebsafeKey: sp.WebsafeKey()}
}

func wishlistToForm(w *domain.Wishlist) *WishlistForm {
	keys := w.SessionKeys
	if keys == nil {
		keys = []string{}
	}
	return &WishlistForm{SessionKeys: keys}
}
