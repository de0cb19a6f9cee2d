package domain

import "slices"

// TeeShirtSize T 恤尺码
type TeeShirtSize string

// 可选尺码
const (
	TeeShirtNotSpecified TeeShirtSize = "NOT_SPECIFIED"
	TeeShirtXSM          TeeShirtSize = "XS_M"
	TeeShirtXSW          TeeShirtSize = "XS_W"
	TeeShirtSM           TeeShirtSize = "S_M"
	TeeShirtSW           TeeShirtSize = "S_W"
	TeeShirtMM           TeeShirtSize = "M_M"
	TeeShirtMW           TeeShirtSize = "M_W"
	TeeShirtLM           TeeShirtSize = "L_M"
	TeeShirtLW           TeeShirtSize = "L_W"
	TeeShirtXLM          TeeShirtSize = "XL_M"
	TeeShirtXLW          TeeShirtSize = "XL_W"
	TeeShirtXXLM         TeeShirtSize = "XXL_M"
	TeeShirtXXLW         TeeShirtSize = "XXL_W"
	TeeShirtXXXLM        TeeShirtSize = "XXXL_M"
	TeeShirtXXXLW        TeeShirtSize = "XXXL_W"
)

// TeeShirtSizes 全部合法尺码
func TeeShirtSizes() []string {
	return []string{
		string(TeeShirtNotSpecified),
		string(TeeShirtXSM), string(TeeShirtXSW),
		string(TeeShirtSM), string(TeeShirtSW),
		string(TeeShirtMM), string(TeeShirtMW),
		string(TeeShirtLM), string(TeeShirtLW),
		string(TeeShirtXLM), string(TeeShirtXLW),
		string(TeeShirtXXLM), string(TeeShirtXXLW),
		string(TeeShirtXXXLM), string(TeeShirtXXXLW),
	}
}

// Profile 用户资料，键名为用户 ID
type Profile struct {
	UserID                 string
	DisplayName            string
	MainEmail              string
	TeeShirtSize           TeeShirtSize
	ConferenceKeysToAttend []string
}

// Key 返回资料键
func (p *Profile) Key() *Key {
	return ProfileKey(p.UserID)
}

// IsAttending 是否已报名会议
func (p *Profile) IsAttending(websafeConferenceKey string) bool {
	return slices.Contains(p.ConferenceKeysToAttend, websafeConferenceKey)
}

// Attend 记录报名
func (p *Profile) Attend(websafeConferenceKey string) {
	p.ConferenceKeysToAttend = append(p.ConferenceKeysToAttend, websafeConferenceKey)
}

// Leave 取消报名，未报名时返回 false
func (p *Profile) Leave(websafeConferenceKey string) bool {
	i := slices.Index(p.ConferenceKeysToAttend, websafeConferenceKey)
	if i < 0 {
		return false
	}
	p.ConferenceKeysToAttend = slices.Delete(p.ConferenceKeysToAttend, i, i+1)
	return true
}
