package domain

import "time"

// 会议创建时的默认值
const (
	DefaultCity = "Default City"
)

// DefaultTopics 未指定主题时使用的默认主题
func DefaultTopics() []string {
	return []string{"Default", "Topic"}
}

// Conference 会议实体，父键为组织者的 Profile
type Conference struct {
	Key             *Key
	Name            string
	Description     string
	OrganizerUserID string
	Topics          []string
	City            string
	StartDate       *time.Time
	EndDate         *time.Time
	Month           int
	MaxAttendees    int
	SeatsAvailable  int
}

// WebsafeKey 返回会议的 websafe 键
func (c *Conference) WebsafeKey() string {
	return c.Key.Encode()
}

// OwnedBy 判断会议是否由指定用户创建
func (c *Conference) OwnedBy(userID string) bool {
	return c.OrganizerUserID == userID
}

// SetStartDate 设置开始日期并同步月份
func (c *Conference) SetStartDate(d *time.Time) {
	c.StartDate = d
	if d != nil {
		c.Month = int(d.Month())
	} else {
		c.Month = 0
	}
}
