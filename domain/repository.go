package domain

import (
	"context"

	"conference/filter"
)

// ConferenceRepository 会议仓储
type ConferenceRepository interface {
	// Get 未找到时返回 ErrEntityNotFound
	Get(ctx context.Context, key *Key) (*Conference, error)
	// GetMulti 忽略不存在的键，结果保持 keys 的顺序
	GetMulti(ctx context.Context, keys []*Key) ([]*Conference, error)
	Save(ctx context.Context, c *Conference) error
	ListByOrganizer(ctx context.Context, userID string) ([]*Conference, error)
	Query(ctx context.Context, plan *filter.Plan) ([]*Conference, error)
	// ListSeatsBetween 返回 min < seatsAvailable <= max 的会议
	ListSeatsBetween(ctx context.Context, min, max int) ([]*Conference, error)
}

// ProfileRepository 用户资料仓储
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	GetMulti(ctx context.Context, userIDs []string) (map[string]*Profile, error)
	Save(ctx context.Context, p *Profile) error
}

// SessionRepository 场次仓储
type SessionRepository interface {
	Get(ctx context.Context, key *Key) (*Session, error)
	GetMulti(ctx context.Context, keys []*Key) ([]*Session, error)
	Save(ctx context.Context, s *Session) error
	ListByConference(ctx context.Context, websafeConferenceKey string) ([]*Session, error)
	ListByConferenceAndType(ctx context.Context, websafeConferenceKey, typeOfSession string) ([]*Session, error)
	ListBySpeaker(ctx context.Context, websafeSpeakerKey string) ([]*Session, error)
	// ListBySpeakers 返回含有任一演讲者的场次
	ListBySpeakers(ctx context.Context, websafeSpeakerKeys []string) ([]*Session, error)
	ListByTypes(ctx context.Context, types []string) ([]*Session, error)
	CountBySpeakerInConference(ctx context.Context, websafeSpeakerKey, websafeConferenceKey string) (int, error)
	Query(ctx context.Context, plan *filter.Plan) ([]*Session, error)
}

// SpeakerRepository 演讲者仓储
type SpeakerRepository interface {
	Get(ctx context.Context, key *Key) (*Speaker, error)
	GetMulti(ctx context.Context, keys []*Key) ([]*Speaker, error)
	FindByEmail(ctx context.Context, email string) (*Speaker, error)
	Save(ctx context.Context, s *Speaker) error
	List(ctx context.Context) ([]*Speaker, error)
}

// WishlistRepository 收藏仓储
type WishlistRepository interface {
	// GetByProfile 未找到时返回 ErrEntityNotFound
	GetByProfile(ctx context.Context, userID string) (*Wishlist, error)
	Save(ctx context.Context, w *Wishlist) error
}

// Transactor 在事务中执行 fn，fn 内通过 ctx 访问的仓储共享同一事务
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// IDGenerator 实体 ID 分配
type IDGenerator interface {
	NextID() (int64, error)
}
