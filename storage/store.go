package storage

import (
	"context"
	"database/sql"
	"errors"

	core "conference/data/db"
	dbsql "conference/data/db/sql"
	"conference/domain"
)

// Store 聚合全部仓储，共享连接与 ID 生成器
type Store struct {
	db  core.IDatabase
	ids domain.IDGenerator
}

// New 创建 Store
func New(database core.IDatabase, ids domain.IDGenerator) *Store {
	return &Store{db: database, ids: ids}
}

// RunInTx 实现 domain.Transactor
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return core.RunInTx(ctx, s.db, fn)
}

// Conferences 会议仓储
func (s *Store) Conferences() domain.ConferenceRepository { return &conferenceRepo{s} }

// Profiles 用户资料仓储
func (s *Store) Profiles() domain.ProfileRepository { return &profileRepo{s} }

// Sessions 场次仓储
func (s *Store) Sessions() domain.SessionRepository { return &sessionRepo{s} }

// Speakers 演讲者仓储
func (s *Store) Speakers() domain.SpeakerRepository { return &speakerRepo{s} }

// Wishlists 收藏仓储
func (s *Store) Wishlists() domain.WishlistRepository { return &wishlistRepo{s} }

// sql 返回当前上下文的执行者（事务优先）
func (s *Store) sql(ctx context.Context) dbsql.ISql {
	return dbsql.New(core.FromContext(ctx, s.db))
}

func (s *Store) nextID() (int64, error) {
	return s.ids.NextID()
}

// scanner 抽象 IRows 与 IRow
type scanner interface {
	Scan(dest ...any) error
}

func collect[T any](rows core.IRows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// idsOf 过滤出指定类型的键 ID
func idsOf(keys []*domain.Key, kind string) []any {
	ids := make([]any, 0, len(keys))
	for _, k := range keys {
		if k != nil && k.Kind == kind && k.ID > 0 {
			ids = append(ids, k.ID)
		}
	}
	return ids
}

// orderByKeys 按 keys 顺序排列，忽略缺失与父键不符的实体
func orderByKeys[T any](keys []*domain.Key, items []T, keyOf func(T) *domain.Key) []T {
	byID := make(map[int64]T, len(items))
	for _, it := range items {
		byID[keyOf(it).ID] = it
	}
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		if k == nil {
			continue
		}
		if it, ok := byID[k.ID]; ok && keyOf(it).Equal(k) {
			out = append(out, it)
		}
	}
	return out
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// selectWhere 仅暴露条件追加
type selectWhere interface {
	Where(cond string, args ...any) dbsql.ISelectBuilder
	WhereIn(col string, values ...any) dbsql.ISelectBuilder
}
