package service

import (
	"context"
	stdErrors "errors"
	"strings"
	"time"

	"conference/cache"
	"conference/logging"
)

// 余座不超过该值的会议会出现在公告中
const nearlySoldOutSeats = 5

const announcementPrefix = "Last chance to attend! The following conferences are nearly sold out: "

// AnnouncementService 即将售罄公告
type AnnouncementService struct {
	repos  Repositories
	cache  cache.Store
	logger logging.Logger
}

func NewAnnouncementService(repos Repositories, store cache.Store, logger logging.Logger) *AnnouncementService {
	return &AnnouncementService{
		repos:  repos,
		cache:  store,
		logger: logger.WithFields(logging.String("service", "announcement")),
	}
}

// Refresh 重新生成公告，没有即将售罄的会议时清除缓存并返回空串
func (s *AnnouncementService) Refresh(ctx context.Context) (string, error) {
	confs, err := s.repos.Conferences().ListSeatsBetween(ctx, 0, nearlySoldOutSeats)
	if err != nil {
		return "", err
	}
	if len(confs) == 0 {
		if err := s.cache.Delete(ctx, cache.KeyRecentAnnouncements); err != nil {
			return "", err
		}
		return "", nil
	}

	names := make([]string, len(confs))
	for i, c := range confs {
		names[i] = c.Name
	}
	announcement := announcementPrefix + strings.Join(names, ", ")
	if err := s.cache.Set(ctx, cache.KeyRecentAnnouncements, announcement, 0); err != nil {
		return "", err
	}
	return announcement, nil
}

// Get 返回缓存中的公告
func (s *AnnouncementService) Get(ctx context.Context) (*StringMessage, error) {
	v, err := s.cache.Get(ctx, cache.KeyRecentAnnouncements)
	if stdErrors.Is(err, cache.ErrMiss) {
		return &StringMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &StringMessage{Data: v}, nil
}

// Run 按 interval 周期刷新，直到 ctx 结束
func (s *AnnouncementService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.refreshLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshLogged(ctx)
		}
	}
}

func (s *AnnouncementService) refreshLogged(ctx context.Context) {
	announcement, err := s.Refresh(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error(ctx, "refresh announcement failed", logging.Error(err))
		}
		return
	}
	s.logger.Debug(ctx, "announcement refreshed", logging.Bool("empty", announcement == ""))
}
