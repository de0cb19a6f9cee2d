package service

import (
	"context"
	stdErrors "errors"
	"math/rand/v2"

	"conference/cache"
	"conference/logging"
)

// FeaturedSpeakerService 推荐演讲者：在同一会议中主讲多个场次的演讲者
type FeaturedSpeakerService struct {
	repos    Repositories
	cache    cache.Store
	speakers *SpeakerService
	logger   logging.Logger
	pick     func(n int) int
}

func NewFeaturedSpeakerService(repos Repositories, store cache.Store, speakers *SpeakerService, logger logging.Logger) *FeaturedSpeakerService {
	return &FeaturedSpeakerService{
		repos:    repos,
		cache:    store,
		speakers: speakers,
		logger:   logger.WithFields(logging.String("service", "featured_speaker")),
		pick:     rand.IntN,
	}
}

// Compute 从候选演讲者中随机选一位写入缓存，没有候选时不做任何事
func (s *FeaturedSpeakerService) Compute(ctx context.Context, speakerKeys []string, websafeConferenceKey string) error {
	var candidates []string
	for _, key := range speakerKeys {
		if key == "" {
			continue
		}
		n, err := s.repos.Sessions().CountBySpeakerInConference(ctx, key, websafeConferenceKey)
		if err != nil {
			return err
		}
		if n > 1 {
			candidates = append(candidates, key)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	featured := candidates[s.pick(len(candidates))]
	if err := s.cache.Set(ctx, cache.KeyFeaturedSpeaker, featured, 0); err != nil {
		return err
	}
	s.logger.Info(ctx, "featured speaker cached",
		logging.String("speaker", featured),
		logging.Int("candidates", len(candidates)))
	return nil
}

// Get 当前推荐演讲者
func (s *FeaturedSpeakerService) Get(ctx context.Context) (*FeaturedSpeakerForm, error) {
	key, err := s.cache.Get(ctx, cache.KeyFeaturedSpeaker)
	if stdErrors.Is(err, cache.ErrMiss) {
		return &FeaturedSpeakerForm{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := &FeaturedSpeakerForm{WebsafeSpeakerKey: key}
	speaker, err := s.speakers.Get(ctx, key)
	switch {
	case err == nil:
		out.Speaker = speaker
	case isNotFound(err):
		s.logger.Warn(ctx, "featured speaker no longer exists", logging.String("speaker", key))
	default:
		return nil, err
	}
	return out, nil
}
