package service

import (
	"context"
	"strings"

	"conference/domain"
	"conference/validation"
)

// SpeakerService 演讲者
type SpeakerService struct {
	repos Repositories
}

func NewSpeakerService(repos Repositories) *SpeakerService {
	return &SpeakerService{repos: repos}
}

// FindOrCreate 按邮箱查找演讲者，不存在时创建，返回 websafe 键
func (s *SpeakerService) FindOrCreate(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := validation.ValidateEmail(email); err != nil {
		return "", err
	}
	sp, err := s.repos.Speakers().FindByEmail(ctx, email)
	if err == nil {
		return sp.WebsafeKey(), nil
	}
	if !isNotFound(err) {
		return "", err
	}
	sp = &domain.Speaker{Email: email}
	if err := s.repos.Speakers().Save(ctx, sp); err != nil {
		return "", err
	}
	return sp.WebsafeKey(), nil
}

// List 全部演讲者
func (s *SpeakerService) List(ctx context.Context) (*SpeakerForms, error) {
	items, err := s.repos.Speakers().List(ctx)
	if err != nil {
		return nil, err
	}
	out := &SpeakerForms{Items: make([]SpeakerForm, 0, len(items))}
	for _, sp := range items {
		out.Items = append(out.Items, speakerToForm(sp))
	}
	return out, nil
}

// Get 按 websafe 键读取演讲者
func (s *SpeakerService) Get(ctx context.Context, websafeKey string) (*SpeakerForm, error) {
	key, err := domain.DecodeKind(websafeKey, domain.KindSpeaker)
	if err != nil {
		return nil, err
	}
	sp, err := s.repos.Speakers().Get(ctx, key)
	if err != nil {
		return nil, err
	}
	out := speakerToForm(sp)
	return &out, nil
}

// emails 将演讲者键映射为邮箱，缺失的键被忽略
func (s *SpeakerService) emails(ctx context.Context, websafeKeys []string) (map[string]string, error) {
	keys := make([]*domain.Key, 0, len(websafeKeys))
	for _, wsk := range websafeKeys {
		if key, err := domain.DecodeKind(wsk, domain.KindSpeaker); err == nil {
			keys = append(keys, key)
		}
	}
	speakers, err := s.repos.Speakers().GetMulti(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(speakers))
	for _, sp := range speakers {
		out[sp.WebsafeKey()] = sp.Email
	}
	return out, nil
}
