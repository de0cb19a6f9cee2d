package service

import (
	"context"

	"conference/auth"
	"conference/domain"
	"conference/validation"
)

// ProfileService 用户资料
type ProfileService struct {
	repos Repositories
}

func NewProfileService(repos Repositories) *ProfileService {
	return &ProfileService{repos: repos}
}

// profileOf 读取当前用户资料，不存在时创建
func (s *ProfileService) profileOf(ctx context.Context, u *auth.User) (*domain.Profile, error) {
	if err := requireUser(u); err != nil {
		return nil, err
	}
	p, err := s.repos.Profiles().Get(ctx, u.ID)
	if err == nil {
		return p, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	p = &domain.Profile{
		UserID:       u.ID,
		DisplayName:  u.Nickname,
		MainEmail:    u.Email,
		TeeShirtSize: domain.TeeShirtNotSpecified,
	}
	if err := s.repos.Profiles().Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProfile 返回当前用户资料
func (s *ProfileService) GetProfile(ctx context.Context, u *auth.User) (*ProfileForm, error) {
	p, err := s.profileOf(ctx, u)
	if err != nil {
		return nil, err
	}
	return profileToForm(p), nil
}

// SaveProfile 更新非空的 displayName 与 teeShirtSize
func (s *ProfileService) SaveProfile(ctx context.Context, u *auth.User, form ProfileMiniForm) (*ProfileForm, error) {
	if form.TeeShirtSize != "" {
		if err := validation.ValidateEnum(form.TeeShirtSize, "teeShirtSize", domain.TeeShirtSizes()); err != nil {
			return nil, err
		}
	}

	p, err := s.profileOf(ctx, u)
	if err != nil {
		return nil, err
	}
	changed := false
	if form.DisplayName != "" {
		p.DisplayName = form.DisplayName
		changed = true
	}
	if form.TeeShirtSize != "" {
		p.TeeShirtSize = domain.TeeShirtSize(form.TeeShirtSize)
		changed = true
	}
	if changed {
		if err := s.repos.Profiles().Save(ctx, p); err != nil {
			return nil, err
		}
	}
	return profileToForm(p), nil
}

// displayNames 批量读取组织者显示名
func (s *ProfileService) displayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	profiles, err := s.repos.Profiles().GetMulti(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(profiles))
	for id, p := range profiles {
		names[id] = p.DisplayName
	}
	return names, nil
}
