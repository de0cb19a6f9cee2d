package service

import (
	"context"
	"slices"

	"conference/auth"
	"conference/domain"
)

// WishlistService 用户收藏的场次
type WishlistService struct {
	repos    Repositories
	sessions *SessionService
}

func NewWishlistService(repos Repositories, sessions *SessionService) *WishlistService {
	return &WishlistService{repos: repos, sessions: sessions}
}

// wishlistOf 读取用户收藏，不存在时创建空收藏
func (s *WishlistService) wishlistOf(ctx context.Context, u *auth.User) (*domain.Wishlist, error) {
	if err := requireUser(u); err != nil {
		return nil, err
	}
	w, err := s.repos.Wishlists().GetByProfile(ctx, u.ID)
	if err == nil {
		return w, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	w = &domain.Wishlist{Key: domain.NewKey(domain.KindWishlist, 0, domain.ProfileKey(u.ID))}
	if err := s.repos.Wishlists().Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Add 收藏场次
func (s *WishlistService) Add(ctx context.Context, u *auth.User, websafeSessionKey string) (*WishlistForm, error) {
	return s.update(ctx, u, websafeSessionKey, func(w *domain.Wishlist, wssk string) error {
		if !w.Add(wssk) {
			return conflict("You already have this session in your wishlist.")
		}
		return nil
	})
}

// Remove 取消收藏
func (s *WishlistService) Remove(ctx context.Context, u *auth.User, websafeSessionKey string) (*WishlistForm, error) {
	return s.update(ctx, u, websafeSessionKey, func(w *domain.Wishlist, wssk string) error {
		if !w.Remove(wssk) {
			return conflict("This session is not in your wishlist.")
		}
		return nil
	})
}

func (s *WishlistService) update(ctx context.Context, u *auth.User, websafeSessionKey string, change func(*domain.Wishlist, string) error) (*WishlistForm, error) {
	if err := requireUser(u); err != nil {
		return nil, err
	}
	key, err := domain.DecodeKind(websafeSessionKey, domain.KindSession)
	if err != nil {
		return nil, err
	}

	var out *WishlistForm
	err = s.repos.RunInTx(ctx, func(ctx context.Context) error {
		session, err := s.repos.Sessions().Get(ctx, key)
		if err != nil {
			return err
		}
		w, err := s.wishlistOf(ctx, u)
		if err != nil {
			return err
		}
		if err := change(w, session.WebsafeKey()); err != nil {
			return err
		}
		if err := s.repos.Wishlists().Save(ctx, w); err != nil {
			return err
		}
		out = wishlistToForm(w)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Sessions 收藏中的场次
func (s *WishlistService) Sessions(ctx context.Context, u *auth.User) (*SessionForms, error) {
	items, err := s.wishlistSessions(ctx, u)
	if err != nil {
		return nil, err
	}
	return s.sessions.toForms(ctx, items)
}

// SessionsBySpeakers 与收藏场次有共同演讲者的全部场次
func (s *WishlistService) SessionsBySpeakers(ctx context.Context, u *auth.User) (*SessionForms, error) {
	items, err := s.wishlistSessions(ctx, u)
	if err != nil {
		return nil, err
	}
	var speakerKeys []string
	for _, session := range items {
		for _, key := range session.SpeakerKeys {
			if !slices.Contains(speakerKeys, key) {
				speakerKeys = append(speakerKeys, key)
			}
		}
	}
	if len(speakerKeys) == 0 {
		return &SessionForms{Items: []SessionForm{}}, nil
	}
	related, err := s.repos.Sessions().ListBySpeakers(ctx, speakerKeys)
	if err != nil {
		return nil, err
	}
	return s.sessions.toForms(ctx, related)
}

// SessionsByTypes 与收藏场次类型相同的全部场次
func (s *WishlistService) SessionsByTypes(ctx context.Context, u *auth.User) (*SessionForms, error) {
	items, err := s.wishlistSessions(ctx, u)
	if err != nil {
		return nil, err
	}
	var types []string
	for _, session := range items {
		if session.TypeOfSession != "" && !slices.Contains(types, session.TypeOfSession) {
			types = append(types, session.TypeOfSession)
		}
	}
	if len(types) == 0 {
		return &SessionForms{Items: []SessionForm{}}, nil
	}
	related, err := s.repos.Sessions().ListByTypes(ctx, types)
	if err != nil {
		return nil, err
	}
	return s.sessions.toForms(ctx, related)
}

func (s *WishlistService) wishlistSessions(ctx context.Context, u *auth.User) ([]*domain.Session, error) {
	w, err := s.wishlistOf(ctx, u)
	if err != nil {
		return nil, err
	}
	return s.sessions.sessions(ctx, w.SessionKeys)
}
