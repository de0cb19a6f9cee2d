package storage

import (
	"context"

	"conference/domain"
)

var wishlistSelect = []string{"id", "profile_user_id", "session_keys"}

type wishlistRepo struct{ s *Store }

func scanWishlist(row scanner) (*domain.Wishlist, error) {
	var (
		w       domain.Wishlist
		id      int64
		userID  string
		entries string
	)
	if err := row.Scan(&id, &userID, &entries); err != nil {
		return nil, err
	}
	w.Key = domain.NewKey(domain.KindWishlist, id, domain.ProfileKey(userID))
	var err error
	w.SessionKeys, err = decodeList(entries)
	return &w, err
}

func (r *wishlistRepo) GetByProfile(ctx context.Context, userID string) (*domain.Wishlist, error) {
	row := r.s.sql(ctx).Select(wishlistSelect...).From(tableWishlists).
		Where("profile_user_id = ?", userID).QueryRow(ctx)
	w, err := scanWishlist(row)
	if isNoRows(err) {
		return nil, domain.NewNotFoundError(domain.KindWishlist, userID)
	}
	return w, err
}

// Save 父键必须是 Profile
func (r *wishlistRepo) Save(ctx context.Context, w *domain.Wishlist) error {
	if w.Key == nil || w.Key.Parent == nil || w.Key.Parent.Kind != domain.KindProfile {
		return domain.NewInvalidKeyError(w.Key.Encode(), nil)
	}
	if w.Key.ID == 0 {
		id, err := r.s.nextID()
		if err != nil {
			return err
		}
		w.Key = domain.NewKey(domain.KindWishlist, id, w.Key.Parent)
	}
	_, err := r.s.sql(ctx).UpsertInto(tableWishlists).
		Columns(wishlistSelect...).
		Values(w.Key.ID, w.Key.Parent.Name, encodeList(w.SessionKeys)).
		Key("id").
		Exec(ctx)
	return err
}
