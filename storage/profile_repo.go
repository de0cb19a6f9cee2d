package storage

import (
	"context"

	"conference/domain"
)

var profileSelect = []string{"user_id", "display_name", "main_email", "tee_shirt_size", "conference_keys"}

type profileRepo struct{ s *Store }

func scanProfile(row scanner) (*domain.Profile, error) {
	var (
		p    domain.Profile
		size string
		keys string
	)
	if err := row.Scan(&p.UserID, &p.DisplayName, &p.MainEmail, &size, &keys); err != nil {
		return nil, err
	}
	p.TeeShirtSize = domain.TeeShirtSize(size)
	var err error
	p.ConferenceKeysToAttend, err = decodeList(keys)
	return &p, err
}

func (r *profileRepo) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	row := r.s.sql(ctx).Select(profileSelect...).From(tableProfiles).
		Where("user_id = ?", userID).QueryRow(ctx)
	p, err := scanProfile(row)
	if isNoRows(err) {
		return nil, domain.NewNotFoundError(domain.KindProfile, userID)
	}
	return p, err
}

func (r *profileRepo) GetMulti(ctx context.Context, userIDs []string) (map[string]*domain.Profile, error) {
	out := make(map[string]*domain.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}
	rows, err := r.s.sql(ctx).Select(profileSelect...).From(tableProfiles).WhereIn("user_id", args...).Query(ctx)
	if err != nil {
		return nil, err
	}
	items, err := collect(rows, scanProfile)
	if err != nil {
		return nil, err
	}
	for _, p := range items {
		out[p.UserID] = p
	}
	return out, nil
}

func (r *profileRepo) Save(ctx context.Context, p *domain.Profile) error {
	_, err := r.s.sql(ctx).UpsertInto(tableProfiles).
		Columns(profileSelect...).
		Values(p.UserID, p.DisplayName, p.MainEmail, string(p.TeeShirtSize), encodeList(p.ConferenceKeysToAttend)).
		Key("user_id").
		Exec(ctx)
	return err
}
