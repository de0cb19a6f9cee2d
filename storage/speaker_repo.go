package storage

import (
	"context"

	"conference/domain"
)

var speakerSelect = []string{"id", "name", "email"}

type speakerRepo struct{ s *Store }

func scanSpeaker(row scanner) (*domain.Speaker, error) {
	var (
		sp domain.Speaker
		id int64
	)
	if err := row.Scan(&id, &sp.Name, &sp.Email); err != nil {
		return nil, err
	}
	sp.Key = domain.NewKey(domain.KindSpeaker, id, nil)
	return &sp, nil
}

func (r *speakerRepo) Get(ctx context.Context, key *domain.Key) (*domain.Speaker, error) {
	if key == nil || key.Kind != domain.KindSpeaker || key.Parent != nil {
		return nil, domain.NewNotFoundError(domain.KindSpeaker, key.Encode())
	}
	row := r.s.sql(ctx).Select(speakerSelect...).From(tableSpeakers).Where("id = ?", key.ID).QueryRow(ctx)
	sp, err := scanSpeaker(row)
	if isNoRows(err) {
		return nil, domain.NewNotFoundError(domain.KindSpeaker, key.Encode())
	}
	return sp, err
}

func (r *speakerRepo) GetMulti(ctx context.Context, keys []*domain.Key) ([]*domain.Speaker, error) {
	ids := idsOf(keys, domain.KindSpeaker)
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.s.sql(ctx).Select(speakerSelect...).From(tableSpeakers).WhereIn("id", ids...).Query(ctx)
	if err != nil {
		return nil, err
	}
	items, err := collect(rows, scanSpeaker)
	if err != nil {
		return nil, err
	}
	return orderByKeys(keys, items, func(sp *domain.Speaker) *domain.Key { return sp.Key }), nil
}

func (r *speakerRepo) FindByEmail(ctx context.Context, email string) (*domain.Speaker, error) {
	row := r.s.sql(ctx).Select(speakerSelect...).From(tableSpeakers).Where("email = ?", email).QueryRow(ctx)
	sp, err := scanSpeaker(row)
	if isNoRows(err) {
		return nil, domain.NewNotFoundError(domain.KindSpeaker, email)
	}
	return sp, err
}

func (r *speakerRepo) Save(ctx context.Context, sp *domain.Speaker) error {
	if sp.Key == nil || sp.Key.ID == 0 {
		id, err := r.s.nextID()
		if err != nil {
			return err
		}
		sp.Key = domain.NewKey(domain.KindSpeaker, id, nil)
	}
	_, err := r.s.sql(ctx).UpsertInto(tableSpeakers).
		Columns(speakerSelect...).
		Values(sp.Key.ID, sp.Name, sp.Email).
		Key("id").
		Exec(ctx)
	return err
}

func (r *speakerRepo) List(ctx context.Context) ([]*domain.Speaker, error) {
	rows, err := r.s.sql(ctx).Select(speakerSelect...).From(tableSpeakers).OrderBy("email").Query(ctx)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSpeaker)
}
