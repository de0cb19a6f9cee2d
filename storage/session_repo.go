package storage

import (
	"context"

	"conference/domain"
	"conference/filter"
)

var sessionSelect = []string{
	"id", "conference_key", "title", "highlights", "speaker_keys",
	"duration", "type_of_session", "date_time", "hour",
}

type sessionRepo struct{ s *Store }

func scanSession(row scanner) (*domain.Session, error) {
	var (
		s        domain.Session
		id       int64
		speakers string
		dateTime string
	)
	if err := row.Scan(&id, &s.WebsafeConferenceKey, &s.Title, &s.Highlights, &speakers,
		&s.Duration, &s.TypeOfSession, &dateTime, &s.Hour); err != nil {
		return nil, err
	}
	parent, err := domain.DecodeKey(s.WebsafeConferenceKey)
	if err != nil {
		return nil, err
	}
	s.Key = domain.NewKey(domain.KindSession, id, parent)
	if s.SpeakerKeys, err = decodeList(speakers); err != nil {
		return nil, err
	}
	if s.DateTime, err = decodeDateTime(dateTime); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) list(ctx context.Context, where func(b selectWhere)) ([]*domain.Session, error) {
	b := r.s.sql(ctx).Select(sessionSelect...).From(tableSessions)
	where(b)
	rows, err := b.OrderBy("date_time", "title").Query(ctx)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSession)
}

func (r *sessionRepo) Get(ctx context.Context, key *domain.Key) (*domain.Session, error) {
	if key == nil || key.Kind != domain.KindSession {
		return nil, domain.NewNotFoundError(domain.KindSession, key.Encode())
	}
	row := r.s.sql(ctx).Select(sessionSelect...).From(tableSessions).Where("id = ?", key.ID).QueryRow(ctx)
	s, err := scanSession(row)
	if isNoRows(err) || (err == nil && !s.Key.Equal(key)) {
		return nil, domain.NewNotFoundError(domain.KindSession, key.Encode())
	}
	return s, err
}

func (r *sessionRepo) GetMulti(ctx context.Context, keys []*domain.Key) ([]*domain.Session, error) {
	ids := idsOf(keys, domain.KindSession)
	if len(ids) == 0 {
		return nil, nil
	}
	items, err := r.list(ctx, func(b selectWhere) { b.WhereIn("id", ids...) })
	if err != nil {
		return nil, err
	}
	return orderByKeys(keys, items, func(s *domain.Session) *domain.Key { return s.Key }), nil
}

func (r *sessionRepo) Save(ctx context.Context, s *domain.Session) error {
	if s.Key == nil || s.Key.ID == 0 {
		parent, err := domain.DecodeKind(s.WebsafeConferenceKey, domain.KindConference)
		if err != nil {
			return err
		}
		id, err := r.s.nextID()
		if err != nil {
			return err
		}
		s.Key = domain.NewKey(domain.KindSession, id, parent)
	}
	_, err := r.s.sql(ctx).UpsertInto(tableSessions).
		Columns(sessionSelect...).
		Values(s.Key.ID, s.WebsafeConferenceKey, s.Title, s.Highlights, encodeList(s.SpeakerKeys),
			s.Duration, s.TypeOfSession, encodeDateTime(s.DateTime), s.Hour).
		Key("id").
		Exec(ctx)
	return err
}

func (r *sessionRepo) ListByConference(ctx context.Context, websafeConferenceKey string) ([]*domain.Session, error) {
	return r.list(ctx, func(b selectWhere) { b.Where("conference_key = ?", websafeConferenceKey) })
}

func (r *sessionRepo) ListByConferenceAndType(ctx context.Context, websafeConferenceKey, typeOfSession string) ([]*domain.Session, error) {
	return r.list(ctx, func(b selectWhere) {
		b.Where("conference_key = ?", websafeConferenceKey).Where("type_of_session = ?", typeOfSession)
	})
}

func (r *sessionRepo) ListBySpeaker(ctx context.Context, websafeSpeakerKey string) ([]*domain.Session, error) {
	return r.ListBySpeakers(ctx, []string{websafeSpeakerKey})
}

func (r *sessionRepo) ListBySpeakers(ctx context.Context, websafeSpeakerKeys []string) ([]*domain.Session, error) {
	if len(websafeSpeakerKeys) == 0 {
		return nil, nil
	}
	d := r.s.sql(ctx).Dialect()
	cond, args := anyElementIn(d, "speaker_keys", websafeSpeakerKeys)
	return r.list(ctx, func(b selectWhere) { b.Where(cond, args...) })
}

func (r *sessionRepo) ListByTypes(ctx context.Context, types []string) ([]*domain.Session, error) {
	if len(types) == 0 {
		return nil, nil
	}
	args := make([]any, len(types))
	for i, t := range types {
		args[i] = t
	}
	return r.list(ctx, func(b selectWhere) { b.WhereIn("type_of_session", args...) })
}

func (r *sessionRepo) CountBySpeakerInConference(ctx context.Context, websafeSpeakerKey, websafeConferenceKey string) (int, error) {
	q := r.s.sql(ctx)
	var n int
	err := q.Select("COUNT(*)").From(tableSessions).
		Where("conference_key = ?", websafeConferenceKey).
		Where(q.Dialect().ArrayElementMatch("speaker_keys", "="), websafeSpeakerKey).
		QueryRow(ctx).Scan(&n)
	return n, err
}

func (r *sessionRepo) Query(ctx context.Context, plan *filter.Plan) ([]*domain.Session, error) {
	q := r.s.sql(ctx)
	b := q.Select(sessionSelect...).From(tableSessions)
	if err := sessionColumns.apply(b, q.Dialect(), plan); err != nil {
		return nil, err
	}
	rows, err := b.Query(ctx)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSession)
}
