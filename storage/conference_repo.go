package storage

import (
	"context"
	"database/sql"

	"conference/domain"
	"conference/filter"
)

var conferenceSelect = []string{
	"id", "organizer_user_id", "name", "description", "topics", "city",
	"start_date", "end_date", "month", "max_attendees", "seats_available",
}

type conferenceRepo struct{ s *Store }

func scanConference(row scanner) (*domain.Conference, error) {
	var (
		c          domain.Conference
		id         int64
		topics     string
		start, end sql.NullString
	)
	if err := row.Scan(&id, &c.OrganizerUserID, &c.Name, &c.Description, &topics, &c.City,
		&start, &end, &c.Month, &c.MaxAttendees, &c.SeatsAvailable); err != nil {
		return nil, err
	}
	c.Key = domain.NewKey(domain.KindConference, id, domain.ProfileKey(c.OrganizerUserID))

	var err error
	if c.Topics, err = decodeList(topics); err != nil {
		return nil, err
	}
	if c.StartDate, err = decodeDate(start); err != nil {
		return nil, err
	}
	if c.EndDate, err = decodeDate(end); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *conferenceRepo) Get(ctx context.Context, key *domain.Key) (*domain.Conference, error) {
	if key == nil || key.Kind != domain.KindConference {
		return nil, domain.NewNotFoundError(domain.KindConference, key.Encode())
	}
	row := r.s.sql(ctx).Select(conferenceSelect...).From(tableConferences).
		Where("id = ?", key.ID).QueryRow(ctx)
	c, err := scanConference(row)
	if isNoRows(err) || (err == nil && !c.Key.Equal(key)) {
		return nil, domain.NewNotFoundError(domain.KindConference, key.Encode())
	}
	return c, err
}

func (r *conferenceRepo) GetMulti(ctx context.Context, keys []*domain.Key) ([]*domain.Conference, error) {
	ids := idsOf(keys, domain.KindConference)
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.s.sql(ctx).Select(conferenceSelect...).From(tableConferences).
		WhereIn("id", ids...).Query(ctx)
	if err != nil {
		return nil, err
	}
	items, err := collect(rows, scanConference)
	if err != nil {
		return nil, err
	}
	return orderByKeys(keys, items, func(c *domain.Conference) *domain.Key { return c.Key }), nil
}

func (r *conferenceRepo) Save(ctx context.Context, c *domain.Conference) error {
	if c.Key == nil || c.Key.ID == 0 {
		id, err := r.s.nextID()
		if err != nil {
			return err
		}
		c.Key = domain.NewKey(domain.KindConference, id, domain.ProfileKey(c.OrganizerUserID))
	}
	_, err := r.s.sql(ctx).UpsertInto(tableConferences).
		Columns(conferenceSelect...).
		Values(c.Key.ID, c.OrganizerUserID, c.Name, c.Description, encodeList(c.Topics), c.City,
			encodeDate(c.StartDate), encodeDate(c.EndDate), c.Month, c.MaxAttendees, c.SeatsAvailable).
		Key("id").
		Exec(ctx)
	return err
}

func (r *conferenceRepo) ListByOrganizer(ctx context.Context, userID string) ([]*domain.Conference, error) {
	rows, err := r.s.sql(ctx).Select(conferenceSelect...).From(tableConferences).
		Where("organizer_user_id = ?", userID).
		OrderBy("name").
		Query(ctx)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanConference)
}

func (r *conferenceRepo) Query(ctx context.Context, plan *filter.Plan) ([]*domain.Conference, error) {
	q := r.s.sql(ctx)
	b := q.Select(conferenceSelect...).From(tableConferences)
	if err := conferenceColumns.apply(b, q.Dialect(), plan); err != nil {
		return nil, err
	}
	rows, err := b.Query(ctx)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanConference)
}

func (r *conferenceRepo) ListSeatsBetween(ctx context.Context, min, max int) ([]*domain.Conference, error) {
	rows, err := r.s.sql(ctx).Select(conferenceSelect...).From(tableConferences).
		Where("seats_available > ?", min).
		Where("seats_available <= ?", max).
		OrderBy("seats_available", "name").
		Query(ctx)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanConference)
}
