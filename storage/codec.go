package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"conference/filter"
)

func encodeList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(values)
	return string(data)
}

func decodeList(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func encodeDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(filter.DateLayout)
}

func decodeDate(raw sql.NullString) (*time.Time, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	t, err := time.Parse(filter.DateLayout, raw.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func encodeDateTime(t time.Time) string {
	return t.Format(filter.DateTimeLayout)
}

func decodeDateTime(raw string) (time.Time, error) {
	return time.Parse(filter.DateTimeLayout, raw)
}
