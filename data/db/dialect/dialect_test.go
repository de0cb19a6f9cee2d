package dialect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	q := "SELECT * FROM t WHERE a = ? AND b IN (?, ?)"
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b IN ($2, $3)", New("postgres").Rebind(q))
	for _, name := range []string{"mysql", "sqlite", "unknown"} {
		assert.Equal(t, q, New(name).Rebind(q), name)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"sessions"."title"`, New("sqlite3").QuoteIdentifier("sessions.title"))
	assert.Equal(t, "`title`", New("mysql").QuoteIdentifier("title"))
	assert.Equal(t, "title", New("").QuoteIdentifier("title"))
	assert.Equal(t, NameSQLite, New(" SQLite ").Name())
}

func TestArrayElementMatch(t *testing.T) {
	assert.Equal(t,
		`EXISTS (SELECT 1 FROM json_each("topics") WHERE json_each.value = ?)`,
		New("sqlite").ArrayElementMatch("topics", "="))
	assert.Contains(t, New("postgres").ArrayElementMatch("topics", "!="), "jsonb_array_elements_text")
	assert.Contains(t, New("mysql").ArrayElementMatch("topics", ">"), "JSON_TABLE")
}

func TestUpsertSuffix(t *testing.T) {
	assert.Equal(t,
		` ON CONFLICT ("id") DO UPDATE SET "name" = excluded."name", "city" = excluded."city"`,
		New("sqlite").UpsertSuffix([]string{"id"}, []string{"name", "city"}))
	assert.Equal(t, ` ON CONFLICT ("id") DO NOTHING`, New("postgres").UpsertSuffix([]string{"id"}, nil))
	assert.Equal(t, " ON DUPLICATE KEY UPDATE `name` = VALUES(`name`)",
		New("mysql").UpsertSuffix([]string{"id"}, []string{"name"}))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, New("sqlite").IsUniqueViolation(errors.New("UNIQUE constraint failed: speakers.email")))
	assert.False(t, New("sqlite").IsUniqueViolation(nil))
	assert.True(t, New("mysql").IsUniqueViolation(errors.New("Duplicate entry 'x'")))
}
