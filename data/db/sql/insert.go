package sql

import (
	"context"
	"database/sql"
	"strings"

	core "conference/data/db"
	"conference/data/db/dialect"
)

// insertBuilder 多行 INSERT，列名与表名在 Build 时校验
type insertBuilder struct {
	db      core.IDatabase
	dialect dialect.Dialect

	table   string
	columns []string
	rows    [][]any
}

func (b *insertBuilder) Columns(cols ...string) IInsertBuilder {
	b.columns = cols
	return b
}

func (b *insertBuilder) Values(vals ...any) IInsertBuilder {
	if len(vals) > 0 {
		b.rows = append(b.rows, vals)
	}
	return b
}

func (b *insertBuilder) quote(name string) string {
	if !isSafeIdentifier(name) {
		panic("sql: unsafe identifier " + name)
	}
	return b.dialect.QuoteIdentifier(name)
}

func (b *insertBuilder) Build() (string, []any) {
	if len(b.columns) == 0 || len(b.rows) == 0 {
		panic("sql: insert into " + b.table + " needs columns and values")
	}

	cols := make([]string, len(b.columns))
	for i, col := range b.columns {
		cols[i] = b.quote(col)
	}
	placeholders := "(?" + strings.Repeat(", ?", len(cols)-1) + ")"

	var sb strings.Builder
	sb.WriteString("INSERT INTO " + b.quote(b.table))
	sb.WriteString(" (" + strings.Join(cols, ", ") + ") VALUES ")

	args := make([]any, 0, len(b.rows)*len(cols))
	for i, row := range b.rows {
		if len(row) != len(cols) {
			panic("sql: insert row width does not match columns")
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(placeholders)
		args = append(args, row...)
	}
	return sb.String(), args
}

func (b *insertBuilder) Exec(ctx context.Context) (sql.Result, error) {
	q, args := b.Build()
	return b.db.Exec(ctx, q, args...)
}
