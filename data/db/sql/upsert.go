package sql

import (
	"context"
	"database/sql"
	"slices"
)

// upsertBuilder 单条 INSERT，主键冲突时覆盖其余列
type upsertBuilder struct {
	insertBuilder
	keyColumns []string
}

func (b *upsertBuilder) Columns(cols ...string) IUpsertBuilder {
	b.insertBuilder.Columns(cols...)
	return b
}

func (b *upsertBuilder) Values(vals ...any) IUpsertBuilder {
	b.rows = [][]any{vals}
	return b
}

func (b *upsertBuilder) Key(cols ...string) IUpsertBuilder {
	b.keyColumns = cols
	return b
}

func (b *upsertBuilder) Build() (string, []any) {
	if len(b.keyColumns) == 0 {
		panic("upsertBuilder: Key is required")
	}
	updateCols := make([]string, 0, len(b.columns))
	for _, col := range b.columns {
		if !slices.Contains(b.keyColumns, col) {
			updateCols = append(updateCols, col)
		}
	}
	q, args := b.insertBuilder.Build()
	return q + b.dialect.UpsertSuffix(b.keyColumns, updateCols), args
}

func (b *upsertBuilder) Exec(ctx context.Context) (sql.Result, error) {
	q, args := b.Build()
	return b.db.Exec(ctx, q, args...)
}
