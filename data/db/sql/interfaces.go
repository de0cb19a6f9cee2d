// Package sql 提供参数化 SQL 的构建与执行
package sql

import (
	"context"
	"database/sql"

	core "conference/data/db"
	"conference/data/db/dialect"
)

// ISql 统一的 SQL 构建入口
type ISql interface {
	Select(columns ...string) ISelectBuilder
	InsertInto(table string) IInsertBuilder
	UpsertInto(table string) IUpsertBuilder

	Dialect() dialect.Dialect
}

// ISelectBuilder 构建 SELECT 语句
type ISelectBuilder interface {
	From(table string) ISelectBuilder
	Where(cond string, args ...any) ISelectBuilder
	// WhereIn 追加 col IN (...)；values 为空时条件恒假
	WhereIn(col string, values ...any) ISelectBuilder
	OrderBy(exprs ...string) ISelectBuilder
	Limit(n int) ISelectBuilder
	Offset(n int) ISelectBuilder
	Build() (query string, args []any)
	Query(ctx context.Context) (core.IRows, error)
	QueryRow(ctx context.Context) core.IRow
}

// IInsertBuilder 构建 INSERT 语句
type IInsertBuilder interface {
	Columns(cols ...string) IInsertBuilder
	Values(vals ...any) IInsertBuilder
	Build() (query string, args []any)
	Exec(ctx context.Context) (sql.Result, error)
}

// IUpsertBuilder 构建按主键覆盖的 INSERT
type IUpsertBuilder interface {
	Columns(cols ...string) IUpsertBuilder
	Values(vals ...any) IUpsertBuilder
	Key(cols ...string) IUpsertBuilder
	Build() (query string, args []any)
	Exec(ctx context.Context) (sql.Result, error)
}

type sqlImpl struct {
	db      core.IDatabase
	dialect dialect.Dialect
}

// New 创建 ISql，方言由 db 推断
func New(db core.IDatabase) ISql {
	return &sqlImpl{db: db, dialect: dialect.FromDatabase(db)}
}

func (s *sqlImpl) Select(columns ...string) ISelectBuilder {
	if len(columns) == 0 {
		columns = []string{"*"}
	}
	return &selectBuilder{db: s.db, dialect: s.dialect, cols: columns}
}

func (s *sqlImpl) InsertInto(table string) IInsertBuilder {
	return &insertBuilder{db: s.db, dialect: s.dialect, table: table}
}

func (s *sqlImpl) UpsertInto(table string) IUpsertBuilder {
	return &upsertBuilder{insertBuilder: insertBuilder{db: s.db, dialect: s.dialect, table: table}}
}

func (s *sqlImpl) Dialect() dialect.Dialect {
	return s.dialect
}
