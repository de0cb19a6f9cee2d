// Package db 提供数据库访问抽象
//
// 仓储只依赖 IDatabase；事务通过 context 传递，仓储内部用 FromContext 取当前执行者。
package db

import (
	"context"
	"database/sql"
)

// IDatabase 通用数据库接口
type IDatabase interface {
	Query(ctx context.Context, query string, args ...any) (IRows, error)
	QueryRow(ctx context.Context, query string, args ...any) IRow
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)

	Begin(ctx context.Context) (ITransaction, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (ITransaction, error)

	Ping(ctx context.Context) error
	Close() error

	// Raw 获取原始连接（用于特殊场景）
	Raw() any
}

// IDialectNameProvider 可选接口：提供底层数据库方言名称
type IDialectNameProvider interface {
	GetDialectName() string
}

// ITransaction 事务接口
type ITransaction interface {
	IDatabase

	Commit() error
	Rollback() error
}

// IRows 查询结果集接口
type IRows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error

	Columns() ([]string, error)
}

// IRow 单行结果接口
type IRow interface {
	Scan(dest ...any) error
	Err() error
}

// DBConfig 数据库配置
type DBConfig struct {
	Driver string // sqlite, mysql, postgres
	DSN    string

	// 连接池配置
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // 秒
	ConnMaxIdleTime int // 秒
}

type txKey struct{}

// WithTx 将事务放入 context
func WithTx(ctx context.Context, tx ITransaction) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext 取出 context 中的事务
func TxFromContext(ctx context.Context) (ITransaction, bool) {
	tx, ok := ctx.Value(txKey{}).(ITransaction)
	return tx, ok && tx != nil
}

// FromContext 返回 context 中的事务，没有时返回 fallback
func FromContext(ctx context.Context, fallback IDatabase) IDatabase {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return fallback
}

// RunInTx 在事务中执行 fn；已处于事务中时直接复用外层事务
func RunInTx(ctx context.Context, database IDatabase, fn func(ctx context.Context) error) (err error) {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := database.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
