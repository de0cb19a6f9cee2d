// Package dialect 描述各数据库在 SQL 生成上的差异
package dialect

import (
	"strconv"
	"strings"

	core "conference/data/db"
)

// Name 标准化的数据库方言名称
type Name string

const (
	NameMySQL    Name = "mysql"
	NameSQLite   Name = "sqlite"
	NamePostgres Name = "postgres"
	NameUnknown  Name = ""
)

// Dialect 当前数据库的方言能力
type Dialect struct {
	name Name
}

// New 根据字符串构造方言（大小写不敏感）
func New(name string) Dialect {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mysql":
		return Dialect{name: NameMySQL}
	case "sqlite", "sqlite3":
		return Dialect{name: NameSQLite}
	case "postgres", "postgresql", "pgx":
		return Dialect{name: NamePostgres}
	default:
		return Dialect{name: NameUnknown}
	}
}

// FromDatabase 从 IDatabase 推断方言，未实现 IDialectNameProvider 时返回 Unknown
func FromDatabase(db core.IDatabase) Dialect {
	if p, ok := db.(core.IDialectNameProvider); ok && db != nil {
		return New(p.GetDialectName())
	}
	return Dialect{name: NameUnknown}
}

// Name 返回标准化方言名
func (d Dialect) Name() Name {
	return d.name
}

// QuoteIdentifier 按方言对标识符加引号，带点的名称逐段处理
func (d Dialect) QuoteIdentifier(name string) string {
	if name == "" {
		return ""
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		if p == "" {
			continue
		}
		switch d.name {
		case NameMySQL:
			parts[i] = "`" + p + "`"
		case NameSQLite, NamePostgres:
			parts[i] = `"` + p + `"`
		}
	}
	return strings.Join(parts, ".")
}

// Rebind 将 ? 占位符转换为方言形式，目前只有 Postgres 需要 $n
//
// 简单字符扫描，不识别字符串字面量中的 ?。
func (d Dialect) Rebind(query string) string {
	if query == "" || d.name != NamePostgres {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 4)
	argIndex := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(argIndex))
			argIndex++
			continue
		}
		sb.WriteByte(query[i])
	}
	return sb.String()
}

// ArrayElementMatch 生成“JSON 数组列中存在满足 op ? 的元素”的条件
//
// 重复字段以 JSON 数组存储，比较语义为任一元素满足即匹配。
func (d Dialect) ArrayElementMatch(column, op string) string {
	col := d.QuoteIdentifier(column)
	switch d.name {
	case NamePostgres:
		return "EXISTS (SELECT 1 FROM jsonb_array_elements_text(" + col + "::jsonb) AS e(value) WHERE e.value " + op + " ?)"
	case NameMySQL:
		return "EXISTS (SELECT 1 FROM JSON_TABLE(" + col + ", '$[*]' COLUMNS (value TEXT PATH '$')) AS e WHERE e.value " + op + " ?)"
	default:
		return "EXISTS (SELECT 1 FROM json_each(" + col + ") WHERE json_each.value " + op + " ?)"
	}
}

// UpsertSuffix 生成按主键冲突时覆盖 updateCols 的子句
func (d Dialect) UpsertSuffix(keyCols, updateCols []string) string {
	sets := make([]string, 0, len(updateCols))
	switch d.name {
	case NameMySQL:
		for _, c := range updateCols {
			q := d.QuoteIdentifier(c)
			sets = append(sets, q+" = VALUES("+q+")")
		}
		return " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	default:
		keys := make([]string, len(keyCols))
		for i, k := range keyCols {
			keys[i] = d.QuoteIdentifier(k)
		}
		if len(updateCols) == 0 {
			return " ON CONFLICT (" + strings.Join(keys, ", ") + ") DO NOTHING"
		}
		for _, c := range updateCols {
			q := d.QuoteIdentifier(c)
			sets = append(sets, q+" = excluded."+q)
		}
		return " ON CONFLICT (" + strings.Join(keys, ", ") + ") DO UPDATE SET " + strings.Join(sets, ", ")
	}
}

// IsUniqueViolation 按错误消息关键字判断唯一键冲突
func (d Dialect) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch d.name {
	case NameMySQL:
		return strings.Contains(msg, "duplicate entry") || strings.Contains(msg, "duplicate key")
	case NameSQLite:
		return strings.Contains(msg, "unique constraint failed")
	default:
		return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
	}
}
