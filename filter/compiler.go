// Package filter 将客户端提交的 (field, operator, value) 过滤条件编译为查询计划。
//
// 编译过程只做校验与类型转换，不访问存储：
//   - 过滤键必须出现在实体的 Catalog 白名单中
//   - 操作符必须是 EQ/GT/GTEQ/LT/LTEQ/NE 之一
//   - 取值按字段类型转换（int、date、datetime，其余为字符串）
//   - 全部条件中至多一个字段使用非等值比较
//
// 生成的 Plan 交由存储层执行。
package filter

import (
	"strconv"
	"strings"
	"time"
)

// Operator 客户端操作符代码
type Operator string

// 支持的操作符代码
const (
	EQ   Operator = "EQ"
	GT   Operator = "GT"
	GTEQ Operator = "GTEQ"
	LT   Operator = "LT"
	LTEQ Operator = "LTEQ"
	NE   Operator = "NE"
)

// Comparator 存储层比较符
type Comparator string

// 比较符
const (
	Equal          Comparator = "="
	Greater        Comparator = ">"
	GreaterOrEqual Comparator = ">="
	Less           Comparator = "<"
	LessOrEqual    Comparator = "<="
	NotEqual       Comparator = "!="
)

var comparators = map[Operator]Comparator{
	EQ:   Equal,
	GT:   Greater,
	GTEQ: GreaterOrEqual,
	LT:   Less,
	LTEQ: LessOrEqual,
	NE:   NotEqual,
}

// 日期取值格式
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"
)

// Spec 客户端提交的单个过滤条件
type Spec struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Predicate 校验和转换后的过滤谓词
//
// Value 的动态类型为 string、int64 或 time.Time。
type Predicate struct {
	Field      string
	Comparator Comparator
	Value      any
}

// Eq 构造等值谓词，常用于作用域约束
func Eq(field string, value any) *Predicate {
	return &Predicate{Field: field, Comparator: Equal, Value: value}
}

// Plan 查询计划
type Plan struct {
	// Kind 实体类型，仅透传
	Kind string
	// Scope 作用域等值约束，不参与不等式字段限制
	Scope *Predicate
	// Predicates 按提交顺序排列的谓词，相互之间为 AND 关系
	Predicates []Predicate
	// OrderBy 排序字段，存在不等式字段时它排在首位
	OrderBy []string
	// InequalityField 使用非等值比较的字段，没有则为空
	InequalityField string
}

// Compile 编译过滤条件
//
// 按提交顺序逐个校验，遇到第一个错误即返回。filters 为空时
// 返回 Predicates 为空、OrderBy 仅含 defaultOrder 的计划。
func Compile(kind string, catalog *Catalog, filters []Spec, scope *Predicate, defaultOrder string) (*Plan, error) {
	plan := &Plan{
		Kind:       kind,
		Scope:      scope,
		Predicates: make([]Predicate, 0, len(filters)),
	}

	for i, spec := range filters {
		entry, ok := catalog.Lookup(spec.Field)
		if !ok {
			return nil, &Error{Index: i, Spec: spec, Err: ErrInvalidField}
		}

		cmp, ok := comparators[Operator(spec.Operator)]
		if !ok {
			return nil, &Error{Index: i, Spec: spec, Err: ErrInvalidOperator}
		}

		value, err := coerce(entry.Kind, spec.Value)
		if err != nil {
			return nil, &Error{Index: i, Spec: spec, Err: ErrInvalidValue, Cause: err}
		}

		if cmp != Equal {
			if plan.InequalityField != "" && plan.InequalityField != entry.Field {
				return nil, &Error{Index: i, Spec: spec, Err: ErrMultipleInequalityFields}
			}
			plan.InequalityField = entry.Field
		}

		plan.Predicates = append(plan.Predicates, Predicate{
			Field:      entry.Field,
			Comparator: cmp,
			Value:      value,
		})
	}

	if plan.InequalityField != "" {
		plan.OrderBy = []string{plan.InequalityField, defaultOrder}
	} else {
		plan.OrderBy = []string{defaultOrder}
	}

	return plan, nil
}

func coerce(kind FieldKind, raw string) (any, error) {
	switch kind {
	case KindInt:
		return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	case KindDate:
		return time.Parse(DateLayout, strings.TrimSpace(raw))
	case KindDateTime:
		raw = strings.TrimSpace(raw)
		t, err := time.Parse(DateTimeLayout, raw)
		if err == nil {
			return t, nil
		}
		if d, derr := time.Parse(DateLayout, raw); derr == nil {
			return d, nil
		}
		return nil, err
	default:
		return raw, nil
	}
}
