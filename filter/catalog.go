package filter

import "sort"

// FieldKind 字段取值的强制转换类型
type FieldKind int

const (
	// KindString 原样透传（默认）
	KindString FieldKind = iota
	// KindInt 解析为 int64
	KindInt
	// KindDate 解析为日期（YYYY-MM-DD）
	KindDate
	// KindDateTime 解析为日期时间（YYYY-MM-DD HH:MM，也接受 YYYY-MM-DD）
	KindDateTime
)

// String 返回类型名称
func (k FieldKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	default:
		return "string"
	}
}

// Entry 白名单中的一项：客户端过滤键 -> 实体字段及其类型
type Entry struct {
	Key   string
	Field string
	Kind  FieldKind
}

// Catalog 某一实体类型允许过滤的静态字段表
//
// Catalog 创建后只读，可在多个 goroutine 间共享。
type Catalog struct {
	entries map[string]Entry
}

// NewCatalog 由静态条目构建字段表；重复的 Key 以后者为准
func NewCatalog(entries ...Entry) *Catalog {
	c := &Catalog{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		c.entries[e.Key] = e
	}
	return c
}

// Lookup 按客户端过滤键查找条目
func (c *Catalog) Lookup(key string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	e, ok := c.entries[key]
	return e, ok
}

// Keys 返回所有允许的过滤键（已排序）
func (c *Catalog) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// 会议与场次的过滤字段表
var (
	ConferenceCatalog = NewCatalog(
		Entry{Key: "CITY", Field: "city", Kind: KindString},
		Entry{Key: "TOPIC", Field: "topics", Kind: KindString},
		Entry{Key: "MONTH", Field: "month", Kind: KindInt},
		Entry{Key: "MAX_ATTENDEES", Field: "maxAttendees", Kind: KindInt},
	)

	SessionCatalog = NewCatalog(
		Entry{Key: "TITLE", Field: "title", Kind: KindString},
		Entry{Key: "DURATION", Field: "duration", Kind: KindInt},
		Entry{Key: "DATE", Field: "dateTime", Kind: KindDateTime},
		Entry{Key: "HOUR", Field: "hour", Kind: KindInt},
	)
)
