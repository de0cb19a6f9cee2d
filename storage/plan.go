package storage

import (
	"fmt"
	"strings"
	"time"

	dbsql "conference/data/db/sql"
	"conference/data/db/dialect"
	"conference/filter"
)

type columnKind int

const (
	columnScalar columnKind = iota
	columnList
	columnDate
	columnDateTime
)

// column 领域字段到列的映射
type column struct {
	name string
	kind columnKind
}

// columnMap 字段名到列
type columnMap map[string]column

var conferenceColumns = columnMap{
	"name":           {name: "name"},
	"city":           {name: "city"},
	"topics":         {name: "topics", kind: columnList},
	"month":          {name: "month"},
	"maxAttendees":   {name: "max_attendees"},
	"seatsAvailable": {name: "seats_available"},
	"startDate":      {name: "start_date", kind: columnDate},
	"endDate":        {name: "end_date", kind: columnDate},
}

var sessionColumns = columnMap{
	"title":                {name: "title"},
	"duration":             {name: "duration"},
	"dateTime":             {name: "date_time", kind: columnDateTime},
	"hour":                 {name: "hour"},
	"typeOfSession":        {name: "type_of_session"},
	"websafeConferenceKey": {name: "conference_key"},
	"speakerKeys":          {name: "speaker_keys", kind: columnList},
}

// bind 按列类型转换谓词取值
func (c column) bind(v any) any {
	t, ok := v.(time.Time)
	if !ok {
		return v
	}
	if c.kind == columnDate {
		return t.Format(filter.DateLayout)
	}
	return t.Format(filter.DateTimeLayout)
}

// condition 生成单个谓词的 SQL 条件
func (m columnMap) condition(d dialect.Dialect, p filter.Predicate) (string, any, error) {
	col, ok := m[p.Field]
	if !ok {
		return "", nil, fmt.Errorf("storage: no column for field %q", p.Field)
	}
	op := string(p.Comparator)
	if col.kind == columnList {
		return d.ArrayElementMatch(col.name, op), col.bind(p.Value), nil
	}
	return d.QuoteIdentifier(col.name) + " " + op + " ?", col.bind(p.Value), nil
}

// apply 将查询计划作用到 SELECT 构建器
func (m columnMap) apply(b dbsql.ISelectBuilder, d dialect.Dialect, plan *filter.Plan) error {
	preds := plan.Predicates
	if plan.Scope != nil {
		preds = append([]filter.Predicate{*plan.Scope}, preds...)
	}
	for _, p := range preds {
		cond, arg, err := m.condition(d, p)
		if err != nil {
			return err
		}
		b.Where(cond, arg)
	}

	order := make([]string, 0, len(plan.OrderBy))
	for _, field := range plan.OrderBy {
		col, ok := m[field]
		if !ok {
			return fmt.Errorf("storage: no column for order field %q", field)
		}
		order = append(order, d.QuoteIdentifier(col.name))
	}
	b.OrderBy(order...)
	return nil
}

// anyElementIn 列表列中存在任一取值
func anyElementIn(d dialect.Dialect, col string, values []string) (string, []any) {
	conds := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		conds[i] = d.ArrayElementMatch(col, "=")
		args[i] = v
	}
	return "(" + strings.Join(conds, " OR ") + ")", args
}
