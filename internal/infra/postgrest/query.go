package postgrest

import (
	"fmt"
	"net/url"
	"strconv"
)

// Query builds PostgREST filter parameters (column=op.value) and modifiers.
type Query struct {
	v url.Values
}

func NewQuery() *Query {
	return &Query{v: url.Values{}}
}

func (q *Query) Eq(column string, value any) *Query {
	return q.filter(column, "eq", value)
}

func (q *Query) Lt(column string, value any) *Query {
	return q.filter(column, "lt", value)
}

func (q *Query) Select(columns string) *Query {
	return q.Set("select", columns)
}

func (q *Query) Limit(n int) *Query {
	return q.Set("limit", strconv.Itoa(n))
}

// Order sorts by column; asc selects the direction.
func (q *Query) Order(column string, asc bool) *Query {
	dir := "desc"
	if asc {
		dir = "asc"
	}
	return q.Set("order", column+"."+dir)
}

func (q *Query) Set(key, value string) *Query {
	q.v.Set(key, value)
	return q
}

func (q *Query) Values() url.Values {
	return q.v
}

func (q *Query) filter(column, op string, value any) *Query {
	q.v.Add(column, fmt.Sprintf("%s.%v", op, value))
	return q
}
