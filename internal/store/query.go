package store

import "fmt"

type QueryMethod string

const (
	MethodEqual     QueryMethod = "equal"
	MethodIsNull    QueryMethod = "isNull"
	MethodIsNotNull QueryMethod = "isNotNull"
	MethodOrderAsc  QueryMethod = "orderAsc"
	MethodOrderDesc QueryMethod = "orderDesc"
	MethodLimit     QueryMethod = "limit"
	MethodOffset    QueryMethod = "offset"
)

// Query is one list constraint. Its JSON form is the one the Appwrite REST
// API accepts in queries[].
type Query struct {
	Method    QueryMethod `json:"method"`
	Attribute string      `json:"attribute,omitempty"`
	Values    []any       `json:"values,omitempty"`
}

// Equal matches documents whose attribute equals any of values.
func Equal(attribute string, values ...any) Query {
	return Query{Method: MethodEqual, Attribute: attribute, Values: values}
}

func IsNull(attribute string) Query {
	return Query{Method: MethodIsNull, Attribute: attribute}
}

func IsNotNull(attribute string) Query {
	return Query{Method: MethodIsNotNull, Attribute: attribute}
}

func OrderAsc(attribute string) Query {
	return Query{Method: MethodOrderAsc, Attribute: attribute}
}

func OrderDesc(attribute string) Query {
	return Query{Method: MethodOrderDesc, Attribute: attribute}
}

func Limit(n int) Query {
	return Query{Method: MethodLimit, Values: []any{n}}
}

func Offset(n int) Query {
	return Query{Method: MethodOffset, Values: []any{n}}
}

func (q Query) String() string {
	if q.Attribute == "" {
		return fmt.Sprintf("%s(%v)", q.Method, q.Values)
	}
	return fmt.Sprintf("%s(%s, %v)", q.Method, q.Attribute, q.Values)
}

func (q Query) isFilter() bool {
	switch q.Method {
	case MethodEqual, MethodIsNull, MethodIsNotNull:
		return true
	}
	return false
}

func (q Query) isOrder() bool {
	return q.Method == MethodOrderAsc || q.Method == MethodOrderDesc
}

// intValue reads the single integer argument of limit and offset queries.
func (q Query) intValue() (int, error) {
	if len(q.Values) != 1 {
		return 0, fmt.Errorf("%w: %s expects one value", ErrInvalidQuery, q.Method)
	}
	switch v := q.Values[0].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	}
	return 0, fmt.Errorf("%w: %s expects an integer, got %T", ErrInvalidQuery, q.Method, q.Values[0])
}

// pagination extracts limit and offset from queries. limit is -1 when absent.
func pagination(queries []Query) (limit, offset int, err error) {
	limit = -1
	for _, q := range queries {
		switch q.Method {
		case MethodLimit:
			if limit, err = q.intValue(); err != nil {
				return 0, 0, err
			}
			if limit < 1 || limit > MaxPageSize {
				return 0, 0, fmt.Errorf("%w: limit must be between 1 and %d, got %d", ErrInvalidQuery, MaxPageSize, limit)
			}
		case MethodOffset:
			if offset, err = q.intValue(); err != nil {
				return 0, 0, err
			}
			if offset < 0 {
				return 0, 0, fmt.Errorf("%w: offset cannot be negative", ErrInvalidQuery)
			}
		}
	}
	return limit, offset, nil
}
