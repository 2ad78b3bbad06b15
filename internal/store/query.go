package store

import (
	"cmp"
	"encoding/json"
	"reflect"
	"slices"
)

// Predicate is an equality filter on a top-level document field.
type Predicate struct {
	Field string
	Value any
}

// Eq builds an equality predicate.
func Eq(field string, value any) Predicate {
	return Predicate{Field: field, Value: value}
}

// Query describes a filtered, ordered and paged read of one collection.
// OrderBy defaults to the document id so results are deterministic.
type Query struct {
	Where   []Predicate
	OrderBy string
	Desc    bool
	Limit   int
	Offset  int
}

// Matches reports whether doc satisfies every predicate.
func (q Query) Matches(doc Document) bool {
	for _, p := range q.Where {
		got, ok := doc[p.Field]
		if !ok {
			return false
		}
		if !reflect.DeepEqual(got, normalize(p.Value)) {
			return false
		}
	}
	return true
}

// apply filters, sorts and pages docs in place.
func (q Query) apply(docs []Document) []Document {
	out := docs[:0]
	for _, doc := range docs {
		if q.Matches(doc) {
			out = append(out, doc)
		}
	}

	field := q.OrderBy
	if field == "" {
		field = IDField
	}
	slices.SortStableFunc(out, func(a, b Document) int {
		c := compareValues(a[field], b[field])
		if c == 0 && field != IDField {
			c = compareValues(a[IDField], b[IDField])
		}
		if q.Desc {
			return -c
		}
		return c
	})

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []Document{}
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out
}

// normalize converts a Go value to the shape json.Unmarshal produces, so that
// predicate values compare equal to decoded document fields.
func normalize(v any) any {
	switch v.(type) {
	case nil, string, bool, float64:
		return v
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case nil:
		if b == nil {
			return 0
		}
		return -1
	case string:
		if bv, ok := b.(string); ok {
			return cmp.Compare(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return cmp.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	}
	if b == nil {
		return 1
	}
	return 0
}
