package memory

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"storefront/internal/query"
)

// fields maps schema field names onto accessors of T.
type fields[T any] map[string]func(T) any

// apply evaluates d over rows with the same semantics as the SQL builder in
// store/postgres: equality, case-insensitive substring search OR-ed across
// fields, inclusive ranges, sort with an id tiebreak, then limit/offset.
// It returns the requested page and the filtered total.
func apply[T any](rows []T, d query.Descriptor, fs fields[T], id func(T) string) ([]T, int) {
	filters := d.Filters()
	ranges := d.Ranges()
	needle := strings.ToLower(d.SearchText())
	searchFields := d.SearchFields()

	matched := make([]T, 0, len(rows))
	for _, row := range rows {
		if !matchesFilters(row, filters, fs) {
			continue
		}
		if needle != "" && !matchesSearch(row, needle, searchFields, fs) {
			continue
		}
		if !matchesRanges(row, ranges, fs) {
			continue
		}
		matched = append(matched, row)
	}

	sortField := d.SortField()
	desc := d.SortDirection() == query.Desc
	slices.SortStableFunc(matched, func(a, b T) int {
		if get, ok := fs[sortField]; ok {
			c := compareValues(get(a), get(b))
			if desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return strings.Compare(id(a), id(b))
	})

	total := len(matched)
	start := min(d.Offset(), total)
	end := min(start+d.PageSize(), total)
	return matched[start:end], total
}

func matchesFilters[T any](row T, filters map[string]any, fs fields[T]) bool {
	for field, want := range filters {
		get, ok := fs[field]
		if !ok || !equalValues(get(row), want) {
			return false
		}
	}
	return true
}

func matchesSearch[T any](row T, needle string, searchFields []string, fs fields[T]) bool {
	for _, field := range searchFields {
		get, ok := fs[field]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(text(get(row))), needle) {
			return true
		}
	}
	return false
}

func matchesRanges[T any](row T, ranges map[string]query.Range, fs fields[T]) bool {
	for field, r := range ranges {
		get, ok := fs[field]
		if !ok {
			return false
		}
		v, ok := number(get(row))
		if !ok || !r.Contains(v) {
			return false
		}
	}
	return true
}

// equalValues compares a stored value with a filter value that may arrive as
// a string from HTTP input, the way Postgres coerces a text parameter to the
// column type.
func equalValues(stored, want any) bool {
	switch s := stored.(type) {
	case bool:
		switch w := want.(type) {
		case bool:
			return s == w
		case string:
			b, err := strconv.ParseBool(w)
			return err == nil && b == s
		}
		return false
	case int, int64, float64:
		sv, _ := number(s)
		wv, ok := number(want)
		if !ok {
			if ws, isStr := want.(string); isStr {
				f, err := strconv.ParseFloat(ws, 64)
				return err == nil && f == sv
			}
			return false
		}
		return sv == wv
	default:
		return text(stored) == text(want)
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case string:
		return strings.Compare(av, text(b))
	case time.Time:
		bv, _ := b.(time.Time)
		return av.Compare(bv)
	case bool:
		bv, _ := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	}
	an, aok := number(a)
	bn, bok := number(b)
	if aok && bok {
		return cmp.Compare(an, bn)
	}
	return strings.Compare(text(a), text(b))
}
