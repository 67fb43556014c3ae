// Package query holds the filter/sort/page descriptor consumed identically by
// the live and the fallback stores.
package query

import (
	"maps"
	"slices"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps user input to a Direction; anything unknown yields "".
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return Asc
	case "desc":
		return Desc
	default:
		return ""
	}
}

// Range is an inclusive numeric bound. A nil side is open.
type Range struct {
	Min *float64
	Max *float64
}

// Contains reports whether v falls inside r.
func (r Range) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// Descriptor captures what a caller wants from a GetAll. It is immutable: the
// accessors return copies and options copy their inputs.
//
// Page is clamped to >= 1 and PageSize to [1, MaxPageSize] at construction.
// Out-of-range input is never an error.
type Descriptor struct {
	filters       map[string]any
	searchText    string
	searchFields  []string
	ranges        map[string]Range
	sortField     string
	sortDirection Direction
	page          int
	pageSize      int
}

// Option configures a Descriptor.
type Option func(*Descriptor)

// New builds a Descriptor.
func New(opts ...Option) Descriptor {
	d := Descriptor{page: 1, pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(&d)
	}
	d.page = clampPage(d.page)
	d.pageSize = clampPageSize(d.pageSize)
	return d
}

// WithFilter adds an equality filter.
func WithFilter(field string, value any) Option {
	return func(d *Descriptor) {
		if d.filters == nil {
			d.filters = map[string]any{}
		}
		d.filters[field] = value
	}
}

// WithFilters adds several equality filters.
func WithFilters(filters map[string]any) Option {
	return func(d *Descriptor) {
		for k, v := range filters {
			WithFilter(k, v)(d)
		}
	}
}

// WithSearch sets the search text and optional fields to search in.
func WithSearch(text string, fields ...string) Option {
	return func(d *Descriptor) {
		d.searchText = strings.TrimSpace(text)
		d.searchFields = slices.Clone(fields)
	}
}

// WithRange adds a numeric range on field.
func WithRange(field string, r Range) Option {
	return func(d *Descriptor) {
		if r.Min == nil && r.Max == nil {
			return
		}
		if d.ranges == nil {
			d.ranges = map[string]Range{}
		}
		d.ranges[field] = Range{Min: copyFloat(r.Min), Max: copyFloat(r.Max)}
	}
}

// WithSort sets the sort field and direction.
func WithSort(field string, dir Direction) Option {
	return func(d *Descriptor) {
		d.sortField = field
		d.sortDirection = dir
	}
}

// WithPage sets the page number and size.
func WithPage(page, pageSize int) Option {
	return func(d *Descriptor) {
		d.page = page
		d.pageSize = pageSize
	}
}

func (d Descriptor) Filters() map[string]any  { return maps.Clone(d.filters) }
func (d Descriptor) SearchText() string       { return d.searchText }
func (d Descriptor) SearchFields() []string   { return slices.Clone(d.searchFields) }
func (d Descriptor) Ranges() map[string]Range { return maps.Clone(d.ranges) }
func (d Descriptor) SortField() string        { return d.sortField }
func (d Descriptor) SortDirection() Direction { return d.sortDirection }
func (d Descriptor) Page() int                { return d.page }
func (d Descriptor) PageSize() int            { return d.pageSize }
func (d Descriptor) Offset() int              { return (d.page - 1) * d.pageSize }

// FilterKeys returns the equality filter fields in sorted order.
func (d Descriptor) FilterKeys() []string {
	return slices.Sorted(maps.Keys(d.filters))
}

// RangeKeys returns the range fields in sorted order.
func (d Descriptor) RangeKeys() []string {
	return slices.Sorted(maps.Keys(d.ranges))
}

// WithPageNumber returns a copy of d pointing at another page.
func (d Descriptor) WithPageNumber(page int) Descriptor {
	d.page = clampPage(page)
	return d
}

// Resolve fills the defaults of schema s: search fields and sort.
func (d Descriptor) Resolve(s Schema) Descriptor {
	if d.searchText != "" && len(d.searchFields) == 0 {
		d.searchFields = slices.Clone(s.Search)
	}
	if d.sortField == "" {
		d.sortField = s.DefaultSort
		if d.sortDirection == "" {
			d.sortDirection = s.DefaultDirection
		}
	}
	if d.sortDirection == "" {
		d.sortDirection = Asc
	}
	return d
}

func clampPage(p int) int {
	if p < 1 {
		return 1
	}
	return p
}

func clampPageSize(n int) int {
	switch {
	case n == 0:
		return DefaultPageSize
	case n < 1:
		return 1
	case n > MaxPageSize:
		return MaxPageSize
	default:
		return n
	}
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
