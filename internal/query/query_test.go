package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/apperr"
)

func f(v float64) *float64 { return &v }

func TestNewClampsPaging(t *testing.T) {
	tests := []struct {
		name         string
		page, size   int
		wantPage     int
		wantPageSize int
	}{
		{"defaults", 0, 0, 1, DefaultPageSize},
		{"negative page", -3, 10, 1, 10},
		{"too large page size", 2, 500, 2, MaxPageSize},
		{"negative page size", 1, -1, 1, 1},
		{"in range", 4, 25, 4, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(WithPage(tt.page, tt.size))
			assert.Equal(t, tt.wantPage, d.Page())
			assert.Equal(t, tt.wantPageSize, d.PageSize())
		})
	}
}

func TestDescriptorIsImmutable(t *testing.T) {
	filters := map[string]any{"category": "shoes"}
	fields := []string{"name"}
	d := New(WithFilters(filters), WithSearch("run", fields...))

	filters["category"] = "hats"
	fields[0] = "slug"
	got := d.Filters()
	got["category"] = "bags"

	assert.Equal(t, "shoes", d.Filters()["category"])
	assert.Equal(t, []string{"name"}, d.SearchFields())
}

func TestResolveDefaults(t *testing.T) {
	s := Schema{Search: []string{"name", "description"}, DefaultSort: "created_at", DefaultDirection: Desc}

	d := New(WithSearch("shirt")).Resolve(s)
	assert.Equal(t, []string{"name", "description"}, d.SearchFields())
	assert.Equal(t, "created_at", d.SortField())
	assert.Equal(t, Desc, d.SortDirection())

	d = New(WithSort("price", "")).Resolve(s)
	assert.Equal(t, "price", d.SortField())
	assert.Equal(t, Asc, d.SortDirection())
}

func TestValidate(t *testing.T) {
	s := Schema{
		Equality: []string{"category"},
		Search:   []string{"name"},
		Range:    []string{"price"},
		Sort:     []string{"price", "name"},
	}
	assert.NoError(t, New(WithFilter("category", "x"), WithSort("price", Desc)).Validate(s))

	bad := []Descriptor{
		New(WithFilter("password", "x")),
		New(WithSearch("a", "email")),
		New(WithRange("stock", Range{Min: f(1)})),
		New(WithRange("price", Range{Min: f(10), Max: f(1)})),
		New(WithSort("secret", Asc)),
	}
	for _, d := range bad {
		assert.True(t, apperr.Is(d.Validate(s), apperr.KindValidation))
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 1, TotalPages(3, 100))

	p := NewPage[int](nil, 0, New())
	assert.NotNil(t, p.Items)
	assert.Equal(t, 0, p.TotalPages)
}

func TestRangeContains(t *testing.T) {
	r := Range{Min: f(5), Max: f(10)}
	assert.True(t, r.Contains(5))
	assert.True(t, r.Contains(10))
	assert.False(t, r.Contains(10.01))
	assert.True(t, Range{}.Contains(-1))
}

func TestValidateIDFilters(t *testing.T) {
	s := Schema{Equality: []string{"id"}, IDs: []string{"id"}}
	assert.NoError(t, New(WithFilter("id", "11111111-0000-4000-8000-000000000001")).Validate(s))
	assert.True(t, apperr.Is(New(WithFilter("id", "not-a-uuid")).Validate(s), apperr.KindValidation))
}
