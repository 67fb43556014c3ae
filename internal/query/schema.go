package query

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"storefront/internal/apperr"
)

// Schema lists which fields of an entity may be used for each descriptor role.
// Field names are the snake_case column names of the live schema.
type Schema struct {
	Equality         []string
	Search           []string
	Range            []string
	Sort             []string
	// IDs are uuid-typed columns; equality filters on them must parse.
	IDs              []string
	DefaultSort      string
	DefaultDirection Direction
}

// Validate rejects descriptor fields the schema does not allow.
func (d Descriptor) Validate(s Schema) error {
	for _, f := range d.FilterKeys() {
		if !slices.Contains(s.Equality, f) {
			return apperr.Validation("cannot filter by %q", f)
		}
		if slices.Contains(s.IDs, f) {
			if _, err := uuid.Parse(fmt.Sprint(d.filters[f])); err != nil {
				return apperr.Validation("invalid %s", f)
			}
		}
	}
	for _, f := range d.searchFields {
		if !slices.Contains(s.Search, f) {
			return apperr.Validation("cannot search in %q", f)
		}
	}
	for _, f := range d.RangeKeys() {
		if !slices.Contains(s.Range, f) {
			return apperr.Validation("cannot apply a range to %q", f)
		}
		r := d.ranges[f]
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			return apperr.Validation("invalid range for %q: min > max", f)
		}
	}
	if d.sortField != "" && !slices.Contains(s.Sort, d.sortField) {
		return apperr.Validation("cannot sort by %q", d.sortField)
	}
	if d.sortDirection != "" && d.sortDirection != Asc && d.sortDirection != Desc {
		return apperr.Validation("invalid sort direction %q", d.sortDirection)
	}
	return nil
}
