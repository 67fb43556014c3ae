package query

// Page is one page of a filtered, sorted result set.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPage computes the page metadata from the filtered total.
func NewPage[T any](items []T, total int, d Descriptor) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		TotalPages: TotalPages(total, d.PageSize()),
	}
}

// TotalPages is ceil(total / pageSize); zero when there is nothing to show.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
