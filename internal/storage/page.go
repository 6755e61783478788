package storage

import "github.com/Sanket3107/Rupaya/internal/apperr"

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is an offset window into a listing.
type Page struct {
	Skip  int
	Limit int
}

// NewPage validates a requested window. A zero limit means DefaultLimit.
func NewPage(skip, limit int) (Page, error) {
	if skip < 0 {
		return Page{}, apperr.Validation("skip cannot be negative")
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 0 || limit > MaxLimit {
		return Page{}, apperr.Validation("limit must be between 1 and %d", MaxLimit)
	}
	return Page{Skip: skip, Limit: limit}, nil
}

// Paginated is one page of a listing plus enough to fetch the next one.
type Paginated[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Skip    int  `json:"skip"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"has_more"`
}

// NewPaginated wraps a page that was already cut by the database.
func NewPaginated[T any](items []T, total int, page Page) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	return Paginated[T]{
		Items:   items,
		Total:   total,
		Skip:    page.Skip,
		Limit:   page.Limit,
		HasMore: page.Skip+len(items) < total,
	}
}

// PaginateSlice cuts a page out of a fully materialized listing.
func PaginateSlice[T any](all []T, page Page) Paginated[T] {
	start := min(page.Skip, len(all))
	end := min(start+page.Limit, len(all))
	return NewPaginated(all[start:end], len(all), page)
}
