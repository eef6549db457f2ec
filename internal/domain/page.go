package domain

// DefaultPageLimit applies when a request leaves the page limit unset.
const DefaultPageLimit = 50

// Pagination selects a window over a filtered listing.
type Pagination struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// OrDefault fills in the default limit for zero-valued requests.
func (p Pagination) OrDefault() Pagination {
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	return p
}

// Page is a window of a filtered listing. Total is the post-filter,
// pre-pagination size; Offset and Limit echo the request.
type Page[T any] struct {
	Items  []T    `json:"items"`
	Total  uint64 `json:"total"`
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// EmptyPage is the row-level-security "nothing visible" response: no items,
// zero total, requested window echoed back.
func EmptyPage[T any](p Pagination) Page[T] {
	return Page[T]{Items: []T{}, Total: 0, Offset: p.Offset, Limit: p.Limit}
}
