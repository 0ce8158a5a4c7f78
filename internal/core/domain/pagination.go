package domain

// MaxPerPage caps the page size a caller may request.
const MaxPerPage = 100

// PageRequest is a normalized page position.
type PageRequest struct {
	Page    int
	PerPage int
}

// NewPageRequest normalizes a requested page. Pages start at 1; a
// non-positive perPage falls back to defaultPerPage.
func NewPageRequest(page, perPage, defaultPerPage int) PageRequest {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage <= 0 {
		perPage = 10
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return PageRequest{Page: page, PerPage: perPage}
}

// Offset returns the number of records to skip.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.PerPage
}

// Page is one page of an ordered result set.
type Page[T any] struct {
	Items       []T `json:"data"`
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
}

// NewPage wraps items fetched for req out of total records.
// LastPage is at least 1 so an empty result still reports one page.
func NewPage[T any](items []T, total int, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	last := 1
	if total > 0 {
		last = (total + req.PerPage - 1) / req.PerPage
	}
	return Page[T]{
		Items:       items,
		Total:       total,
		PerPage:     req.PerPage,
		CurrentPage: req.Page,
		LastPage:    last,
	}
}
