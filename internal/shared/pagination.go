package shared

import (
	"net/url"
	"strconv"
)

const (
	// DefaultPerPage is the page size used when the client does not ask for one.
	DefaultPerPage = 20
	// MaxPerPage caps the page size a client may request.
	MaxPerPage = 100
)

// Pagination carries the page window of a listing request. Pages are 0-based.
type Pagination struct {
	Page    uint64
	PerPage uint64
}

// ParsePagination reads page/per_page query parameters, applying defaults and caps.
func ParsePagination(values url.Values) Pagination {
	p := Pagination{Page: 0, PerPage: DefaultPerPage}
	if raw := values.Get("page"); raw != "" {
		if page, err := strconv.ParseUint(raw, 10, 64); err == nil {
			p.Page = page
		}
	}
	if raw := values.Get("per_page"); raw != "" {
		if perPage, err := strconv.ParseUint(raw, 10, 64); err == nil && perPage > 0 {
			p.PerPage = perPage
		}
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the row offset of the window.
func (p Pagination) Offset() uint64 {
	return p.Page * p.PerPage
}

// TotalPages computes the number of pages covering total rows.
// An empty result still counts as one page.
func (p Pagination) TotalPages(total uint64) uint64 {
	if total == 0 {
		total = 1
	}
	return ((total - 1) / p.PerPage) + 1
}
