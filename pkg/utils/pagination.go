package utils

import (
	"net/http"
	"strconv"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page holds clamped pagination parameters: page is 1-based and at
// least 1, pageSize is clamped to [1, 100].
type Page struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for this page
func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ParsePage reads page and pageSize query parameters with clamping
func ParsePage(r *http.Request) Page {
	page := 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 1 {
		page = v
	}

	size := defaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("pageSize")); err == nil && v > 0 {
		size = v
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	return Page{Page: page, PageSize: size}
}

// Paginated is the envelope every list endpoint returns
type Paginated struct {
	Items      interface{} `json:"items"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// NewPaginated builds the list envelope. TotalPages is at least 1 so
// empty result sets still render a single page.
func NewPaginated(items interface{}, total int, p Page) Paginated {
	pages := (total + p.PageSize - 1) / p.PageSize
	if pages < 1 {
		pages = 1
	}
	return Paginated{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: pages,
	}
}
