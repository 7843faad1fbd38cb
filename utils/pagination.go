package utils

import (
	"net/url"
	"strconv"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page holds parsed pagination parameters for list endpoints.
type Page struct {
	Number int
	Size   int
}

// Skip returns the number of documents to skip for this page.
func (p Page) Skip() int64 {
	return int64((p.Number - 1) * p.Size)
}

// Limit returns the page size as an int64 for driver options.
func (p Page) Limit() int64 {
	return int64(p.Size)
}

// ParsePage reads "page" and "limit" query parameters, clamping them to sane
// bounds. Absent or malformed values fall back to the defaults.
func ParsePage(query url.Values) Page {
	page := Page{Number: 1, Size: defaultPageSize}
	if n, err := strconv.Atoi(query.Get("page")); err == nil && n > 0 {
		page.Number = n
	}
	if n, err := strconv.Atoi(query.Get("limit")); err == nil && n > 0 {
		page.Size = n
		if page.Size > maxPageSize {
			page.Size = maxPageSize
		}
	}
	return page
}
