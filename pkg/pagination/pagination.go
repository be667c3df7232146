package pagination

import "strings"

const (
	// DefaultPage is the first page; pages are 1-indexed.
	DefaultPage = 1
	// DefaultPageSize is the standard page size when one is not provided.
	DefaultPageSize = 10
	// MaxPageSize caps how many rows any page query can request.
	MaxPageSize = 100

	SortAsc  = "asc"
	SortDesc = "desc"
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Meta is the pagination block returned next to a page of rows.
type Meta struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	PageCount int   `json:"pageCount"`
	Total     int64 `json:"total"`
}

// Normalize applies the defaults and caps the page size.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset is the number of rows to skip for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// NewMeta builds the meta block for a normalized page and a total row count.
func NewMeta(p Params, total int64) Meta {
	n := p.Normalize()
	pageCount := int((total + int64(n.PageSize) - 1) / int64(n.PageSize))
	return Meta{
		Page:      n.Page,
		PageSize:  n.PageSize,
		PageCount: pageCount,
		Total:     total,
	}
}

// NormalizeSortOrder returns asc or desc, defaulting to desc.
func NormalizeSortOrder(order string) string {
	if strings.EqualFold(strings.TrimSpace(order), SortAsc) {
		return SortAsc
	}
	return SortDesc
}
