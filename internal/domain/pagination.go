package domain

// DefaultPageSize is the page size used when the request does not set one.
const DefaultPageSize = 10

// MaxPageSize is the maximum allowed page size.
const MaxPageSize = 100

// PageRequest holds 1-based pagination parameters for list operations.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize fills in defaults for unset fields.
func (p PageRequest) Normalize() PageRequest {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = DefaultPageSize
	}
	return p
}

// Validate checks the pagination bounds: page >= 1, 1 <= limit <= 100.
func (p PageRequest) Validate() error {
	if p.Page < 1 {
		return ErrValidation("page must be a positive integer")
	}
	if p.Limit < 1 || p.Limit > MaxPageSize {
		return ErrValidation("limit must be between 1 and %d", MaxPageSize)
	}
	return nil
}

// Offset returns the row offset for the requested page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is the metadata block returned alongside a page of results.
type Pagination struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalItems      int64 `json:"totalItems"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// NewPagination computes pagination metadata for a page request and total
// item count. HasNextPage is true iff currentPage * limit < totalItems.
func NewPagination(p PageRequest, total int64) Pagination {
	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Pagination{
		CurrentPage:     p.Page,
		TotalPages:      totalPages,
		TotalItems:      total,
		ItemsPerPage:    p.Limit,
		HasNextPage:     int64(p.Page)*int64(p.Limit) < total,
		HasPreviousPage: p.Page > 1,
	}
}
