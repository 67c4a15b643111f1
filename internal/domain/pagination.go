package domain

import "math"

// PageRequest holds zero-based offset pagination parameters for list queries.
type PageRequest struct {
	Page int
	Size int
}

const (
	// DefaultPageSize is used when a request does not specify a size.
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps Page*Size within a 32-bit offset for every allowed size.
	MaxPage = math.MaxInt32 / MaxPageSize
)

// Normalize returns a copy with page in [0, MaxPage] and size in [1, MaxPageSize].
func (p PageRequest) Normalize() PageRequest {
	p.Page = max(0, min(p.Page, MaxPage))
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	p.Size = min(p.Size, MaxPageSize)
	return p
}

// Offset returns the row offset for the current page.
func (p PageRequest) Offset() int {
	p = p.Normalize()
	return p.Page * p.Size
}

// Page is one slice of a paginated result.
// swagger:model Page
type Page[T any] struct {
	Content       []T `json:"content"`
	Page          int `json:"page"`
	Size          int `json:"size"`
	TotalElements int `json:"total_elements"`
	TotalPages    int `json:"total_pages"`
}

// NewPage builds a Page from content, the request that produced it, and the total row count.
// TotalPages is ceiling(total / size).
func NewPage[T any](content []T, req PageRequest, total int) *Page[T] {
	req = req.Normalize()
	if content == nil {
		content = []T{}
	}
	return &Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    (total + req.Size - 1) / req.Size,
	}
}
