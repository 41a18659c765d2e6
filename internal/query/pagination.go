package query

import "strconv"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageRequest is a normalized (page, limit) pair.
type PageRequest struct {
	Page  int
	Limit int
}

// ParsePage normalizes raw page/limit strings. Missing or sub-1 values fall
// back to the defaults; limits above MaxLimit are capped silently since an
// oversized limit is a resource concern, not a caller error.
func ParsePage(pageStr, limitStr string) PageRequest {
	page := DefaultPage
	if n, err := strconv.Atoi(pageStr); err == nil && n >= 1 {
		page = n
	}

	limit := DefaultLimit
	if n, err := strconv.Atoi(limitStr); err == nil && n >= 1 {
		limit = n
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return PageRequest{Page: page, Limit: limit}
}

// Skip returns the offset of the first item on the page.
func (p PageRequest) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// Limit64 returns the limit as the int64 the driver expects.
func (p PageRequest) Limit64() int64 {
	return int64(p.Limit)
}

// PageMeta describes a result page for client-side navigation.
type PageMeta struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

// BuildMeta computes page metadata for a total count under the given
// request.
func BuildMeta(total int64, p PageRequest) PageMeta {
	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return PageMeta{
		CurrentPage:  p.Page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: p.Limit,
		HasNextPage:  p.Page < totalPages,
		HasPrevPage:  p.Page > 1,
	}
}
