package pagination

import (
	"math"

	"github.com/kavro/tidepool/pkg/faults"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50
)

// Params is the canonical page/limit pair shared by every list operation.
type Params struct {
	Page  int
	Limit int
}

// Default returns the parameters used when a caller supplies none.
func Default() Params {
	return Params{Page: DefaultPage, Limit: DefaultLimit}
}

// Normalize applies defaults for unset (zero) values and clamps the limit to
// MaxLimit. Explicitly negative values are left for Validate to reject.
func Normalize(page, limit int) Params {
	p := Params{Page: page, Limit: limit}
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Clamped caps the limit at MaxLimit, leaving everything else untouched.
func (p Params) Clamped() Params {
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Validate rejects out-of-bounds parameters before any data access.
func (p Params) Validate() error {
	if p.Page < 1 || p.Limit < 1 {
		return faults.Newf(faults.InvalidPagination, "invalid pagination: page=%d limit=%d", p.Page, p.Limit)
	}
	return nil
}

// Skip returns the number of rows to skip for this page.
func (p Params) Skip() int {
	return (p.Page - 1) * p.Limit
}

// Meta describes one page of a paginated response.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewMeta computes the page metadata for a total row count.
func NewMeta(p Params, total int64) Meta {
	totalPages := int(math.Ceil(float64(total) / float64(p.Limit)))
	return Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}
