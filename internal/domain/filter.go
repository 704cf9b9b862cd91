package domain

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropertyFilter is a conjunctive set of listing constraints. Nil fields
// impose no constraint.
type PropertyFilter struct {
	PriceMin    *decimal.Decimal
	PriceMax    *decimal.Decimal
	Location    *string // case-insensitive substring
	Bedrooms    *int
	IsAvailable *bool
	IsFeatured  *bool
	LandlordID  *uuid.UUID
}

// Matches reports whether p satisfies every active constraint.
func (f PropertyFilter) Matches(p *Property) bool {
	if f.PriceMin != nil && p.Price.LessThan(*f.PriceMin) {
		return false
	}
	if f.PriceMax != nil && p.Price.GreaterThan(*f.PriceMax) {
		return false
	}
	if f.Location != nil && !strings.Contains(strings.ToLower(p.Location), strings.ToLower(*f.Location)) {
		return false
	}
	if f.Bedrooms != nil && p.Bedrooms != *f.Bedrooms {
		return false
	}
	if f.IsAvailable != nil && p.IsAvailable != *f.IsAvailable {
		return false
	}
	if f.IsFeatured != nil && p.IsFeatured != *f.IsFeatured {
		return false
	}
	if f.LandlordID != nil && p.LandlordID != *f.LandlordID {
		return false
	}
	return true
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageRequest is a validated page/limit pair.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest applies defaults to non-positive values and caps the limit.
// Pages whose offset would overflow int are pulled back to the largest
// representable page, which lies past the end of any result set.
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page-1 > math.MaxInt/limit {
		page = math.MaxInt / limit
	}
	return PageRequest{Page: page, Limit: limit}
}

// Offset is the zero-based index of the first row on the page.
func (pr PageRequest) Offset() int {
	return (pr.Page - 1) * pr.Limit
}

// Page is one slice of an ordered, filtered result set.
type Page[T any] struct {
	Items       []T `json:"items"`
	Total       int `json:"total"`
	Page        int `json:"page"`
	Limit       int `json:"limit"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
}

// NewPage builds the page descriptor for items taken from a result set of
// size total.
func NewPage[T any](items []T, total int, pr PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if pr.Limit > 0 {
		totalPages = (total + pr.Limit - 1) / pr.Limit
	}
	current := min(pr.Page, max(totalPages, 1))
	current = max(current, 1)
	return Page[T]{
		Items:       items,
		Total:       total,
		Page:        pr.Page,
		Limit:       pr.Limit,
		TotalPages:  totalPages,
		CurrentPage: current,
	}
}
