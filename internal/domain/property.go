package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DecimalPlaces is the scale stored for prices, areas and payment amounts.
const DecimalPlaces = 2

// MaxPrice is the upper bound accepted for a listing price.
var MaxPrice = decimal.NewFromInt(1_000_000) //nolint:gochecknoglobals // immutable bound

// FeaturedLimit is the default number of featured listings returned.
const FeaturedLimit = 5

type Property struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Location    string          `json:"location"`
	LandlordID  uuid.UUID       `json:"landlordId"`
	Bedrooms    int             `json:"bedrooms"`
	Bathrooms   int             `json:"bathrooms"`
	Area        decimal.Decimal `json:"area"`
	IsAvailable bool            `json:"isAvailable"`
	IsFeatured  bool            `json:"isFeatured"`
	IsApproved  bool            `json:"isApproved"`
	ImageURLs   []string        `json:"imageUrls"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Flag returns the current value of a lifecycle flag.
func (p *Property) Flag(f Flag) bool {
	switch f {
	case FlagFeatured:
		return p.IsFeatured
	case FlagAvailable:
		return p.IsAvailable
	case FlagApproved:
		return p.IsApproved
	default:
		return false
	}
}

// SetFlag assigns a lifecycle flag.
func (p *Property) SetFlag(f Flag, v bool) {
	switch f {
	case FlagFeatured:
		p.IsFeatured = v
	case FlagAvailable:
		p.IsAvailable = v
	case FlagApproved:
		p.IsApproved = v
	}
}

// Flag names a boolean lifecycle column on a property.
type Flag string

const (
	FlagFeatured  Flag = "is_featured"
	FlagAvailable Flag = "is_available"
	FlagApproved  Flag = "is_approved"
)

// Valid reports whether f names a known lifecycle flag.
func (f Flag) Valid() bool {
	return f == FlagFeatured || f == FlagAvailable || f == FlagApproved
}

// NewProperty carries the landlord-supplied fields of a listing.
type NewProperty struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Location    string
	LandlordID  uuid.UUID
	Bedrooms    int
	Bathrooms   int
	Area        decimal.Decimal
	ImageURLs   []string
}

// PropertyPatch holds a partial content update. Nil fields are left unchanged.
type PropertyPatch struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Location    *string
	Bedrooms    *int
	Bathrooms   *int
	Area        *decimal.Decimal
}

// Empty reports whether the patch touches no field.
func (pp PropertyPatch) Empty() bool {
	return pp.Title == nil && pp.Description == nil && pp.Price == nil && pp.Location == nil &&
		pp.Bedrooms == nil && pp.Bathrooms == nil && pp.Area == nil
}

// Apply copies every supplied field onto p.
func (pp PropertyPatch) Apply(p *Property) {
	if pp.Title != nil {
		p.Title = *pp.Title
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Location != nil {
		p.Location = *pp.Location
	}
	if pp.Bedrooms != nil {
		p.Bedrooms = *pp.Bedrooms
	}
	if pp.Bathrooms != nil {
		p.Bathrooms = *pp.Bathrooms
	}
	if pp.Area != nil {
		p.Area = *pp.Area
	}
}

// PropertyQuery is a filtered, ordered range request against the store.
// A zero Limit means no upper bound.
type PropertyQuery struct {
	Filter PropertyFilter
	Offset int
	Limit  int
}

// PropertyRepository is the backing store contract of the catalog and the
// lifecycle controller. Query orders by creation time, newest first, and
// returns the exact count of rows matching the filter regardless of range.
type PropertyRepository interface {
	Create(ctx context.Context, p *Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*Property, error)
	Update(ctx context.Context, p *Property) error
	Delete(ctx context.Context, id uuid.UUID) error
	Query(ctx context.Context, q PropertyQuery) ([]*Property, int, error)
	AppendImage(ctx context.Context, id uuid.UUID, url string) error

	SetFlag(ctx context.Context, id uuid.UUID, flag Flag, value bool) error
	FlipFlag(ctx context.Context, id uuid.UUID, flag Flag) (bool, error)
	BulkApprove(ctx context.Context, ids []uuid.UUID) error
}
