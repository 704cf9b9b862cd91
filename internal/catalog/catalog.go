// Package catalog answers listing queries and manages property content.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/postpata/pata/internal/apperr"
	"github.com/postpata/pata/internal/auth"
	"github.com/postpata/pata/internal/domain"
)

// Client-facing messages.
const (
	MsgNotFound = "Property not found"
	MsgNotOwner = "You do not own this property"
)

// Announcer is told about newly created listings awaiting approval.
type Announcer interface {
	PropertyCreated(ctx context.Context, p *domain.Property, landlord *domain.Profile) error
}

type Catalog struct {
	properties domain.PropertyRepository
	profiles   domain.ProfileRepository
	announcer  Announcer
	now        func() time.Time
}

type Option func(*Catalog)

// WithAnnouncer registers a listener for created properties.
func WithAnnouncer(a Announcer) Option {
	return func(c *Catalog) { c.announcer = a }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

func New(properties domain.PropertyRepository, profiles domain.ProfileRepository, opts ...Option) *Catalog {
	c := &Catalog{
		properties: properties,
		profiles:   profiles,
		now:        time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// List returns one page of properties matching filter, newest first.
func (c *Catalog) List(ctx context.Context, filter domain.PropertyFilter, pr domain.PageRequest) (domain.Page[*domain.Property], error) {
	pr = domain.NewPageRequest(pr.Page, pr.Limit)

	items, total, err := c.properties.Query(ctx, domain.PropertyQuery{
		Filter: filter,
		Offset: pr.Offset(),
		Limit:  pr.Limit,
	})
	if err != nil {
		return domain.Page[*domain.Property]{}, storeError("List", err)
	}

	return domain.NewPage(items, total, pr), nil
}

// ListAvailable is List restricted to available properties.
func (c *Catalog) ListAvailable(ctx context.Context, filter domain.PropertyFilter, pr domain.PageRequest) (domain.Page[*domain.Property], error) {
	available := true
	filter.IsAvailable = &available
	return c.List(ctx, filter, pr)
}

// ListFeatured returns up to limit featured properties, newest first. A
// non-positive limit means the default of five.
func (c *Catalog) ListFeatured(ctx context.Context, limit int) ([]*domain.Property, error) {
	if limit <= 0 {
		limit = domain.FeaturedLimit
	}
	featured := true
	items, _, err := c.properties.Query(ctx, domain.PropertyQuery{
		Filter: domain.PropertyFilter{IsFeatured: &featured},
		Limit:  limit,
	})
	if err != nil {
		return nil, storeError("ListFeatured", err)
	}
	return items, nil
}

// ListByLandlord returns every property owned by landlordID, newest first.
func (c *Catalog) ListByLandlord(ctx context.Context, landlordID uuid.UUID) ([]*domain.Property, error) {
	items, _, err := c.properties.Query(ctx, domain.PropertyQuery{
		Filter: domain.PropertyFilter{LandlordID: &landlordID},
	})
	if err != nil {
		return nil, storeError("ListByLandlord", err)
	}
	return items, nil
}

func (c *Catalog) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	p, err := c.properties.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("GetByID", err)
	}
	return p, nil
}

// Owned returns the property when caller is its landlord. With allowAdmin an
// admin caller passes as well.
func (c *Catalog) Owned(ctx context.Context, id uuid.UUID, caller auth.Identity, allowAdmin bool) (*domain.Property, error) {
	p, err := c.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.LandlordID == caller.SubjectID || (allowAdmin && caller.Role == domain.RoleAdmin) {
		return p, nil
	}
	return nil, apperr.Wrap(apperr.Forbidden,
		fmt.Errorf("catalog.Owned: %s is not the landlord of %s", caller.SubjectID, id), MsgNotOwner)
}

// Create validates and stores a new listing. New listings are available,
// not featured and not approved.
func (c *Catalog) Create(ctx context.Context, in domain.NewProperty) (*domain.Property, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)

	var violations []apperr.Violation
	if in.Title == "" {
		violations = append(violations, violation("title", "Title is required"))
	}
	if in.Description == "" {
		violations = append(violations, violation("description", "Description is required"))
	}
	if in.Location == "" {
		violations = append(violations, violation("location", "Location is required"))
	}
	violations = append(violations, checkNumbers(&in.Price, &in.Bedrooms, &in.Bathrooms, &in.Area)...)

	var landlord *domain.Profile
	if in.LandlordID == uuid.Nil {
		violations = append(violations, violation("landlordId", "Landlord ID is required"))
	} else {
		p, err := c.profiles.GetByID(ctx, in.LandlordID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			violations = append(violations, violation("landlordId", "Landlord not found"))
		case err != nil:
			return nil, storeError("Create", err)
		case p.Role != domain.RoleLandlord:
			violations = append(violations, violation("landlordId", "Referenced profile is not a landlord"))
		default:
			landlord = p
		}
	}

	if len(violations) > 0 {
		return nil, apperr.Validation(violations)
	}

	now := c.now().UTC()
	p := &domain.Property{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Location:    in.Location,
		LandlordID:  in.LandlordID,
		Bedrooms:    in.Bedrooms,
		Bathrooms:   in.Bathrooms,
		Area:        in.Area,
		IsAvailable: true,
		ImageURLs:   append([]string{}, in.ImageURLs...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.properties.Create(ctx, p); err != nil {
		return nil, storeError("Create", err)
	}

	if c.announcer != nil {
		if err := c.announcer.PropertyCreated(ctx, p, landlord); err != nil {
			log.Warn().Err(err).Str("property_id", p.ID.String()).Msg("catalog: announce new property")
		}
	}

	return p, nil
}

// Update applies the supplied fields of patch. An empty patch returns the
// property unchanged.
func (c *Catalog) Update(ctx context.Context, id uuid.UUID, patch domain.PropertyPatch) (*domain.Property, error) {
	p, err := c.properties.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("Update", err)
	}
	if patch.Empty() {
		return p, nil
	}

	patch.Apply(p)

	var violations []apperr.Violation
	texts := []struct {
		field, msg string
		v          *string
	}{
		{"title", "Title cannot be empty", patch.Title},
		{"description", "Description cannot be empty", patch.Description},
		{"location", "Location cannot be empty", patch.Location},
	}
	for _, t := range texts {
		if t.v != nil && strings.TrimSpace(*t.v) == "" {
			violations = append(violations, violation(t.field, t.msg))
		}
	}
	violations = append(violations, checkNumbers(patch.Price, patch.Bedrooms, patch.Bathrooms, patch.Area)...)
	if len(violations) > 0 {
		return nil, apperr.Validation(violations)
	}

	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.Location = strings.TrimSpace(p.Location)
	p.UpdatedAt = c.now().UTC()

	if err := c.properties.Update(ctx, p); err != nil {
		return nil, storeError("Update", err)
	}
	return p, nil
}

// Delete removes the property together with its maintenance requests and
// payments.
func (c *Catalog) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.properties.Delete(ctx, id); err != nil {
		return storeError("Delete", err)
	}
	return nil
}

// AttachImage appends url to the property's images.
func (c *Catalog) AttachImage(ctx context.Context, id uuid.UUID, url string) (*domain.Property, error) {
	if err := c.properties.AppendImage(ctx, id, url); err != nil {
		return nil, storeError("AttachImage", err)
	}
	return c.GetByID(ctx, id)
}

// checkNumbers validates whichever numeric fields are non-nil.
func checkNumbers(price *decimal.Decimal, bedrooms, bathrooms *int, area *decimal.Decimal) []apperr.Violation {
	var out []apperr.Violation
	if price != nil && (price.IsNegative() || price.GreaterThan(domain.MaxPrice)) {
		out = append(out, violation("price", "Price must be between 0 and 1,000,000"))
	}
	if price != nil && !fitsScale(*price) {
		out = append(out, violation("price", "Price must have at most 2 decimal places"))
	}
	if bedrooms != nil && *bedrooms < 0 {
		out = append(out, violation("bedrooms", "Bedrooms must be a non-negative integer"))
	}
	if bathrooms != nil && *bathrooms < 0 {
		out = append(out, violation("bathrooms", "Bathrooms must be a non-negative integer"))
	}
	if area != nil && area.IsNegative() {
		out = append(out, violation("area", "Area must be a non-negative number"))
	}
	if area != nil && !fitsScale(*area) {
		out = append(out, violation("area", "Area must have at most 2 decimal places"))
	}
	return out
}

func fitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(domain.DecimalPlaces))
}

func violation(field, msg string) apperr.Violation {
	return apperr.Violation{Field: field, Location: "body", Message: msg}
}

func storeError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperr.Wrap(apperr.NotFound, fmt.Errorf("catalog.%s: %w", op, err), MsgNotFound)
	}
	return apperr.Wrap(apperr.Internal, fmt.Errorf("catalog.%s: %w", op, err), "Failed to "+opVerb(op)+" property")
}

func opVerb(op string) string {
	switch op {
	case "Create":
		return "create"
	case "Update":
		return "update"
	case "Delete":
		return "delete"
	case "AttachImage":
		return "attach image to"
	default:
		return "fetch"
	}
}
