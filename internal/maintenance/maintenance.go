// Package maintenance tracks repair requests raised by tenants against a
// property and worked by its landlord.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/postpata/pata/internal/apperr"
	"github.com/postpata/pata/internal/auth"
	"github.com/postpata/pata/internal/domain"
)

const msgNotFound = "Maintenance request not found"

// Properties resolves properties and their ownership.
// *catalog.Catalog satisfies this interface.
type Properties interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error)
	Owned(ctx context.Context, id uuid.UUID, caller auth.Identity, allowAdmin bool) (*domain.Property, error)
}

type Service struct {
	requests   domain.MaintenanceRepository
	properties Properties
	now        func() time.Time
}

func New(requests domain.MaintenanceRepository, properties Properties) *Service {
	return &Service{requests: requests, properties: properties, now: time.Now}
}

// Create files a pending request by tenant against an existing property.
func (s *Service) Create(ctx context.Context, tenant auth.Identity, propertyID uuid.UUID, description string) (*domain.MaintenanceRequest, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperr.Validation([]apperr.Violation{{
			Field: "description", Location: "body", Message: "Description is required",
		}})
	}

	if _, err := s.properties.GetByID(ctx, propertyID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	m := &domain.MaintenanceRequest{
		ID:          uuid.New(),
		PropertyID:  propertyID,
		TenantID:    tenant.SubjectID,
		Description: description,
		Status:      domain.MaintenancePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.requests.Create(ctx, m); err != nil {
		return nil, storeError("Create", err, "Failed to create maintenance request")
	}
	return m, nil
}

// ListForTenant returns the tenant's own requests, newest first.
func (s *Service) ListForTenant(ctx context.Context, tenant auth.Identity) ([]*domain.MaintenanceRequest, error) {
	items, err := s.requests.ListByTenant(ctx, tenant.SubjectID)
	if err != nil {
		return nil, storeError("ListForTenant", err, "Failed to fetch maintenance requests")
	}
	return items, nil
}

// ListForProperty returns the requests raised against a property. Only its
// landlord or an admin may read them.
func (s *Service) ListForProperty(ctx context.Context, caller auth.Identity, propertyID uuid.UUID) ([]*domain.MaintenanceRequest, error) {
	if _, err := s.properties.Owned(ctx, propertyID, caller, true); err != nil {
		return nil, err
	}
	items, err := s.requests.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, storeError("ListForProperty", err, "Failed to fetch maintenance requests")
	}
	return items, nil
}

// UpdateStatus moves a request to status. Only the property's landlord may.
func (s *Service) UpdateStatus(ctx context.Context, caller auth.Identity, id uuid.UUID, status domain.MaintenanceStatus) (*domain.MaintenanceRequest, error) {
	m, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("UpdateStatus", err, "Failed to update maintenance request")
	}
	if _, err := s.properties.Owned(ctx, m.PropertyID, caller, false); err != nil {
		return nil, err
	}
	if err := s.requests.UpdateStatus(ctx, id, status); err != nil {
		return nil, storeError("UpdateStatus", err, "Failed to update maintenance request")
	}
	m.Status = status
	m.UpdatedAt = s.now().UTC()
	return m, nil
}

func storeError(op string, err error, msg string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperr.Wrap(apperr.NotFound, fmt.Errorf("maintenance.%s: %w", op, err), msgNotFound)
	}
	return apperr.Wrap(apperr.Internal, fmt.Errorf("maintenance.%s: %w", op, err), msg)
}
