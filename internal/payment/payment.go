// Package payment records rent payments. Payments carry a status only; no
// processor is involved.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/postpata/pata/internal/apperr"
	"github.com/postpata/pata/internal/auth"
	"github.com/postpata/pata/internal/domain"
)

const msgNotFound = "Payment not found"

// Properties resolves properties and their ownership.
// *catalog.Catalog satisfies this interface.
type Properties interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error)
	Owned(ctx context.Context, id uuid.UUID, caller auth.Identity, allowAdmin bool) (*domain.Property, error)
}

type Service struct {
	payments   domain.PaymentRepository
	properties Properties
	now        func() time.Time
}

func New(payments domain.PaymentRepository, properties Properties) *Service {
	return &Service{payments: payments, properties: properties, now: time.Now}
}

// Create records a pending payment by tenant. A zero paidAt means now.
func (s *Service) Create(ctx context.Context, tenant auth.Identity, propertyID uuid.UUID, amount decimal.Decimal, paidAt time.Time) (*domain.Payment, error) {
	if !amount.IsPositive() {
		return nil, apperr.Validation([]apperr.Violation{{
			Field: "amount", Location: "body", Message: "Amount must be a positive number",
		}})
	}

	if _, err := s.properties.GetByID(ctx, propertyID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if paidAt.IsZero() {
		paidAt = now
	}
	p := &domain.Payment{
		ID:          uuid.New(),
		PropertyID:  propertyID,
		TenantID:    tenant.SubjectID,
		Amount:      amount,
		PaymentDate: paidAt.UTC(),
		Status:      domain.PaymentPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, storeError("Create", err, "Failed to record payment")
	}
	return p, nil
}

// ListForTenant returns the tenant's payments, latest payment date first.
func (s *Service) ListForTenant(ctx context.Context, tenant auth.Identity) ([]*domain.Payment, error) {
	items, err := s.payments.ListByTenant(ctx, tenant.SubjectID)
	if err != nil {
		return nil, storeError("ListForTenant", err, "Failed to fetch payments")
	}
	return items, nil
}

// ListForProperty returns payments made for a property to its landlord or an
// admin.
func (s *Service) ListForProperty(ctx context.Context, caller auth.Identity, propertyID uuid.UUID) ([]*domain.Payment, error) {
	if _, err := s.properties.Owned(ctx, propertyID, caller, true); err != nil {
		return nil, err
	}
	items, err := s.payments.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, storeError("ListForProperty", err, "Failed to fetch payments")
	}
	return items, nil
}

// Confirm marks a payment completed.
func (s *Service) Confirm(ctx context.Context, caller auth.Identity, id uuid.UUID) (*domain.Payment, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("Confirm", err, "Failed to confirm payment")
	}
	if _, err := s.properties.Owned(ctx, p.PropertyID, caller, true); err != nil {
		return nil, err
	}
	if p.Status == domain.PaymentCompleted {
		return p, nil
	}
	if err := s.payments.UpdateStatus(ctx, id, domain.PaymentCompleted); err != nil {
		return nil, storeError("Confirm", err, "Failed to confirm payment")
	}
	p.Status = domain.PaymentCompleted
	p.UpdatedAt = s.now().UTC()
	return p, nil
}

func storeError(op string, err error, msg string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperr.Wrap(apperr.NotFound, fmt.Errorf("payment.%s: %w", op, err), msgNotFound)
	}
	return apperr.Wrap(apperr.Internal, fmt.Errorf("payment.%s: %w", op, err), msg)
}
