package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/postpata/pata/internal/domain"
)

type PaymentRepo struct {
	s *Store
}

func (r *PaymentRepo) Create(_ context.Context, p *domain.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.properties[p.PropertyID]; !ok {
		return fmt.Errorf("paymentRepo.Create: property: %w", domain.ErrNotFound)
	}
	c := *p
	r.s.payments[p.ID] = &c
	return nil
}

func (r *PaymentRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.payments[id]
	if !ok {
		return nil, fmt.Errorf("paymentRepo.GetByID: %w", domain.ErrNotFound)
	}
	c := *p
	return &c, nil
}

func (r *PaymentRepo) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]*domain.Payment, error) {
	return r.list(func(p *domain.Payment) bool { return p.TenantID == tenantID }), nil
}

func (r *PaymentRepo) ListByProperty(_ context.Context, propertyID uuid.UUID) ([]*domain.Payment, error) {
	return r.list(func(p *domain.Payment) bool { return p.PropertyID == propertyID }), nil
}

func (r *PaymentRepo) list(match func(*domain.Payment) bool) []*domain.Payment {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*domain.Payment{}
	for _, p := range r.s.payments {
		if match(p) {
			c := *p
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Payment) int {
		return b.PaymentDate.Compare(a.PaymentDate)
	})
	return out
}

func (r *PaymentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.payments[id]
	if !ok {
		return fmt.Errorf("paymentRepo.UpdateStatus: %w", domain.ErrNotFound)
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	return nil
}
