package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/postpata/pata/internal/domain"
)

type MaintenanceRepo struct {
	s *Store
}

func (r *MaintenanceRepo) Create(_ context.Context, m *domain.MaintenanceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.properties[m.PropertyID]; !ok {
		return fmt.Errorf("maintenanceRepo.Create: property: %w", domain.ErrNotFound)
	}
	c := *m
	r.s.maintenance[m.ID] = &c
	return nil
}

func (r *MaintenanceRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.MaintenanceRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.maintenance[id]
	if !ok {
		return nil, fmt.Errorf("maintenanceRepo.GetByID: %w", domain.ErrNotFound)
	}
	c := *m
	return &c, nil
}

func (r *MaintenanceRepo) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]*domain.MaintenanceRequest, error) {
	return r.list(func(m *domain.MaintenanceRequest) bool { return m.TenantID == tenantID }), nil
}

func (r *MaintenanceRepo) ListByProperty(_ context.Context, propertyID uuid.UUID) ([]*domain.MaintenanceRequest, error) {
	return r.list(func(m *domain.MaintenanceRequest) bool { return m.PropertyID == propertyID }), nil
}

func (r *MaintenanceRepo) list(match func(*domain.MaintenanceRequest) bool) []*domain.MaintenanceRequest {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*domain.MaintenanceRequest{}
	for _, m := range r.s.maintenance {
		if match(m) {
			c := *m
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *domain.MaintenanceRequest) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func (r *MaintenanceRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.MaintenanceStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.maintenance[id]
	if !ok {
		return fmt.Errorf("maintenanceRepo.UpdateStatus: %w", domain.ErrNotFound)
	}
	m.Status = status
	m.UpdatedAt = time.Now().UTC()
	return nil
}
