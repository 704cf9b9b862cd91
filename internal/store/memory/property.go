package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/postpata/pata/internal/domain"
)

type PropertyRepo struct {
	s *Store
}

func (r *PropertyRepo) Create(_ context.Context, p *domain.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.properties[p.ID]; ok {
		return fmt.Errorf("propertyRepo.Create: %w", domain.ErrConflict)
	}
	r.s.seq++
	r.s.properties[p.ID] = &propertyRow{p: *copyProperty(p), seq: r.s.seq}
	return nil
}

func (r *PropertyRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Property, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.properties[id]
	if !ok {
		return nil, fmt.Errorf("propertyRepo.GetByID: %w", domain.ErrNotFound)
	}
	return copyProperty(&row.p), nil
}

// Update overwrites the content fields. Flags and images are left alone.
func (r *PropertyRepo) Update(_ context.Context, p *domain.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.properties[p.ID]
	if !ok {
		return fmt.Errorf("propertyRepo.Update: %w", domain.ErrNotFound)
	}
	cur := &row.p
	cur.Title = p.Title
	cur.Description = p.Description
	cur.Price = p.Price
	cur.Location = p.Location
	cur.Bedrooms = p.Bedrooms
	cur.Bathrooms = p.Bathrooms
	cur.Area = p.Area
	cur.UpdatedAt = p.UpdatedAt
	return nil
}

// Delete removes the property with its maintenance requests and payments.
func (r *PropertyRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.properties[id]; !ok {
		return fmt.Errorf("propertyRepo.Delete: %w", domain.ErrNotFound)
	}
	for mid, m := range r.s.maintenance {
		if m.PropertyID == id {
			delete(r.s.maintenance, mid)
		}
	}
	for pid, p := range r.s.payments {
		if p.PropertyID == id {
			delete(r.s.payments, pid)
		}
	}
	delete(r.s.properties, id)
	return nil
}

func (r *PropertyRepo) Query(_ context.Context, q domain.PropertyQuery) ([]*domain.Property, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]*propertyRow, 0, len(r.s.properties))
	for _, row := range r.s.properties {
		if q.Filter.Matches(&row.p) {
			matched = append(matched, row)
		}
	}
	slices.SortFunc(matched, func(a, b *propertyRow) int {
		if c := b.p.CreatedAt.Compare(a.p.CreatedAt); c != 0 {
			return c
		}
		return int(a.seq - b.seq)
	})

	total := len(matched)
	start := min(max(q.Offset, 0), total)
	end := total
	if q.Limit > 0 {
		end = min(start+q.Limit, total)
	}

	out := make([]*domain.Property, 0, end-start)
	for _, row := range matched[start:end] {
		out = append(out, copyProperty(&row.p))
	}
	return out, total, nil
}

func (r *PropertyRepo) AppendImage(_ context.Context, id uuid.UUID, url string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.properties[id]
	if !ok {
		return fmt.Errorf("propertyRepo.AppendImage: %w", domain.ErrNotFound)
	}
	row.p.ImageURLs = append(row.p.ImageURLs, url)
	row.p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *PropertyRepo) SetFlag(_ context.Context, id uuid.UUID, flag domain.Flag, value bool) error {
	if !flag.Valid() {
		return fmt.Errorf("propertyRepo.SetFlag: unknown flag %q", flag)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.properties[id]
	if !ok {
		return fmt.Errorf("propertyRepo.SetFlag: %w", domain.ErrNotFound)
	}
	row.p.SetFlag(flag, value)
	row.p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *PropertyRepo) FlipFlag(_ context.Context, id uuid.UUID, flag domain.Flag) (bool, error) {
	if !flag.Valid() {
		return false, fmt.Errorf("propertyRepo.FlipFlag: unknown flag %q", flag)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.properties[id]
	if !ok {
		return false, fmt.Errorf("propertyRepo.FlipFlag: %w", domain.ErrNotFound)
	}
	v := !row.p.Flag(flag)
	row.p.SetFlag(flag, v)
	row.p.UpdatedAt = time.Now().UTC()
	return v, nil
}

// BulkApprove approves every listed property that exists; unknown ids are
// skipped.
func (r *PropertyRepo) BulkApprove(_ context.Context, ids []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	for _, id := range ids {
		if row, ok := r.s.properties[id]; ok {
			row.p.IsApproved = true
			row.p.UpdatedAt = now
		}
	}
	return nil
}
