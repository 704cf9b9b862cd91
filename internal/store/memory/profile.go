package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/postpata/pata/internal/domain"
)

type ProfileRepo struct {
	s *Store
}

// taken reports whether another profile already uses p's email or phone.
// Callers hold the lock.
func (r *ProfileRepo) taken(p *domain.Profile) bool {
	for _, other := range r.s.profiles {
		if other.ID == p.ID {
			continue
		}
		if (p.Email != "" && other.Email == p.Email) || (p.Phone != "" && other.Phone == p.Phone) {
			return true
		}
	}
	return false
}

func (r *ProfileRepo) Create(_ context.Context, p *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.profiles[p.ID]; ok || r.taken(p) {
		return fmt.Errorf("profileRepo.Create: %w", domain.ErrConflict)
	}
	c := *p
	r.s.profiles[p.ID] = &c
	return nil
}

func (r *ProfileRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profileRepo.GetByID: %w", domain.ErrNotFound)
	}
	c := *p
	return &c, nil
}

func (r *ProfileRepo) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	return r.find("GetByEmail", func(p *domain.Profile) bool { return email != "" && p.Email == email })
}

func (r *ProfileRepo) GetByPhone(_ context.Context, phone string) (*domain.Profile, error) {
	return r.find("GetByPhone", func(p *domain.Profile) bool { return phone != "" && p.Phone == phone })
}

func (r *ProfileRepo) find(op string, match func(*domain.Profile) bool) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.profiles {
		if match(p) {
			c := *p
			return &c, nil
		}
	}
	return nil, fmt.Errorf("profileRepo.%s: %w", op, domain.ErrNotFound)
}

// Update stores name, contact and verification state. Role is immutable.
func (r *ProfileRepo) Update(_ context.Context, p *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.profiles[p.ID]
	if !ok {
		return fmt.Errorf("profileRepo.Update: %w", domain.ErrNotFound)
	}
	if r.taken(p) {
		return fmt.Errorf("profileRepo.Update: %w", domain.ErrConflict)
	}
	cur.FullName = p.FullName
	cur.Email = p.Email
	cur.Phone = p.Phone
	cur.IsVerified = p.IsVerified
	cur.UpdatedAt = p.UpdatedAt
	return nil
}

func (r *ProfileRepo) SetVerified(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[id]
	if !ok {
		return fmt.Errorf("profileRepo.SetVerified: %w", domain.ErrNotFound)
	}
	p.IsVerified = true
	p.UpdatedAt = time.Now().UTC()
	return nil
}
