// Package memory is an in-process implementation of the repositories, used
// for local development and tests. All repositories share one lock so a
// property delete can cascade atomically.
package memory

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/postpata/pata/internal/domain"
)

type Store struct {
	mu sync.RWMutex

	seq          int64
	properties   map[uuid.UUID]*propertyRow
	profiles     map[uuid.UUID]*domain.Profile
	maintenance  map[uuid.UUID]*domain.MaintenanceRequest
	payments     map[uuid.UUID]*domain.Payment
	propertyRepo *PropertyRepo
	profileRepo  *ProfileRepo
	maintRepo    *MaintenanceRepo
	paymentRepo  *PaymentRepo
}

// propertyRow keeps insertion order to break creation-time ties.
type propertyRow struct {
	p   domain.Property
	seq int64
}

func New() *Store {
	s := &Store{
		properties:  make(map[uuid.UUID]*propertyRow),
		profiles:    make(map[uuid.UUID]*domain.Profile),
		maintenance: make(map[uuid.UUID]*domain.MaintenanceRequest),
		payments:    make(map[uuid.UUID]*domain.Payment),
	}
	s.propertyRepo = &PropertyRepo{s: s}
	s.profileRepo = &ProfileRepo{s: s}
	s.maintRepo = &MaintenanceRepo{s: s}
	s.paymentRepo = &PaymentRepo{s: s}
	return s
}

func (s *Store) Properties() domain.PropertyRepository     { return s.propertyRepo }
func (s *Store) Profiles() domain.ProfileRepository        { return s.profileRepo }
func (s *Store) Maintenance() domain.MaintenanceRepository { return s.maintRepo }
func (s *Store) Payments() domain.PaymentRepository        { return s.paymentRepo }

func copyProperty(p *domain.Property) *domain.Property {
	c := *p
	c.ImageURLs = slices.Clone(p.ImageURLs)
	return &c
}
