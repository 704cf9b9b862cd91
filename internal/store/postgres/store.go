package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/postpata/pata/internal/domain"
)

type Store struct {
	pool        *pgxpool.Pool
	properties  *PropertyRepo
	profiles    *ProfileRepo
	maintenance *MaintenanceRepo
	payments    *PaymentRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:        pool,
		properties:  NewPropertyRepo(pool),
		profiles:    NewProfileRepo(pool),
		maintenance: NewMaintenanceRepo(pool),
		payments:    NewPaymentRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Properties() domain.PropertyRepository     { return s.properties }
func (s *Store) Profiles() domain.ProfileRepository        { return s.profiles }
func (s *Store) Maintenance() domain.MaintenanceRepository { return s.maintenance }
func (s *Store) Payments() domain.PaymentRepository        { return s.payments }
