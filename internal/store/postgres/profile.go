package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/postpata/pata/internal/domain"
)

const profileColumns = `id, full_name, email, phone, role, is_verified, password_hash, created_at, updated_at`

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO profiles (`+profileColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.FullName, nilIfEmpty(p.Email), nilIfEmpty(p.Phone), string(p.Role),
		p.IsVerified, p.PasswordHash, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("profileRepo.Create: %w", domain.ErrConflict)
		}
		return fmt.Errorf("profileRepo.Create: %w", err)
	}

	return nil
}

func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	return r.getOne(ctx, "GetByID", `id = $1`, id)
}

func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return r.getOne(ctx, "GetByEmail", `email = $1`, email)
}

func (r *ProfileRepo) GetByPhone(ctx context.Context, phone string) (*domain.Profile, error) {
	return r.getOne(ctx, "GetByPhone", `phone = $1`, phone)
}

func (r *ProfileRepo) getOne(ctx context.Context, op, cond string, arg any) (*domain.Profile, error) {
	var (
		p            domain.Profile
		email, phone *string
		role         string
	)

	err := r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE `+cond,
		arg,
	).Scan(&p.ID, &p.FullName, &email, &phone, &role, &p.IsVerified, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("profileRepo.%s: %w", op, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("profileRepo.%s: %w", op, err)
	}

	p.Email = derefStr(email)
	p.Phone = derefStr(phone)
	p.Role = domain.Role(role)

	return &p, nil
}

// Update writes name, contact and verification state. Role is immutable.
func (r *ProfileRepo) Update(ctx context.Context, p *domain.Profile) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET full_name = $1, email = $2, phone = $3, is_verified = $4, updated_at = $5
		 WHERE id = $6`,
		p.FullName, nilIfEmpty(p.Email), nilIfEmpty(p.Phone), p.IsVerified, p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("profileRepo.Update: %w", domain.ErrConflict)
		}
		return fmt.Errorf("profileRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profileRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ProfileRepo) SetVerified(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET is_verified = true, updated_at = now() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("profileRepo.SetVerified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profileRepo.SetVerified: %w", domain.ErrNotFound)
	}

	return nil
}
