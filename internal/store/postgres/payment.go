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

const paymentColumns = `id, property_id, tenant_id, amount, payment_date, status, created_at, updated_at`

type PaymentRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

func scanPayment(row pgx.CollectableRow) (*domain.Payment, error) {
	var (
		p      domain.Payment
		status string
	)
	if err := row.Scan(&p.ID, &p.PropertyID, &p.TenantID, &p.Amount, &p.PaymentDate, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = domain.PaymentStatus(status)
	return &p, nil
}

func (r *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO payments (`+paymentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.PropertyID, p.TenantID, p.Amount, p.PaymentDate, string(p.Status), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("paymentRepo.Create: property: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("paymentRepo.Create: %w", err)
	}

	return nil
}

func (r *PaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("paymentRepo.GetByID: %w", err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanPayment)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("paymentRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("paymentRepo.GetByID: %w", err)
	}

	return p, nil
}

func (r *PaymentRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Payment, error) {
	return r.list(ctx, "ListByTenant", `tenant_id = $1`, tenantID)
}

func (r *PaymentRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*domain.Payment, error) {
	return r.list(ctx, "ListByProperty", `property_id = $1`, propertyID)
}

func (r *PaymentRepo) list(ctx context.Context, op, cond string, arg any) ([]*domain.Payment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE `+cond+` ORDER BY payment_date DESC, id`,
		arg,
	)
	if err != nil {
		return nil, fmt.Errorf("paymentRepo.%s: %w", op, err)
	}
	out, err := pgx.CollectRows(rows, scanPayment)
	if err != nil {
		return nil, fmt.Errorf("paymentRepo.%s: scan: %w", op, err)
	}
	if out == nil {
		out = []*domain.Payment{}
	}

	return out, nil
}

func (r *PaymentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payments SET status = $1, updated_at = now() WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("paymentRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("paymentRepo.UpdateStatus: %w", domain.ErrNotFound)
	}

	return nil
}
