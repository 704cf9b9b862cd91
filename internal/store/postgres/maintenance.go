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

const maintenanceColumns = `id, property_id, tenant_id, description, status, created_at, updated_at`

type MaintenanceRepo struct {
	pool *pgxpool.Pool
}

func NewMaintenanceRepo(pool *pgxpool.Pool) *MaintenanceRepo {
	return &MaintenanceRepo{pool: pool}
}

func scanMaintenance(row pgx.CollectableRow) (*domain.MaintenanceRequest, error) {
	var (
		m      domain.MaintenanceRequest
		status string
	)
	if err := row.Scan(&m.ID, &m.PropertyID, &m.TenantID, &m.Description, &status, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Status = domain.MaintenanceStatus(status)
	return &m, nil
}

func (r *MaintenanceRepo) Create(ctx context.Context, m *domain.MaintenanceRequest) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO maintenance_requests (`+maintenanceColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.PropertyID, m.TenantID, m.Description, string(m.Status), m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("maintenanceRepo.Create: property: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("maintenanceRepo.Create: %w", err)
	}

	return nil
}

func (r *MaintenanceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceRequest, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+maintenanceColumns+` FROM maintenance_requests WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("maintenanceRepo.GetByID: %w", err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, scanMaintenance)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("maintenanceRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("maintenanceRepo.GetByID: %w", err)
	}

	return m, nil
}

func (r *MaintenanceRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.MaintenanceRequest, error) {
	return r.list(ctx, "ListByTenant", `tenant_id = $1`, tenantID)
}

func (r *MaintenanceRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*domain.MaintenanceRequest, error) {
	return r.list(ctx, "ListByProperty", `property_id = $1`, propertyID)
}

func (r *MaintenanceRepo) list(ctx context.Context, op, cond string, arg any) ([]*domain.MaintenanceRequest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenance_requests WHERE `+cond+` ORDER BY created_at DESC, id`,
		arg,
	)
	if err != nil {
		return nil, fmt.Errorf("maintenanceRepo.%s: %w", op, err)
	}
	out, err := pgx.CollectRows(rows, scanMaintenance)
	if err != nil {
		return nil, fmt.Errorf("maintenanceRepo.%s: scan: %w", op, err)
	}
	if out == nil {
		out = []*domain.MaintenanceRequest{}
	}

	return out, nil
}

func (r *MaintenanceRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MaintenanceStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE maintenance_requests SET status = $1, updated_at = now() WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("maintenanceRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("maintenanceRepo.UpdateStatus: %w", domain.ErrNotFound)
	}

	return nil
}
