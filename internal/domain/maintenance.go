package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MaintenanceStatus string

const (
	MaintenancePending    MaintenanceStatus = "pending"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceResolved   MaintenanceStatus = "resolved"
)

func ParseMaintenanceStatus(s string) (MaintenanceStatus, error) {
	switch st := MaintenanceStatus(s); st {
	case MaintenancePending, MaintenanceInProgress, MaintenanceResolved:
		return st, nil
	default:
		return "", fmt.Errorf("domain: unknown maintenance status %q", s)
	}
}

type MaintenanceRequest struct {
	ID          uuid.UUID         `json:"id"`
	PropertyID  uuid.UUID         `json:"propertyId"`
	TenantID    uuid.UUID         `json:"tenantId"`
	Description string            `json:"description"`
	Status      MaintenanceStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// MaintenanceRepository lists newest first.
type MaintenanceRepository interface {
	Create(ctx context.Context, m *MaintenanceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*MaintenanceRequest, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*MaintenanceRequest, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*MaintenanceRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status MaintenanceStatus) error
}
