package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(s); st {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return st, nil
	default:
		return "", fmt.Errorf("domain: unknown payment status %q", s)
	}
}

// Payment records a rent payment. Only the status field moves; there is no
// processor integration.
type Payment struct {
	ID          uuid.UUID       `json:"id"`
	PropertyID  uuid.UUID       `json:"propertyId"`
	TenantID    uuid.UUID       `json:"tenantId"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"paymentDate"`
	Status      PaymentStatus   `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// PaymentRepository lists by payment date, newest first.
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Payment, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) error
}
