// Package lifecycle moves properties between their boolean states: featured,
// available and approved.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/postpata/pata/internal/apperr"
	"github.com/postpata/pata/internal/catalog"
	"github.com/postpata/pata/internal/domain"
)

// Toggler inverts one flag of one property and returns the new value.
type Toggler interface {
	Toggle(ctx context.Context, id uuid.UUID, flag domain.Flag) (bool, error)
}

// ReadModifyWrite reads the current value and writes its negation in a
// second statement. Two concurrent toggles of the same flag may both read
// the same value, so one of them is lost.
type ReadModifyWrite struct {
	Properties domain.PropertyRepository
}

func (t ReadModifyWrite) Toggle(ctx context.Context, id uuid.UUID, flag domain.Flag) (bool, error) {
	p, err := t.Properties.GetByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("lifecycle.ReadModifyWrite: read: %w", err)
	}
	next := !p.Flag(flag)
	if err := t.Properties.SetFlag(ctx, id, flag, next); err != nil {
		return false, fmt.Errorf("lifecycle.ReadModifyWrite: write: %w", err)
	}
	return next, nil
}

// Atomic flips the flag in a single store operation.
type Atomic struct {
	Properties domain.PropertyRepository
}

func (t Atomic) Toggle(ctx context.Context, id uuid.UUID, flag domain.Flag) (bool, error) {
	v, err := t.Properties.FlipFlag(ctx, id, flag)
	if err != nil {
		return false, fmt.Errorf("lifecycle.Atomic: %w", err)
	}
	return v, nil
}

// Controller applies lifecycle transitions. It never retries; the first store
// error is returned.
type Controller struct {
	properties domain.PropertyRepository
	toggler    Toggler
}

// New returns a Controller. A nil toggler selects ReadModifyWrite.
func New(properties domain.PropertyRepository, toggler Toggler) *Controller {
	if toggler == nil {
		toggler = ReadModifyWrite{Properties: properties}
	}
	return &Controller{properties: properties, toggler: toggler}
}

func (c *Controller) ToggleFeatured(ctx context.Context, id uuid.UUID) error {
	if _, err := c.toggler.Toggle(ctx, id, domain.FlagFeatured); err != nil {
		return lifecycleError("ToggleFeatured", err, "Failed to toggle featured status")
	}
	return nil
}

func (c *Controller) ToggleAvailability(ctx context.Context, id uuid.UUID) error {
	if _, err := c.toggler.Toggle(ctx, id, domain.FlagAvailable); err != nil {
		return lifecycleError("ToggleAvailability", err, "Failed to toggle availability")
	}
	return nil
}

// Approve marks a single property approved.
func (c *Controller) Approve(ctx context.Context, id uuid.UUID) error {
	return c.SetApproval(ctx, id, true)
}

// SetApproval sets or revokes approval of a single property.
func (c *Controller) SetApproval(ctx context.Context, id uuid.UUID, approved bool) error {
	if err := c.properties.SetFlag(ctx, id, domain.FlagApproved, approved); err != nil {
		return lifecycleError("SetApproval", err, "Failed to update approval status")
	}
	return nil
}

// BulkApprove approves every existing property among ids in one store call.
// Unknown ids are ignored. It either succeeds as a whole or fails.
func (c *Controller) BulkApprove(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.properties.BulkApprove(ctx, ids); err != nil {
		return apperr.Wrap(apperr.Lifecycle, fmt.Errorf("lifecycle.BulkApprove: %w", err), "Failed to approve properties")
	}
	return nil
}

func lifecycleError(op string, err error, msg string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperr.Wrap(apperr.NotFound, fmt.Errorf("lifecycle.%s: %w", op, err), catalog.MsgNotFound)
	}
	return apperr.Wrap(apperr.Lifecycle, fmt.Errorf("lifecycle.%s: %w", op, err), msg)
}
