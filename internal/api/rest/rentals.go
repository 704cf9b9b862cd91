package rest

import (
	"net/http"

	"github.com/postpata/pata/internal/apperr"
	"github.com/postpata/pata/internal/domain"
	"github.com/postpata/pata/internal/validate"
)

func (h *Handlers) createMaintenance(w http.ResponseWriter, r *http.Request) error {
	me, err := caller(r)
	if err != nil {
		return err
	}
	v := values(r)
	propertyID, _ := v.UUID(validate.Body, "propertyId")
	desc, _ := v.String(validate.Body, "description")

	m, err := h.maintenance.Create(r.Context(), me, propertyID, desc)
	if err != nil {
		return err
	}
	h.out.Created(w, r, m)
	return nil
}

func (h *Handlers) myMaintenance(w http.ResponseWriter, r *http.Request) error {
	me, err := caller(r)
	if err != nil {
		return err
	}
	items, err := h.maintenance.ListForTenant(r.Context(), me)
	if err != nil {
		return err
	}
	h.out.OK(w, r, items)
	return nil
}

func (h *Handlers) propertyMaintenance(w http.ResponseWriter, r *http.Request) error {
	me, err := caller(r)
	if err != nil {
		return err
	}
	id, err := pathUUID(r)
	if err != nil {
		return err
	}
	items, err := h.maintenance.ListForProperty(r.Context(), me, id)
	if err != nil {
		return err
	}
	h.out.OK(w, r, items)
	return nil
}

func (h *Handlers) updateMaintenanceStatus(w http.ResponseWriter, r *http.Request) error {
	me, err := caller(r)
	if err != nil {
		return err
	}
	id, err := pathUUID(r)
	if err != nil {
		return err
	}
	s, _ := values(r).String(validate.Body, "status")
	status, err := domain.ParseMaintenanceStatus(s)
	if err != nil {
		return apperr.Wrap(apperr.ValidationFailed, err, "Invalid maintenance status")
	}

	m, err := h.maintenance.UpdateStatus(r.Context(), me, id, status)
	if err != nil {
		return err
	}
	h.out.OK(w, r, m)
	return nil
}

func (h *Handlers) createPayment(w http.ResponseWriter, r *http.Request) error {
	me, err := caller(r)
	if err != nil {
		return err
	}
	v := values(r)
	propertyID, _ := v.UUID(validate.Body, "propertyId")
	amount, _ := v.Decimal(validate.Body, "amount")
	paidAt, _ := v.Time(validate.Body, "paymentDate")

	p, err := h.payments.Create(r.Context(), me, propertyID, amount, paidAt)
	if err != nil {
		return err
	}
	h.out.Created(w, r, p)
	return nil
}

func (h *Handlers) myPayments(w http.ResponseWriter, r *http.Request) error {
	me, err := caller(r)
	if err != nil {
		return err
	}
	items, err := h.payments.ListForTenant(r.Context(), me)
	if err != nil {
		return err
	}
	h.out.OK(w, r, items)
	return nil
}

func (h *Handlers) propertyPayments(w http.ResponseWriter, r *http.Request) error {
	me, err := caller(r)
	if err != nil {
		return err
	}
	id, err := pathUUID(r)
	if err != nil {
		return err
	}
	items, err := h.payments.ListForProperty(r.Context(), me, id)
	if err != nil {
		return err
	}
	h.out.OK(w, r, items)
	return nil
}

func (h *Handlers) confirmPayment(w http.ResponseWriter, r *http.Request) error {
	me, err := caller(r)
	if err != nil {
		return err
	}
	id, err := pathUUID(r)
	if err != nil {
		return err
	}
	p, err := h.payments.Confirm(r.Context(), me, id)
	if err != nil {
		return err
	}
	h.out.OK(w, r, p)
	return nil
}
