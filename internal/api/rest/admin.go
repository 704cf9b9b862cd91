package rest

import (
	"net/http"

	"github.com/postpata/pata/internal/domain"
	"github.com/postpata/pata/internal/validate"
)

// adminProperties lists every property, approved or not, without filters.
func (h *Handlers) adminProperties(w http.ResponseWriter, r *http.Request) error {
	page, err := h.catalog.List(r.Context(), domain.PropertyFilter{}, pageRequest(r))
	if err != nil {
		return err
	}
	h.out.OK(w, r, page)
	return nil
}

func (h *Handlers) toggleFeatured(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r)
	if err != nil {
		return err
	}
	if err := h.lifecycle.ToggleFeatured(r.Context(), id); err != nil {
		return err
	}
	p, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		return err
	}
	h.out.OK(w, r, p)
	return nil
}

func (h *Handlers) setApproval(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r)
	if err != nil {
		return err
	}
	approved, _ := values(r).Bool(validate.Body, "isApproved")
	if err := h.lifecycle.SetApproval(r.Context(), id, approved); err != nil {
		return err
	}
	p, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		return err
	}
	h.out.OK(w, r, p)
	return nil
}

func (h *Handlers) bulkApprove(w http.ResponseWriter, r *http.Request) error {
	ids, _ := values(r).UUIDs(validate.Body, "propertyIds")
	if err := h.lifecycle.BulkApprove(r.Context(), ids); err != nil {
		return err
	}
	h.out.Message(w, r, "Properties approved successfully")
	return nil
}
