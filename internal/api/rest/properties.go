package rest

import (
	"fmt"
	"net/http"

	"github.com/postpata/pata/internal/apperr"
	"github.com/postpata/pata/internal/domain"
	"github.com/postpata/pata/internal/validate"
)

func (h *Handlers) listFeatured(w http.ResponseWriter, r *http.Request) error {
	items, err := h.catalog.ListFeatured(r.Context(), domain.FeaturedLimit)
	if err != nil {
		return err
	}
	h.out.OK(w, r, items)
	return nil
}

func (h *Handlers) listAll(w http.ResponseWriter, r *http.Request) error {
	page, err := h.catalog.List(r.Context(), filterFrom(r), pageRequest(r))
	if err != nil {
		return err
	}
	h.out.OK(w, r, page)
	return nil
}

func (h *Handlers) getProperty(w http.ResponseWriter, r *http.Request) error {
	id, err := pathUUID(r)
	if err != nil {
		return err
	}
	p, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		return err
	}
	h.out.OK(w, r, p)
	return nil
}

// createProperty accepts JSON or multipart bodies. A multipart "image" part
// becomes the first image of the listing.
func (h *Handlers) createProperty(w http.ResponseWriter, r *http.Request) error {
	me, err := caller(r)
	if err != nil {
		return err
	}

	v := values(r)
	landlord, _ := v.UUID(validate.Body, "landlordId")
	if landlord != me.SubjectID {
		return apperr.Wrap(apperr.Forbidden,
			fmt.Errorf("rest.createProperty: caller %s posted for landlord %s", me.SubjectID, landlord),
			"You can only list properties under your own account")
	}

	in := domain.NewProperty{LandlordID: landlord}
	in.Title, _ = v.String(validate.Body, "title")
	in.Description, _ = v.String(validate.Body, "description")
	in.Location, _ = v.String(validate.Body, "location")
	in.Price, _ = v.Decimal(validate.Body, "price")
	in.Bedrooms, _ = v.Int(validate.Body, "bedrooms")
	in.Bathrooms, _ = v.Int(validate.Body, "bathrooms")
	in.Area, _ = v.Decimal(validate.Body, "area")

	url, err := h.saveImage(r, false)
	if err != nil {
		return err
	}
	if url != "" {
		in.ImageURLs = []string{url}
	}

	p, err := h.catalog.Create(r.Context(), in)
	if err != nil {
		return err
	}
	h.out.Created(w, r, p)
	return nil
}

func (h *Handlers) updateProperty(w http.ResponseWriter, r *http.Request) error {
	me, err := caller(r)
	if err != nil {
		return err
	}
	id, err := pathUUID(r)
	if err != nil {
		return err
	}
	if _, err := h.catalog.Owned(r.Context(), id, me, false); err != nil {
		return err
	}

	v := values(r)
	var patch domain.PropertyPatch
	if s, ok := v.String(validate.Body, "title"); ok {
		patch.Title = &s
	}
	if s, ok := v.String(validate.Body, "description"); ok {
		patch.Description = &s
	}
	if s, ok := v.String(validate.Body, "location"); ok {
		patch.Location = &s
	}
	if d, ok := v.Decimal(validate.Body, "price"); ok {
		patch.Price = &d
	}
	if d, ok := v.Decimal(validate.Body, "area"); ok {
		patch.Area = &d
	}
	if n, ok := v.Int(validate.Body, "bedrooms"); ok {
		patch.Bedrooms = &n
	}
	if n, ok := v.Int(validate.Body, "bathrooms"); ok {
		patch.Bathrooms = &n
	}

	p, err := h.catalog.Update(r.Context(), id, patch)
	if err != nil {
		return err
	}
	h.out.OK(w, r, p)
	return nil
}

func (h *Handlers) deleteProperty(w http.ResponseWriter, r *http.Request) error {
	me, err := caller(r)
	if err != nil {
		return err
	}
	id, err := pathUUID(r)
	if err != nil {
		return err
	}
	if _, err := h.catalog.Owned(r.Context(), id, me, false); err != nil {
		return err
	}
	if err := h.catalog.Delete(r.Context(), id); err != nil {
		return err
	}
	h.out.Message(w, r, "Property deleted successfully")
	return nil
}

func (h *Handlers) uploadImage(w http.ResponseWriter, r *http.Request) error {
	me, err := caller(r)
	if err != nil {
		return err
	}
	id, err := pathUUID(r)
	if err != nil {
		return err
	}
	if _, err := h.catalog.Owned(r.Context(), id, me, false); err != nil {
		return err
	}

	url, err := h.saveImage(r, true)
	if err != nil {
		return err
	}
	p, err := h.catalog.AttachImage(r.Context(), id, url)
	if err != nil {
		return err
	}
	h.out.Created(w, r, p)
	return nil
}

// landlordProperties lists the caller's listings. Admins may name another
// landlord with ?landlordId=.
func (h *Handlers) landlordProperties(w http.ResponseWriter, r *http.Request) error {
	me, err := caller(r)
	if err != nil {
		return err
	}
	owner := me.SubjectID
	if id, ok := values(r).UUID(validate.Query, "landlordId"); ok && me.Role == domain.RoleAdmin {
		owner = id
	}
	items, err := h.catalog.ListByLandlord(r.Context(), owner)
	if err != nil {
		return err
	}
	h.out.OK(w, r, items)
	return nil
}

func (h *Handlers) toggleAvailability(w http.ResponseWriter, r *http.Request) error {
	me, err := caller(r)
	if err != nil {
		return err
	}
	id, err := pathUUID(r)
	if err != nil {
		return err
	}
	if _, err := h.catalog.Owned(r.Context(), id, me, true); err != nil {
		return err
	}
	if err := h.lifecycle.ToggleAvailability(r.Context(), id); err != nil {
		return err
	}
	p, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		return err
	}
	h.out.OK(w, r, p)
	return nil
}

func (h *Handlers) tenantProperties(w http.ResponseWriter, r *http.Request) error {
	page, err := h.catalog.ListAvailable(r.Context(), filterFrom(r), pageRequest(r))
	if err != nil {
		return err
	}
	h.out.OK(w, r, page)
	return nil
}
