// Package rest serves the property, admin, maintenance and payment routes.
// Handlers return errors; the error translator writes every failure.
package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/google/uuid"

	"github.com/postpata/pata/internal/apperr"
	"github.com/postpata/pata/internal/auth"
	"github.com/postpata/pata/internal/catalog"
	"github.com/postpata/pata/internal/domain"
	"github.com/postpata/pata/internal/lifecycle"
	"github.com/postpata/pata/internal/maintenance"
	"github.com/postpata/pata/internal/media"
	"github.com/postpata/pata/internal/payment"
	"github.com/postpata/pata/internal/server/middleware"
	"github.com/postpata/pata/internal/server/respond"
	"github.com/postpata/pata/internal/validate"
)

// ImageStore persists an uploaded image and returns its public URL.
// *media.Disk satisfies this interface.
type ImageStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// Handlers holds the services behind the REST routes.
type Handlers struct {
	out         *respond.Translator
	catalog     *catalog.Catalog
	lifecycle   *lifecycle.Controller
	maintenance *maintenance.Service
	payments    *payment.Service
	images      ImageStore // nil disables uploads
}

type Deps struct {
	Translator  *respond.Translator
	Catalog     *catalog.Catalog
	Lifecycle   *lifecycle.Controller
	Maintenance *maintenance.Service
	Payments    *payment.Service
	Images      ImageStore
}

func NewHandlers(d Deps) *Handlers {
	return &Handlers{
		out:         d.Translator,
		catalog:     d.Catalog,
		lifecycle:   d.Lifecycle,
		maintenance: d.Maintenance,
		payments:    d.Payments,
		images:      d.Images,
	}
}

func caller(r *http.Request) (auth.Identity, error) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return auth.Identity{}, apperr.New(apperr.Unauthenticated, auth.MsgTokenRequired)
	}
	return id, nil
}

func values(r *http.Request) *validate.Values {
	return validate.ValuesFrom(r.Context())
}

// pathUUID returns the coerced {id} path parameter.
func pathUUID(r *http.Request) (uuid.UUID, error) {
	id, ok := values(r).UUID(validate.Path, "id")
	if !ok {
		return uuid.Nil, apperr.Validation([]apperr.Violation{{Field: "id", Location: "path", Message: "ID must be a valid UUID"}})
	}
	return id, nil
}

func pageRequest(r *http.Request) domain.PageRequest {
	v := values(r)
	p, _ := v.Int(validate.Query, "page")
	l, _ := v.Int(validate.Query, "limit")
	return domain.NewPageRequest(p, l)
}

// filterFrom builds the listing filter from coerced query values. A supplied
// value is always active, zero included.
func filterFrom(r *http.Request) domain.PropertyFilter {
	v := values(r)
	var f domain.PropertyFilter
	if d, ok := v.Decimal(validate.Query, "priceMin"); ok {
		f.PriceMin = &d
	}
	if d, ok := v.Decimal(validate.Query, "priceMax"); ok {
		f.PriceMax = &d
	}
	if s, ok := v.String(validate.Query, "location"); ok && s != "" {
		f.Location = &s
	}
	if n, ok := v.Int(validate.Query, "bedrooms"); ok {
		f.Bedrooms = &n
	}
	if b, ok := v.Bool(validate.Query, "isAvailable"); ok {
		f.IsAvailable = &b
	}
	return f
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// saveImage stores the "image" part of a multipart request. It returns ""
// when the request carries no image.
func (h *Handlers) saveImage(r *http.Request, required bool) (string, error) {
	missing := apperr.Validation([]apperr.Violation{{Field: "image", Location: "body", Message: "Image file is required"}})
	if !isMultipart(r) {
		if required {
			return "", missing
		}
		return "", nil
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		if required {
			return "", missing
		}
		return "", nil
	}
	if err != nil {
		return "", apperr.Wrap(apperr.ValidationFailed, fmt.Errorf("rest.saveImage: %w", err), "Malformed image upload")
	}
	defer file.Close()

	if h.images == nil {
		return "", apperr.New(apperr.Internal, "Image uploads are not configured")
	}

	url, err := h.images.Save(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	switch {
	case errors.Is(err, media.ErrUnsupportedType):
		return "", apperr.Validation([]apperr.Violation{{Field: "image", Location: "body", Message: "Image must be a JPEG, PNG, WebP or GIF file"}})
	case errors.Is(err, media.ErrTooLarge):
		return "", apperr.Validation([]apperr.Violation{{Field: "image", Location: "body", Message: "Image is too large"}})
	case err != nil:
		return "", apperr.Wrap(apperr.Internal, fmt.Errorf("rest.saveImage: %w", err), "Failed to store image")
	}
	return url, nil
}
