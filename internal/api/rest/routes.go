package rest

import (
	"github.com/go-chi/chi/v5"

	"github.com/postpata/pata/internal/domain"
	"github.com/postpata/pata/internal/server/middleware"
	"github.com/postpata/pata/internal/validate"
)

// Routes mounts the REST surface on r. Authorization runs before validation
// so anonymous callers never learn about field rules.
func (h *Handlers) Routes(r chi.Router, gate *middleware.Gate, pipe *validate.Pipeline) {
	var (
		landlord       = gate.Authorize(middleware.RequireRoles(domain.RoleLandlord))
		tenant         = gate.Authorize(middleware.RequireRoles(domain.RoleTenant))
		tenantOrAdmin  = gate.Authorize(middleware.RequireRoles(domain.RoleTenant, domain.RoleAdmin))
		landlordOrAdmn = gate.Authorize(middleware.RequireRoles(domain.RoleLandlord, domain.RoleAdmin))
		admin          = gate.Authorize(middleware.RequireRoles(domain.RoleAdmin))
		handle         = h.out.Handle
	)

	r.Route("/properties", func(r chi.Router) {
		r.Get("/featured", handle(h.listFeatured))
		r.With(
			validate.Attach(paginationRules...),
			validate.Attach(filterRules...),
			pipe.Validate(),
		).Get("/all", handle(h.listAll))
		r.With(pipe.Validate(idRules...)).Get("/{id}", handle(h.getProperty))

		r.With(landlord, pipe.Validate(createPropertyRules...)).Post("/add", handle(h.createProperty))
		r.With(
			landlord,
			validate.Attach(idRules...),
			validate.Attach(updatePropertyRules...),
			pipe.Validate(),
		).Put("/{id}", handle(h.updateProperty))
		r.With(landlord, pipe.Validate(idRules...)).Delete("/{id}", handle(h.deleteProperty))
		r.With(landlord, pipe.Validate(idRules...)).Post("/{id}/images", handle(h.uploadImage))
	})

	r.Route("/landlords", func(r chi.Router) {
		r.Use(landlordOrAdmn)
		r.With(pipe.Validate(landlordQueryRules...)).Get("/properties", handle(h.landlordProperties))
		r.With(pipe.Validate(idRules...)).Put("/properties/{id}/availability", handle(h.toggleAvailability))
	})

	r.Route("/tenants", func(r chi.Router) {
		r.Use(tenantOrAdmin)
		r.With(pipe.Validate(concat(paginationRules, filterRules)...)).Get("/properties", handle(h.tenantProperties))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(admin)
		r.With(pipe.Validate(paginationRules...)).Get("/properties", handle(h.adminProperties))
		r.With(pipe.Validate(idRules...)).Put("/properties/{id}/featured", handle(h.toggleFeatured))
		r.With(pipe.Validate(concat(idRules, approvalRules)...)).Put("/properties/{id}/approval", handle(h.setApproval))
		r.With(pipe.Validate(bulkApproveRules...)).Post("/properties/approve", handle(h.bulkApprove))
	})

	r.Route("/maintenance", func(r chi.Router) {
		r.With(tenant, pipe.Validate(maintenanceCreateRules...)).Post("/requests", handle(h.createMaintenance))
		r.With(tenant).Get("/requests", handle(h.myMaintenance))
		r.With(landlordOrAdmn, pipe.Validate(idRules...)).Get("/properties/{id}/requests", handle(h.propertyMaintenance))
		r.With(landlord, pipe.Validate(maintenanceStatusRules...)).Put("/requests/{id}/status", handle(h.updateMaintenanceStatus))
	})

	r.Route("/payments", func(r chi.Router) {
		r.With(tenant, pipe.Validate(paymentCreateRules...)).Post("/", handle(h.createPayment))
		r.With(tenant).Get("/", handle(h.myPayments))
		r.With(landlordOrAdmn, pipe.Validate(idRules...)).Get("/properties/{id}", handle(h.propertyPayments))
		r.With(landlordOrAdmn, pipe.Validate(paymentIDRules...)).Put("/{id}/confirm", handle(h.confirmPayment))
	})
}
