package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/internal/api/http/handler"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

func (r *Router) registerClinicRoutes(api fiber.Router, h *handler.ClinicHandler) {
	clinics := api.Group("/clinics")

	clinics.Get("/", h.ListActive)
	clinics.Get("/all", r.staff, r.can(authorize.ResourceClinic, authorize.ActionList), h.ListAll)
	clinics.Post("/onboard", r.staff, r.can(authorize.ResourceClinic, authorize.ActionCreate), h.Onboard)
	clinics.Get("/:id", h.Get)
	clinics.Put("/:id", r.staff, r.can(authorize.ResourceClinic, authorize.ActionUpdate), h.Update)
	clinics.Delete("/:id", r.staff, r.can(authorize.ResourceClinic, authorize.ActionDelete), h.Deactivate)
}
