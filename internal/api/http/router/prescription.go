package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/internal/api/http/handler"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

func (r *Router) registerPrescriptionRoutes(api fiber.Router, h *handler.PrescriptionHandler) {
	pres := api.Group("/prescription")
	read := r.can(authorize.ResourcePrescription, authorize.ActionRead)

	pres.Post("/create", r.staff, r.can(authorize.ResourcePrescription, authorize.ActionCreate), h.Create)
	pres.Get("/patient/:patientId", r.mixed, read, h.ByPatient)
	pres.Get("/doctor/:doctorId", r.staff, r.can(authorize.ResourcePrescription, authorize.ActionList), h.ByDoctor)
	pres.Get("/:id/pdf", r.mixed, read, h.PDF)
	pres.Get("/:id", r.mixed, read, h.Get)
}
