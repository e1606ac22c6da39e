package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/internal/api/http/handler"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

func (r *Router) registerMedicalRecordRoutes(api fiber.Router, h *handler.MedicalRecordHandler) {
	records := api.Group("/medical-record")

	records.Post("/create", r.staff, r.can(authorize.ResourceMedicalRecord, authorize.ActionCreate), h.Create)
	records.Get("/patient/:patientId", r.mixed, r.can(authorize.ResourceMedicalRecord, authorize.ActionRead), h.ByPatient)
	records.Get("/doctor/:doctorId", r.staff, r.can(authorize.ResourceMedicalRecord, authorize.ActionList), h.ByDoctor)
	records.Get("/:id", r.mixed, r.can(authorize.ResourceMedicalRecord, authorize.ActionRead), h.Get)
	records.Put("/:id", r.staff, r.can(authorize.ResourceMedicalRecord, authorize.ActionUpdate), h.Update)
	records.Delete("/:id", r.staff, r.can(authorize.ResourceMedicalRecord, authorize.ActionDelete), h.Delete)
}
