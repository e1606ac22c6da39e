package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/internal/api/http/handler"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

func (r *Router) registerAppointmentRoutes(api fiber.Router, h *handler.AppointmentHandler) {
	appts := api.Group("/appointment")

	appts.Post("/post", r.patient, r.can(authorize.ResourceAppointment, authorize.ActionCreate), h.Book)
	appts.Get("/getAll", r.staff, r.can(authorize.ResourceAppointment, authorize.ActionList), h.ListAll)
	appts.Get("/patient/my-appointments", r.patient, r.can(authorize.ResourceAppointment, authorize.ActionRead), h.MyAppointments)
	appts.Put("/update/:id", r.mixed, r.can(authorize.ResourceAppointment, authorize.ActionUpdate), h.Update)
	appts.Delete("/delete/:id", r.mixed, r.can(authorize.ResourceAppointment, authorize.ActionDelete), h.Delete)
	appts.Get("/:id", r.mixed, r.can(authorize.ResourceAppointment, authorize.ActionRead), h.Get)
}
