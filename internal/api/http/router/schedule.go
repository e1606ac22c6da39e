package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/internal/api/http/handler"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

func (r *Router) registerScheduleRoutes(api fiber.Router, h *handler.ScheduleHandler) {
	schedules := api.Group("/schedule")

	schedules.Get("/available/:doctorId", h.AvailableSlots)

	schedules.Post("/create", r.staff, r.can(authorize.ResourceSchedule, authorize.ActionCreate), h.Create)
	schedules.Get("/my-schedule", r.staff, r.can(authorize.ResourceSchedule, authorize.ActionRead), h.MySchedule)
	schedules.Get("/doctor/:doctorId", r.staff, r.can(authorize.ResourceSchedule, authorize.ActionList), h.DoctorSchedules)
	schedules.Put("/:id", r.staff, r.can(authorize.ResourceSchedule, authorize.ActionUpdate), h.Update)
	schedules.Delete("/:id", r.staff, r.can(authorize.ResourceSchedule, authorize.ActionDelete), h.Delete)
}
