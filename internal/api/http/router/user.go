package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/internal/api/http/handler"
	"github.com/imedbrahmi/hospital_backend/internal/api/http/middleware"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

func (r *Router) registerUserRoutes(api fiber.Router, authH *handler.AuthHandler, h *handler.UserHandler) {
	users := api.Group("/user")

	users.Post("/patient/register", authH.RegisterPatient)
	users.Post("/login", middleware.LoginLimiter(r.p.Redis, r.p.Cfg.Server.LoginRateLimit), authH.Login)

	users.Get("/admin/me", r.staff, r.can(authorize.ResourceProfile, authorize.ActionRead), authH.Me)
	users.Get("/patient/me", r.patient, r.can(authorize.ResourceProfile, authorize.ActionRead), authH.Me)
	users.Get("/admin/logout", r.staff, authH.Logout)
	users.Get("/patient/logout", r.patient, authH.Logout)

	users.Post("/admin/addnew", r.staff, r.can(authorize.ResourceAdmin, authorize.ActionCreate), h.AddAdmin)
	users.Get("/admins/unassigned", r.staff, r.can(authorize.ResourceAdmin, authorize.ActionList), h.UnassignedAdmins)
	users.Post("/receptionist/addnew", r.staff, r.can(authorize.ResourceReceptionist, authorize.ActionCreate), h.AddReceptionist)

	users.Post("/doctor/addnew", r.staff, r.can(authorize.ResourceDoctor, authorize.ActionCreate), h.AddDoctor)
	users.Put("/doctor/:id", r.staff, r.can(authorize.ResourceDoctor, authorize.ActionUpdate), h.UpdateDoctor)
	users.Delete("/doctor/:id", r.staff, r.can(authorize.ResourceDoctor, authorize.ActionDelete), h.DeleteDoctor)
	users.Get("/doctors", r.staff, r.can(authorize.ResourceDoctor, authorize.ActionList), h.ListDoctors)
	users.Get("/doctors/clinic/:clinicName", h.DoctorsByClinic)

	users.Get("/patients", r.staff, r.can(authorize.ResourcePatient, authorize.ActionList), h.ListPatients)
	users.Get("/patients/:id", r.staff, r.can(authorize.ResourcePatient, authorize.ActionRead), h.GetPatient)
	users.Put("/patients/:id", r.staff, r.can(authorize.ResourcePatient, authorize.ActionUpdate), h.UpdatePatient)
	users.Delete("/patients/:id", r.staff, r.can(authorize.ResourcePatient, authorize.ActionDelete), h.DeletePatient)
}
