package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/internal/api/http/handler"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

func (r *Router) registerContactRoutes(api fiber.Router, h *handler.ContactHandler) {
	messages := api.Group("/message")
	messages.Post("/send", h.Send)
	messages.Get("/getAll", r.staff, r.can(authorize.ResourceMessage, authorize.ActionList), h.List)
}
