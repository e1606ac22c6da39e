package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/internal/service/contact"
)

type ContactHandler struct {
	svc contact.Service
}

func NewContactHandler(svc contact.Service) *ContactHandler {
	return &ContactHandler{svc: svc}
}

type sendMessageRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
}

// POST /api/v1/message/send
func (h *ContactHandler) Send(c fiber.Ctx) error {
	var req sendMessageRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, msgInvalidBody)
	}

	if _, err := h.svc.Send(c.Context(), contact.SendRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Message:   req.Message,
	}); err != nil {
		return mapServiceError(c, err)
	}
	return ok(c, "Message Sent Successfully!", "", nil)
}

// GET /api/v1/message/getAll
func (h *ContactHandler) List(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}

	messages, err := h.svc.List(c.Context(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return ok(c, "", "messages", messages)
}
