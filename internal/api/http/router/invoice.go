package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/internal/api/http/handler"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

func (r *Router) registerInvoiceRoutes(api fiber.Router, h *handler.InvoiceHandler) {
	inv := api.Group("/invoice")
	read := r.can(authorize.ResourceInvoice, authorize.ActionRead)

	inv.Post("/create", r.staff, r.can(authorize.ResourceInvoice, authorize.ActionCreate), h.Create)
	inv.Get("/", r.staff, r.can(authorize.ResourceInvoice, authorize.ActionList), h.List)
	inv.Get("/patient/my-invoices", r.patient, read, h.MyInvoices)
	inv.Get("/patient/:patientId", r.mixed, read, h.ByPatient)
	inv.Put("/:id/payment", r.staff, r.can(authorize.ResourceInvoice, authorize.ActionPay), h.AddPayment)
	inv.Put("/:id/cancel", r.staff, r.can(authorize.ResourceInvoice, authorize.ActionCancel), h.Cancel)
	inv.Get("/:id/pdf", r.mixed, read, h.PDF)
	inv.Get("/:id", r.mixed, read, h.Get)
}
