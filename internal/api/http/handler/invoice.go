package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/invoice"
	"github.com/imedbrahmi/hospital_backend/pkg/observability"
)

type InvoiceHandler struct {
	svc     invoice.Service
	metrics *observability.Metrics
}

// NewInvoiceHandler builds the handler; metrics may be nil.
func NewInvoiceHandler(svc invoice.Service, metrics *observability.Metrics) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, metrics: metrics}
}

func mapInvoiceError(c fiber.Ctx, err error) error {
	return mapServiceError(c, err)
}

// POST /api/v1/invoice/create
func (h *InvoiceHandler) Create(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	var body struct {
		PatientID     string             `json:"patientId"`
		AppointmentID string             `json:"appointmentId"`
		Items         []repo.InvoiceItem `json:"items"`
		Tax           float64            `json:"tax"`
		Discount      float64            `json:"discount"`
		DueDate       string             `json:"dueDate"`
		Notes         string             `json:"notes"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, msgInvalidBody)
	}
	patientID, valid := bodyID(body.PatientID)
	if !valid {
		return badRequest(c, "Invalid patient id")
	}
	apptID, valid := optionalID(body.AppointmentID)
	if !valid {
		return badRequest(c, "Invalid appointment id")
	}

	inv, err := h.svc.Create(c.Context(), id, invoice.CreateRequest{
		PatientID:     patientID,
		AppointmentID: apptID,
		Items:         body.Items,
		Tax:           body.Tax,
		Discount:      body.Discount,
		DueDate:       body.DueDate,
		Notes:         body.Notes,
	})
	if err != nil {
		return mapInvoiceError(c, err)
	}
	return created(c, "Invoice created successfully", "invoice", inv)
}

// GET /api/v1/invoice?status=&patientId=
func (h *InvoiceHandler) List(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	patientID, valid := optionalID(c.Query("patientId"))
	if !valid {
		return badRequest(c, "Invalid patient id")
	}

	list, err := h.svc.List(c.Context(), id, invoice.ListQuery{
		Status:    c.Query("status"),
		PatientID: patientID,
	})
	if err != nil {
		return mapInvoiceError(c, err)
	}
	return ok(c, "", "invoices", list)
}

// GET /api/v1/invoice/patient/my-invoices
func (h *InvoiceHandler) MyInvoices(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}

	list, err := h.svc.MyInvoices(c.Context(), id)
	if err != nil {
		return mapInvoiceError(c, err)
	}
	return ok(c, "", "invoices", list)
}

// GET /api/v1/invoice/patient/:patientId
func (h *InvoiceHandler) ByPatient(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	patientID, valid := paramID(c, "patientId")
	if !valid {
		return badRequest(c, "Invalid patient id")
	}

	list, err := h.svc.ByPatient(c.Context(), id, patientID)
	if err != nil {
		return mapInvoiceError(c, err)
	}
	return ok(c, "", "invoices", list)
}

// GET /api/v1/invoice/:id
func (h *InvoiceHandler) Get(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	invID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid invoice id")
	}

	inv, err := h.svc.Get(c.Context(), id, invID)
	if err != nil {
		return mapInvoiceError(c, err)
	}
	return ok(c, "", "invoice", inv)
}

// PUT /api/v1/invoice/:id/payment
func (h *InvoiceHandler) AddPayment(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	invID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid invoice id")
	}
	var body struct {
		Amount        float64            `json:"amount"`
		PaymentMethod repo.PaymentMethod `json:"paymentMethod"`
		TransactionID string             `json:"transactionId"`
		Notes         string             `json:"notes"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, msgInvalidBody)
	}

	res, err := h.svc.AddPayment(c.Context(), id, invID, invoice.PaymentRequest{
		Amount:        body.Amount,
		Method:        body.PaymentMethod,
		TransactionID: body.TransactionID,
		Notes:         body.Notes,
	})
	if err != nil {
		return mapInvoiceError(c, err)
	}
	h.metrics.PaymentRecorded(c.Context(), string(body.PaymentMethod), body.Amount)

	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Payment added successfully",
		"invoice":   res.Invoice,
		"totalPaid": res.TotalPaid,
		"remaining": res.Remaining,
	})
}

// PUT /api/v1/invoice/:id/cancel
func (h *InvoiceHandler) Cancel(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	invID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid invoice id")
	}

	inv, err := h.svc.Cancel(c.Context(), id, invID)
	if err != nil {
		return mapInvoiceError(c, err)
	}
	return ok(c, "Invoice cancelled successfully", "invoice", inv)
}

// GET /api/v1/invoice/:id/pdf
func (h *InvoiceHandler) PDF(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	invID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid invoice id")
	}

	link, err := h.svc.PDF(c.Context(), id, invID)
	if err != nil {
		return mapInvoiceError(c, err)
	}
	return pdfLink(c, link)
}
