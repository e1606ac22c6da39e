package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/prescription"
)

type PrescriptionHandler struct {
	svc prescription.Service
}

func NewPrescriptionHandler(svc prescription.Service) *PrescriptionHandler {
	return &PrescriptionHandler{svc: svc}
}

func mapPrescriptionError(c fiber.Ctx, err error) error {
	return mapServiceError(c, err)
}

// POST /api/v1/prescription/create
func (h *PrescriptionHandler) Create(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	var body struct {
		PatientID        string            `json:"patientId"`
		AppointmentID    string            `json:"appointmentId"`
		MedicalRecordID  string            `json:"medicalRecordId"`
		PrescriptionDate string            `json:"prescriptionDate"`
		Medications      []repo.Medication `json:"medications"`
		Notes            string            `json:"notes"`
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
	recordID, valid := optionalID(body.MedicalRecordID)
	if !valid {
		return badRequest(c, "Invalid medical record id")
	}

	p, err := h.svc.Create(c.Context(), id, prescription.CreateRequest{
		PatientID:        patientID,
		AppointmentID:    apptID,
		MedicalRecordID:  recordID,
		PrescriptionDate: body.PrescriptionDate,
		Medications:      body.Medications,
		Notes:            body.Notes,
	})
	if err != nil {
		return mapPrescriptionError(c, err)
	}
	return created(c, "Prescription created successfully", "prescription", p)
}

// GET /api/v1/prescription/patient/:patientId
func (h *PrescriptionHandler) ByPatient(c fiber.Ctx) error {
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
		return mapPrescriptionError(c, err)
	}
	return ok(c, "", "prescriptions", list)
}

// GET /api/v1/prescription/doctor/:doctorId
func (h *PrescriptionHandler) ByDoctor(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	doctorID, valid := paramID(c, "doctorId")
	if !valid {
		return badRequest(c, "Invalid doctor id")
	}

	list, err := h.svc.ByDoctor(c.Context(), id, doctorID)
	if err != nil {
		return mapPrescriptionError(c, err)
	}
	return ok(c, "", "prescriptions", list)
}

// GET /api/v1/prescription/:id
func (h *PrescriptionHandler) Get(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	presID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid prescription id")
	}

	p, err := h.svc.Get(c.Context(), id, presID)
	if err != nil {
		return mapPrescriptionError(c, err)
	}
	return ok(c, "", "prescription", p)
}

// GET /api/v1/prescription/:id/pdf
func (h *PrescriptionHandler) PDF(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	presID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid prescription id")
	}

	link, err := h.svc.PDF(c.Context(), id, presID)
	if err != nil {
		return mapPrescriptionError(c, err)
	}
	return pdfLink(c, link)
}
