package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/medicalrecord"
)

type MedicalRecordHandler struct {
	svc medicalrecord.Service
}

func NewMedicalRecordHandler(svc medicalrecord.Service) *MedicalRecordHandler {
	return &MedicalRecordHandler{svc: svc}
}

func mapRecordError(c fiber.Ctx, err error) error {
	return mapServiceError(c, err)
}

// POST /api/v1/medical-record/create
func (h *MedicalRecordHandler) Create(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	var body struct {
		PatientID     string          `json:"patientId"`
		AppointmentID string          `json:"appointmentId"`
		VisitDate     string          `json:"visitDate"`
		Diagnosis     string          `json:"diagnosis"`
		Symptoms      string          `json:"symptoms"`
		Examination   string          `json:"examination"`
		Treatment     string          `json:"treatment"`
		Notes         string          `json:"notes"`
		VitalSigns    repo.VitalSigns `json:"vitalSigns"`
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

	m, err := h.svc.Create(c.Context(), id, medicalrecord.CreateRequest{
		PatientID:     patientID,
		AppointmentID: apptID,
		VisitDate:     body.VisitDate,
		Diagnosis:     body.Diagnosis,
		Symptoms:      body.Symptoms,
		Examination:   body.Examination,
		Treatment:     body.Treatment,
		Notes:         body.Notes,
		VitalSigns:    body.VitalSigns,
	})
	if err != nil {
		return mapRecordError(c, err)
	}
	return created(c, "Medical record created successfully", "medicalRecord", m)
}

// GET /api/v1/medical-record/patient/:patientId
func (h *MedicalRecordHandler) ByPatient(c fiber.Ctx) error {
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
		return mapRecordError(c, err)
	}
	return ok(c, "", "medicalRecords", list)
}

// GET /api/v1/medical-record/doctor/:doctorId
func (h *MedicalRecordHandler) ByDoctor(c fiber.Ctx) error {
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
		return mapRecordError(c, err)
	}
	return ok(c, "", "medicalRecords", list)
}

// GET /api/v1/medical-record/:id
func (h *MedicalRecordHandler) Get(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	recordID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid medical record id")
	}

	m, err := h.svc.Get(c.Context(), id, recordID)
	if err != nil {
		return mapRecordError(c, err)
	}
	return ok(c, "", "medicalRecord", m)
}

// PUT /api/v1/medical-record/:id
func (h *MedicalRecordHandler) Update(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	recordID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid medical record id")
	}
	var body struct {
		VisitDate   *string          `json:"visitDate"`
		Diagnosis   *string          `json:"diagnosis"`
		Symptoms    *string          `json:"symptoms"`
		Examination *string          `json:"examination"`
		Treatment   *string          `json:"treatment"`
		Notes       *string          `json:"notes"`
		VitalSigns  *repo.VitalSigns `json:"vitalSigns"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, msgInvalidBody)
	}

	m, err := h.svc.Update(c.Context(), id, recordID, medicalrecord.UpdateRequest{
		VisitDate:   body.VisitDate,
		Diagnosis:   body.Diagnosis,
		Symptoms:    body.Symptoms,
		Examination: body.Examination,
		Treatment:   body.Treatment,
		Notes:       body.Notes,
		VitalSigns:  body.VitalSigns,
	})
	if err != nil {
		return mapRecordError(c, err)
	}
	return ok(c, "Medical record updated successfully", "medicalRecord", m)
}

// DELETE /api/v1/medical-record/:id
func (h *MedicalRecordHandler) Delete(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	recordID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid medical record id")
	}

	if err := h.svc.Delete(c.Context(), id, recordID); err != nil {
		return mapRecordError(c, err)
	}
	return ok(c, "Medical record deleted successfully", "", nil)
}
