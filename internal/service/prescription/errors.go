package prescription

import "github.com/imedbrahmi/hospital_backend/internal/service/apperr"

var (
	ErrNotFound      = apperr.NotFound("Prescription not found")
	ErrRequired      = apperr.Validation("Patient ID and at least one medication are required")
	ErrRecordPatient = apperr.Validation("Medical record does not belong to this patient")
	ErrRecordMissing = apperr.NotFound("Medical record not found")
)
