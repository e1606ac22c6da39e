package medicalrecord

import "github.com/imedbrahmi/hospital_backend/internal/service/apperr"

var (
	ErrNotFound = apperr.NotFound("Medical record not found")
	ErrRequired = apperr.Validation("Patient ID and diagnosis are required")
)
