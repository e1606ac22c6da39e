package scheduling

import "github.com/imedbrahmi/hospital_backend/internal/service/apperr"

var (
	ErrNotFound        = apperr.NotFound("Schedule not found")
	ErrDoctorNotFound  = apperr.NotFound("Doctor not found")
	ErrDuplicate       = apperr.Conflict("Schedule already exists for this day")
	ErrInvalidDate     = apperr.Validation("Please provide a valid date in YYYY-MM-DD format")
	ErrInvalidInterval = apperr.Validation("Start time must be before end time")
	ErrNoClinic        = apperr.Validation("Doctor is not assigned to any clinic")
)
