package appointment

import "github.com/imedbrahmi/hospital_backend/internal/service/apperr"

var (
	ErrNotFound        = apperr.NotFound("Appointment not found")
	ErrMissingFields   = apperr.Validation("Please fill all fields")
	ErrDoctorNotFound  = apperr.Validation("Doctor not found")
	ErrDoctorAmbiguous = apperr.Validation("Conflict: Multiple doctors found")
	ErrDoctorInactive  = apperr.Validation("Doctor is not available for booking")
	ErrDepartment      = apperr.Validation("Doctor does not belong to the requested department")
	ErrDoctorNoClinic  = apperr.Validation("Doctor is not assigned to any clinic")
	ErrSlotTaken       = apperr.Conflict("The requested time slot is not available")
	ErrInvalidStatus   = apperr.Validation("Status must be one of Pending, Accepted, Rejected")
	ErrPatientUpdate   = apperr.Forbidden("Patients can only reschedule their own pending appointments")
	ErrInvalidPhone    = apperr.Validation("Please provide a valid phone number")
)
