package user

import "github.com/imedbrahmi/hospital_backend/internal/service/apperr"

var (
	ErrMissingFields    = apperr.Validation("Please fill all fields")
	ErrPasswordTooShort = apperr.Validation("Password must be at least 8 characters")
	ErrInvalidPhone     = apperr.Validation("Please provide a valid phone number")
	ErrEmailTaken       = apperr.Validation("Email already exists")
	ErrInvalidImage     = apperr.Validation("Please upload a valid image")
	ErrNoClinic         = apperr.Validation("You are not assigned to any clinic. Please contact SuperAdmin.")
	ErrClinicRequired   = apperr.Validation("clinicId is required")
	ErrClinicInactive   = apperr.Validation("Clinic not found or inactive")
	ErrDepartment       = apperr.Validation("Doctor department is required")

	ErrUserNotFound    = apperr.NotFound("User not found")
	ErrDoctorNotFound  = apperr.NotFound("Doctor not found")
	ErrPatientNotFound = apperr.NotFound("Patient not found")
	ErrClinicNotFound  = apperr.NotFound("Clinic not found or inactive")

	ErrNotYourPatient = apperr.Forbidden("You can only access patients in your care")
)

// alreadyExists builds the duplicate-account message that names the role
// holding the address.
func alreadyExists(role string) error {
	if role == "" {
		return apperr.Validation("User already exist")
	}
	return apperr.Validation(role + " already exist with this email")
}
