package clinic

import "github.com/imedbrahmi/hospital_backend/internal/service/apperr"

var (
	ErrClinicNotFound    = apperr.NotFound("Clinic not found")
	ErrClinicFields      = apperr.Validation("Please fill all clinic required fields")
	ErrClinicEmailTaken  = apperr.Conflict("Clinic with this email already exists")
	ErrInvalidTariff     = apperr.Validation("Consultation tariff cannot be negative")
	ErrAdminNotFound     = apperr.NotFound("Admin not found")
	ErrNotAdmin          = apperr.Validation("Selected user is not an Admin")
	ErrAdminAssigned     = apperr.Validation("This Admin is already assigned to a clinic")
	ErrAdminElsewhere    = apperr.Validation("This Admin is already assigned to another clinic")
	ErrAdminFields       = apperr.Validation("Please fill all admin required fields or select an existing admin")
	ErrAdminEmailTaken   = apperr.Validation("Admin with this email already exists")
	ErrInvalidClinicMail = apperr.Validation("Please provide a valid clinic email")
	ErrInvalidPhone      = apperr.Validation("Please provide a valid clinic phone number")
)
