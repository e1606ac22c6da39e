package invoice

import "github.com/imedbrahmi/hospital_backend/internal/service/apperr"

var (
	ErrNotFound         = apperr.NotFound("Invoice not found")
	ErrRequired         = apperr.Validation("Patient ID and at least one item are required")
	ErrNoClinic         = apperr.Validation("You must be assigned to a clinic")
	ErrNegativeTotal    = apperr.Validation("Total cannot be negative")
	ErrNegativeAdjust   = apperr.Validation("Tax and discount cannot be negative")
	ErrPaymentRequired  = apperr.Validation("Amount and payment method are required")
	ErrPaymentAmount    = apperr.Validation("Payment amount must be greater than 0")
	ErrPaymentMethod    = apperr.Validation("Payment method must be one of Cash, Credit Card, Debit Card, Bank Transfer, Check, Other")
	ErrCancelled        = apperr.Validation("Cannot add a payment to a cancelled invoice")
	ErrPaidCancel       = apperr.Validation("A paid invoice cannot be cancelled")
	ErrInvalidStatus    = apperr.Validation("Status must be one of Pending, Partially Paid, Paid, Cancelled")
	ErrOnlyPatients     = apperr.Forbidden("Only patients can view their invoices")
)
