package contact

import "github.com/imedbrahmi/hospital_backend/internal/service/apperr"

var ErrMissingFields = apperr.Validation("Please fill all fields")
