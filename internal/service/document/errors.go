package document

import (
	"errors"

	"github.com/imedbrahmi/hospital_backend/internal/service/apperr"
)

var (
	ErrUnknownKind = errors.New("document: unknown kind")
	ErrStorage     = apperr.Unavailable("Document storage is unavailable")
)
