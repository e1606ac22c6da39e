package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/imedbrahmi/hospital_backend/internal/api/http/middleware"
	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/internal/service/apperr"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
	"github.com/imedbrahmi/hospital_backend/pkg/session"
)

const msgInvalidBody = "Invalid request body"

func envelope(message, key string, data any) fiber.Map {
	m := fiber.Map{"success": true, "message": message}
	if key != "" {
		m[key] = data
	}
	return m
}

func ok(c fiber.Ctx, message, key string, data any) error {
	return c.JSON(envelope(message, key, data))
}

func created(c fiber.Ctx, message, key string, data any) error {
	return c.Status(fiber.StatusCreated).JSON(envelope(message, key, data))
}

func fail(c fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(fiber.Map{"success": false, "message": msg})
}

func badRequest(c fiber.Ctx, msg string) error { return fail(c, fiber.StatusBadRequest, msg) }

func unauthorized(c fiber.Ctx) error {
	return fail(c, fiber.StatusUnauthorized, session.MsgNotAuthenticated)
}

func forbidden(c fiber.Ctx, msg string) error { return fail(c, fiber.StatusForbidden, msg) }

func notFound(c fiber.Ctx, msg string) error { return fail(c, fiber.StatusNotFound, msg) }

func conflict(c fiber.Ctx, msg string) error { return fail(c, fiber.StatusConflict, msg) }

func unavailable(c fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusServiceUnavailable, msg)
}

// internalError hands err to the ErrorHandler, which logs it and answers a
// generic 500.
func internalError(err error) error { return err }

// actor returns the identity resolved by middleware.Session.
func actor(c fiber.Ctx) (*authorize.Identity, bool) {
	return middleware.IdentityFromFiber(c)
}

func paramID(c fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func optionalID(raw string) (*uuid.UUID, bool) {
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// mapServiceError turns a service error into the envelope. Kinds declared
// through apperr carry their own message; tenant policy errors keep theirs.
func mapServiceError(c fiber.Ctx, err error) error {
	msg, hasMsg := apperr.Message(err)
	if !hasMsg {
		msg = err.Error()
	}

	var denied *authorize.DeniedError
	switch {
	case errors.As(err, &denied):
		return forbidden(c, denied.Error())
	case errors.Is(err, apperr.ErrValidation):
		return badRequest(c, msg)
	case errors.Is(err, apperr.ErrNotFound):
		return notFound(c, msg)
	case errors.Is(err, apperr.ErrConflict):
		return conflict(c, msg)
	case errors.Is(err, apperr.ErrForbidden):
		return forbidden(c, msg)
	case errors.Is(err, apperr.ErrUnavailable):
		return unavailable(c, msg)
	case errors.Is(err, authorize.ErrNoClinic):
		return badRequest(c, msg)
	case errors.Is(err, authorize.ErrClinicMismatch),
		errors.Is(err, authorize.ErrNotOwner):
		return forbidden(c, msg)
	case errors.Is(err, authorize.ErrForbidden):
		return forbidden(c, "You are not authorized to access this resource")
	case errors.Is(err, authorize.ErrNoSubjectInContext):
		return unauthorized(c)
	case repo.IsDuplicate(err):
		return conflict(c, "Record already exists")
	case repo.IsNotFound(err):
		return notFound(c, "Not found")
	case repo.IsReference(err):
		return badRequest(c, "Referenced record does not exist")
	default:
		return internalError(err)
	}
}

// bodyID parses a required id from a request body. An empty value yields
// uuid.Nil so the service reports the missing field itself.
func bodyID(raw string) (uuid.UUID, bool) {
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	return id, err == nil
}
