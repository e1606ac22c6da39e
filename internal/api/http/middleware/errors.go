package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
	"github.com/imedbrahmi/hospital_backend/pkg/session"
)

const MsgInternal = "Internal Server Error"

// ErrorHandler renders every error that escapes a handler in the
// {success, message} envelope. 5xx responses never carry internal text.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		code, msg := fiber.StatusInternalServerError, MsgInternal

		var authErr *session.AuthError
		var denied *authorize.DeniedError
		var fe *fiber.Error
		switch {
		case errors.As(err, &authErr):
			code, msg = fiber.StatusUnauthorized, authErr.Message
		case errors.As(err, &denied):
			code, msg = fiber.StatusForbidden, denied.Error()
		case errors.Is(err, authorize.ErrNoSubjectInContext):
			code, msg = fiber.StatusUnauthorized, session.MsgNotAuthenticated
		case errors.As(err, &fe):
			code = fe.Code
			if code < fiber.StatusInternalServerError {
				msg = fe.Message
			}
		}

		if code >= fiber.StatusInternalServerError {
			rid, _ := RequestIDFromFiber(c)
			logger.ErrorContext(c.Context(), "request failed",
				"method", c.Method(), "path", c.Path(), "request_id", rid, "error", err)
		}
		return c.Status(code).JSON(fiber.Map{"success": false, "message": msg})
	}
}
