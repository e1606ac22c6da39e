package middleware

import (
	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
	"github.com/imedbrahmi/hospital_backend/pkg/session"
)

// RequirePermission checks the caller's role against the policy row for
// (resource, action). It must run after Session.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, ok := IdentityFromFiber(c)
		if !ok {
			return &session.AuthError{Message: session.MsgNotAuthenticated}
		}

		if err := auth.MustEnforce(c.Context(), id.Role, resource, action); err != nil {
			return err
		}

		return c.Next()
	}
}
