package middleware

import (
	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
	"github.com/imedbrahmi/hospital_backend/pkg/session"
)

const LocalsIdentity = "identity"

// Cookies names the two session cookies.
type Cookies struct {
	Staff   string
	Patient string
}

// Session resolves the caller for a route of category cat from both
// session cookies. On success the identity is stored in Locals and in the
// request context; failures are *session.AuthError and become a 401 in the
// ErrorHandler.
func Session(r *session.Resolver, cookies Cookies, cat session.Category) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, err := r.Resolve(c.Context(), cat, c.Cookies(cookies.Staff), c.Cookies(cookies.Patient))
		if err != nil {
			return err
		}

		c.Locals(LocalsIdentity, id)
		c.SetContext(authorize.WithIdentity(c.Context(), id))
		return c.Next()
	}
}

// IdentityFromFiber returns the identity stored by Session.
func IdentityFromFiber(c fiber.Ctx) (*authorize.Identity, bool) {
	id, ok := c.Locals(LocalsIdentity).(*authorize.Identity)
	return id, ok && id != nil
}
