package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/config"
	"github.com/imedbrahmi/hospital_backend/internal/service/auth"
	"github.com/imedbrahmi/hospital_backend/internal/service/user"
	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

type AuthHandler struct {
	svc    auth.Service
	auth   config.AuthenticationConfig
	secure bool
}

func NewAuthHandler(svc auth.Service, cfg *config.Config) *AuthHandler {
	return &AuthHandler{svc: svc, auth: cfg.Authentication, secure: cfg.Server.IsProduction()}
}

type profileBody struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	CIN       string `json:"cin"`
	DOB       string `json:"dob"`
	Gender    string `json:"gender"`
	Password  string `json:"password"`
}

func (b profileBody) profile() user.Profile {
	return user.Profile{
		FirstName: b.FirstName,
		LastName:  b.LastName,
		Email:     b.Email,
		Phone:     b.Phone,
		CIN:       b.CIN,
		DOB:       b.DOB,
		Gender:    b.Gender,
		Password:  b.Password,
	}
}

func (h *AuthHandler) cookieName(ch authorize.Channel) string {
	if ch == authorize.ChannelPatient {
		return h.auth.PatientCookie
	}
	return h.auth.StaffCookie
}

func (h *AuthHandler) setCookie(c fiber.Ctx, name, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) issue(c fiber.Ctx, code int, message string, s *auth.Session) error {
	expires := time.Now().AddDate(0, 0, h.auth.CookieExpireDays)
	if s.ExpiresAt.Before(expires) {
		expires = s.ExpiresAt
	}
	h.setCookie(c, h.cookieName(s.Channel), s.Token, expires)
	return c.Status(code).JSON(envelope(message, "user", s.User))
}

// POST /api/v1/user/patient/register
func (h *AuthHandler) RegisterPatient(c fiber.Ctx) error {
	var body struct {
		profileBody
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, msgInvalidBody)
	}

	s, err := h.svc.RegisterPatient(c.Context(), auth.RegisterRequest{
		Profile:         body.profile(),
		ConfirmPassword: body.ConfirmPassword,
	})
	if err != nil {
		return mapAuthError(c, err)
	}
	return h.issue(c, fiber.StatusCreated, "User Registered!", s)
}

// POST /api/v1/user/login
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body struct {
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
		Role            string `json:"role"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, msgInvalidBody)
	}

	s, err := h.svc.Login(c.Context(), auth.LoginRequest{
		Email:           body.Email,
		Password:        body.Password,
		ConfirmPassword: body.ConfirmPassword,
		Role:            body.Role,
	})
	if err != nil {
		return mapAuthError(c, err)
	}
	return h.issue(c, fiber.StatusOK, "User Logged In Successfully!", s)
}

// GET /api/v1/user/admin/me and /api/v1/user/patient/me
func (h *AuthHandler) Me(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	u, err := h.svc.Me(c.Context(), id)
	if err != nil {
		return mapAuthError(c, err)
	}
	return ok(c, "", "user", u)
}

// GET /api/v1/user/admin/logout and /api/v1/user/patient/logout
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	if err := h.svc.Logout(c.Context(), id); err != nil {
		return internalError(err)
	}

	h.setCookie(c, h.cookieName(id.Channel), "", time.Unix(0, 0))
	if id.Channel == authorize.ChannelPatient {
		return ok(c, "Patient Logged Out Successfully.", "", nil)
	}
	return ok(c, "Admin Logged Out Successfully.", "", nil)
}

func mapAuthError(c fiber.Ctx, err error) error {
	return mapServiceError(c, err)
}
