package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/internal/service/clinic"
	"github.com/imedbrahmi/hospital_backend/internal/service/user"
)

type ClinicHandler struct {
	svc clinic.Service
}

func NewClinicHandler(svc clinic.Service) *ClinicHandler {
	return &ClinicHandler{svc: svc}
}

// adminBody carries either an existing admin id or the fields of a new
// (or patched) admin account.
type adminBody struct {
	AdminID        string `json:"adminId"`
	AdminFirstName string `json:"adminFirstName"`
	AdminLastName  string `json:"adminLastName"`
	AdminPhone     string `json:"adminPhone"`
	AdminCIN       string `json:"adminCIN"`
	AdminEmail     string `json:"adminEmail"`
	AdminDOB       string `json:"adminDob"`
	AdminGender    string `json:"adminGender"`
	AdminPassword  string `json:"adminPassword"`
}

func (b adminBody) profile() user.Profile {
	return user.Profile{
		FirstName: b.AdminFirstName,
		LastName:  b.AdminLastName,
		Email:     b.AdminEmail,
		Phone:     b.AdminPhone,
		CIN:       b.AdminCIN,
		DOB:       b.AdminDOB,
		Gender:    b.AdminGender,
		Password:  b.AdminPassword,
	}
}

func result(r *clinic.Result) fiber.Map {
	return fiber.Map{"clinic": r.Clinic, "admin": r.Admin}
}

// GET /api/v1/clinics
func (h *ClinicHandler) ListActive(c fiber.Ctx) error {
	clinics, err := h.svc.ListActive(c.Context())
	if err != nil {
		return mapClinicError(c, err)
	}
	return ok(c, "Clinics fetched successfully", "clinics", clinics)
}

// GET /api/v1/clinics/all
func (h *ClinicHandler) ListAll(c fiber.Ctx) error {
	clinics, err := h.svc.ListAll(c.Context())
	if err != nil {
		return mapClinicError(c, err)
	}
	return ok(c, "All clinics fetched successfully", "clinics", clinics)
}

// GET /api/v1/clinics/:id
func (h *ClinicHandler) Get(c fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid clinic id")
	}
	cl, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return mapClinicError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "clinic": cl, "admin": cl.Admin})
}

// POST /api/v1/clinics/onboard
func (h *ClinicHandler) Onboard(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	var body struct {
		adminBody
		ClinicName     string   `json:"clinicName"`
		ClinicAddress  string   `json:"clinicAddress"`
		ClinicPhone    string   `json:"clinicPhone"`
		ClinicEmail    string   `json:"clinicEmail"`
		ClinicServices []string `json:"clinicServices"`
		ClinicTariff   float64  `json:"clinicTariff"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, msgInvalidBody)
	}
	adminID, valid := optionalID(body.AdminID)
	if !valid {
		return badRequest(c, "Invalid admin id")
	}

	res, err := h.svc.Onboard(c.Context(), id, clinic.OnboardRequest{
		Clinic: clinic.ClinicFields{
			Name:               body.ClinicName,
			Address:            body.ClinicAddress,
			Phone:              body.ClinicPhone,
			Email:              body.ClinicEmail,
			Services:           body.ClinicServices,
			ConsultationTariff: body.ClinicTariff,
		},
		AdminID: adminID,
		Admin:   body.profile(),
	})
	if err != nil {
		return mapClinicError(c, err)
	}

	msg := "Clinic and Admin created successfully"
	if adminID != nil {
		msg = "Clinic created and Admin assigned successfully"
	}
	out := result(res)
	out["success"], out["message"] = true, msg
	return c.Status(fiber.StatusCreated).JSON(out)
}

// PUT /api/v1/clinics/:id
func (h *ClinicHandler) Update(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	clinicID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid clinic id")
	}
	var body struct {
		adminBody
		Name     *string  `json:"name"`
		Address  *string  `json:"address"`
		Phone    *string  `json:"phone"`
		Email    *string  `json:"email"`
		Services []string `json:"services"`
		Tariff   *float64 `json:"tariff"`
		IsActive *bool    `json:"isActive"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, msgInvalidBody)
	}
	adminID, valid := optionalID(body.AdminID)
	if !valid {
		return badRequest(c, "Invalid admin id")
	}

	res, err := h.svc.Update(c.Context(), id, clinicID, clinic.UpdateRequest{
		Name:               body.Name,
		Address:            body.Address,
		Phone:              body.Phone,
		Email:              body.Email,
		Services:           body.Services,
		ConsultationTariff: body.Tariff,
		IsActive:           body.IsActive,
		AdminID:            adminID,
		Admin:              body.profile(),
	})
	if err != nil {
		return mapClinicError(c, err)
	}

	msg := "Clinic and Admin updated successfully"
	if adminID != nil {
		msg = "Clinic updated and Admin changed successfully"
	}
	out := result(res)
	out["success"], out["message"] = true, msg
	return c.JSON(out)
}

// DELETE /api/v1/clinics/:id
func (h *ClinicHandler) Deactivate(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	clinicID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid clinic id")
	}

	if err := h.svc.Deactivate(c.Context(), id, clinicID); err != nil {
		return mapClinicError(c, err)
	}
	return ok(c, "Clinic deleted successfully", "", nil)
}

func mapClinicError(c fiber.Ctx, err error) error {
	return mapServiceError(c, err)
}
