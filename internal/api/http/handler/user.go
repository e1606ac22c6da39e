package handler

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/internal/service/user"
)

const avatarField = "docAvatar"

type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

// staffBody is accepted as JSON or as a multipart form.
type staffBody struct {
	FirstName  string `json:"firstName" form:"firstName"`
	LastName   string `json:"lastName" form:"lastName"`
	Email      string `json:"email" form:"email"`
	Phone      string `json:"phone" form:"phone"`
	CIN        string `json:"cin" form:"cin"`
	DOB        string `json:"dob" form:"dob"`
	Gender     string `json:"gender" form:"gender"`
	Password   string `json:"password" form:"password"`
	ClinicID   string `json:"clinicId" form:"clinicId"`
	Department string `json:"doctorDepartment" form:"doctorDepartment"`
	IsActive   *bool  `json:"isActive" form:"isActive"`
}

func (b staffBody) profile() user.Profile {
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

// avatar opens the optional docAvatar upload. The returned closer is never
// nil.
func avatar(c fiber.Ctx) (*user.Upload, func(), error) {
	fh, err := c.FormFile(avatarField)
	if err != nil || fh == nil {
		return nil, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return upload(fh, f), func() { _ = f.Close() }, nil
}

func upload(fh *multipart.FileHeader, body io.Reader) *user.Upload {
	return &user.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        body,
	}
}

// staffRequest binds the provisioning body. A non-empty string is the
// client error to answer with.
func staffRequest(c fiber.Ctx) (staffBody, *user.StaffRequest, string) {
	var body staffBody
	if err := c.Bind().Body(&body); err != nil {
		return body, nil, msgInvalidBody
	}
	clinicID, valid := optionalID(body.ClinicID)
	if !valid {
		return body, nil, "Invalid clinic id"
	}
	return body, &user.StaffRequest{Profile: body.profile(), ClinicID: clinicID}, ""
}

// POST /api/v1/user/admin/addnew
func (h *UserHandler) AddAdmin(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	_, req, msg := staffRequest(c)
	if msg != "" {
		return badRequest(c, msg)
	}

	u, err := h.svc.AddAdmin(c.Context(), id, *req)
	if err != nil {
		return mapUserError(c, err)
	}
	return created(c, "New Admin Registered", "user", u)
}

// POST /api/v1/user/receptionist/addnew
func (h *UserHandler) AddReceptionist(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	_, req, msg := staffRequest(c)
	if msg != "" {
		return badRequest(c, msg)
	}

	u, err := h.svc.AddReceptionist(c.Context(), id, *req)
	if err != nil {
		return mapUserError(c, err)
	}
	return created(c, "New Receptionist Registered", "user", u)
}

// POST /api/v1/user/doctor/addnew (multipart, optional docAvatar)
func (h *UserHandler) AddDoctor(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	body, req, msg := staffRequest(c)
	if msg != "" {
		return badRequest(c, msg)
	}
	img, closeImg, err := avatar(c)
	if err != nil {
		return badRequest(c, "Doctor avatar could not be read")
	}
	defer closeImg()

	u, err := h.svc.AddDoctor(c.Context(), id, user.DoctorRequest{
		Profile:    req.Profile,
		ClinicID:   req.ClinicID,
		Department: body.Department,
		Avatar:     img,
	})
	if err != nil {
		return mapUserError(c, err)
	}
	return created(c, "New Doctor Registered", "doctor", u)
}

// PUT /api/v1/user/doctor/:id
func (h *UserHandler) UpdateDoctor(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	doctorID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid doctor id")
	}
	body, req, msg := staffRequest(c)
	if msg != "" {
		return badRequest(c, msg)
	}
	img, closeImg, err := avatar(c)
	if err != nil {
		return badRequest(c, "Doctor avatar could not be read")
	}
	defer closeImg()

	u, err := h.svc.UpdateDoctor(c.Context(), id, doctorID, user.UpdateDoctorRequest{
		Profile:    req.Profile,
		Department: body.Department,
		IsActive:   body.IsActive,
		Avatar:     img,
	})
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, "Doctor updated successfully", "doctor", u)
}

// DELETE /api/v1/user/doctor/:id
func (h *UserHandler) DeleteDoctor(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	doctorID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid doctor id")
	}

	if err := h.svc.DeleteDoctor(c.Context(), id, doctorID); err != nil {
		return mapUserError(c, err)
	}
	return ok(c, "Doctor deleted successfully", "", nil)
}

// GET /api/v1/user/doctors?search=&department=
func (h *UserHandler) ListDoctors(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}

	doctors, err := h.svc.ListDoctors(c.Context(), id, user.DoctorQuery{
		Search:     c.Query("search"),
		Department: c.Query("department"),
	})
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, "", "doctors", doctors)
}

// GET /api/v1/user/doctors/clinic/:clinicName
func (h *UserHandler) DoctorsByClinic(c fiber.Ctx) error {
	doctors, err := h.svc.DoctorsByClinic(c.Context(), c.Params("clinicName"))
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, "", "doctors", doctors)
}

// GET /api/v1/user/patients?search=
func (h *UserHandler) ListPatients(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}

	patients, err := h.svc.ListPatients(c.Context(), id, c.Query("search"))
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, "", "patients", patients)
}

// GET /api/v1/user/patients/:id
func (h *UserHandler) GetPatient(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	patientID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid patient id")
	}

	p, err := h.svc.GetPatient(c.Context(), id, patientID)
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, "", "patient", p)
}

// PUT /api/v1/user/patients/:id
func (h *UserHandler) UpdatePatient(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	patientID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid patient id")
	}
	var body staffBody
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, msgInvalidBody)
	}

	p, err := h.svc.UpdatePatient(c.Context(), id, patientID, user.UpdatePatientRequest{
		Profile:  body.profile(),
		IsActive: body.IsActive,
	})
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, "Patient updated successfully", "patient", p)
}

// DELETE /api/v1/user/patients/:id
func (h *UserHandler) DeletePatient(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	patientID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid patient id")
	}

	if err := h.svc.DeletePatient(c.Context(), id, patientID); err != nil {
		return mapUserError(c, err)
	}
	return ok(c, "Patient deleted successfully", "", nil)
}

// GET /api/v1/user/admins/unassigned
func (h *UserHandler) UnassignedAdmins(c fiber.Ctx) error {
	admins, err := h.svc.UnassignedAdmins(c.Context())
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, "", "admins", admins)
}

func mapUserError(c fiber.Ctx, err error) error {
	return mapServiceError(c, err)
}
