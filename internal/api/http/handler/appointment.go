package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/internal/service/appointment"
)

type AppointmentHandler struct {
	svc appointment.Service
}

func NewAppointmentHandler(svc appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

func mapAppointmentError(c fiber.Ctx, err error) error {
	return mapServiceError(c, err)
}

// POST /api/v1/appointment/post
func (h *AppointmentHandler) Book(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	var body struct {
		FirstName       string `json:"firstName"`
		LastName        string `json:"lastName"`
		Email           string `json:"email"`
		Phone           string `json:"phone"`
		CIN             string `json:"cin"`
		DOB             string `json:"dob"`
		Gender          string `json:"gender"`
		Address         string `json:"address"`
		AppointmentDate string `json:"appointmentDate"`
		AppointmentTime string `json:"appointmentTime"`
		Department      string `json:"department"`
		DoctorID        string `json:"doctorId"`
		DoctorFirstName string `json:"doctor_firstName"`
		DoctorLastName  string `json:"doctor_lastName"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, msgInvalidBody)
	}
	doctorID, valid := optionalID(body.DoctorID)
	if !valid {
		return badRequest(c, "Invalid doctor id")
	}

	a, err := h.svc.Book(c.Context(), id, appointment.BookRequest{
		FirstName:       body.FirstName,
		LastName:        body.LastName,
		Email:           body.Email,
		Phone:           body.Phone,
		CIN:             body.CIN,
		DOB:             body.DOB,
		Gender:          body.Gender,
		Address:         body.Address,
		AppointmentDate: body.AppointmentDate,
		AppointmentTime: body.AppointmentTime,
		Department:      body.Department,
		DoctorID:        doctorID,
		DoctorFirstName: body.DoctorFirstName,
		DoctorLastName:  body.DoctorLastName,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return created(c, "Appointment created successfully", "appointment", a)
}

// GET /api/v1/appointment/getAll?status=&date=
func (h *AppointmentHandler) ListAll(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}

	list, err := h.svc.ListAll(c.Context(), id, appointment.ListQuery{
		Status: c.Query("status"),
		Date:   c.Query("date"),
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, "All appointments fetched successfully", "appointments", list)
}

// GET /api/v1/appointment/patient/my-appointments
func (h *AppointmentHandler) MyAppointments(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}

	list, err := h.svc.MyAppointments(c.Context(), id)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, "", "appointments", list)
}

// GET /api/v1/appointment/:id
func (h *AppointmentHandler) Get(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	apptID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid appointment id")
	}

	a, err := h.svc.Get(c.Context(), id, apptID)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, "", "appointment", a)
}

// PUT /api/v1/appointment/update/:id
func (h *AppointmentHandler) Update(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	apptID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid appointment id")
	}
	var body struct {
		Status          *string `json:"status"`
		HasVisited      *bool   `json:"hasVisited"`
		AppointmentDate *string `json:"appointmentDate"`
		AppointmentTime *string `json:"appointmentTime"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, msgInvalidBody)
	}

	a, err := h.svc.Update(c.Context(), id, apptID, appointment.UpdateRequest{
		Status:          body.Status,
		HasVisited:      body.HasVisited,
		AppointmentDate: body.AppointmentDate,
		AppointmentTime: body.AppointmentTime,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, "Appointment Status Updated!", "appointment", a)
}

// DELETE /api/v1/appointment/delete/:id
func (h *AppointmentHandler) Delete(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	apptID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid appointment id")
	}

	if err := h.svc.Delete(c.Context(), id, apptID); err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, "Appointment Deleted!", "", nil)
}
