package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/internal/service/scheduling"
)

type ScheduleHandler struct {
	svc scheduling.Service
}

func NewScheduleHandler(svc scheduling.Service) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

func mapScheduleError(c fiber.Ctx, err error) error {
	return mapServiceError(c, err)
}

// POST /api/v1/schedule/create
func (h *ScheduleHandler) Create(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	var body struct {
		DayOfWeek    string `json:"dayOfWeek"`
		Date         string `json:"date"`
		StartTime    string `json:"startTime"`
		EndTime      string `json:"endTime"`
		SlotDuration int    `json:"slotDuration"`
		Duration     int    `json:"duration"`
		IsAvailable  *bool  `json:"isAvailable"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, msgInvalidBody)
	}
	if body.SlotDuration == 0 {
		body.SlotDuration = body.Duration
	}

	sc, err := h.svc.Create(c.Context(), id, scheduling.CreateScheduleRequest{
		DayOfWeek:    body.DayOfWeek,
		Date:         body.Date,
		StartTime:    body.StartTime,
		EndTime:      body.EndTime,
		SlotDuration: body.SlotDuration,
		IsAvailable:  body.IsAvailable,
	})
	if err != nil {
		return mapScheduleError(c, err)
	}
	return created(c, "Schedule created successfully", "schedule", sc)
}

// GET /api/v1/schedule/my-schedule
func (h *ScheduleHandler) MySchedule(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	schedules, err := h.svc.MySchedule(c.Context(), id)
	if err != nil {
		return mapScheduleError(c, err)
	}
	return ok(c, "", "schedules", schedules)
}

// GET /api/v1/schedule/doctor/:doctorId
func (h *ScheduleHandler) DoctorSchedules(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	doctorID, valid := paramID(c, "doctorId")
	if !valid {
		return badRequest(c, "Invalid doctor id")
	}

	schedules, err := h.svc.DoctorSchedules(c.Context(), id, doctorID)
	if err != nil {
		return mapScheduleError(c, err)
	}
	return ok(c, "", "schedules", schedules)
}

// GET /api/v1/schedule/available/:doctorId?date=YYYY-MM-DD
func (h *ScheduleHandler) AvailableSlots(c fiber.Ctx) error {
	doctorID, valid := paramID(c, "doctorId")
	if !valid {
		return badRequest(c, "Invalid doctor id")
	}

	av, err := h.svc.AvailableSlots(c.Context(), doctorID, c.Query("date"))
	if err != nil {
		return mapScheduleError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":        true,
		"date":           av.Date,
		"dayOfWeek":      av.DayOfWeek,
		"availableSlots": av.Slots,
	})
}

// PUT /api/v1/schedule/:id
func (h *ScheduleHandler) Update(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	scheduleID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid schedule id")
	}
	var body struct {
		DayOfWeek    *string `json:"dayOfWeek"`
		Date         *string `json:"date"`
		StartTime    *string `json:"startTime"`
		EndTime      *string `json:"endTime"`
		SlotDuration *int    `json:"slotDuration"`
		IsAvailable  *bool   `json:"isAvailable"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, msgInvalidBody)
	}

	sc, err := h.svc.Update(c.Context(), id, scheduleID, scheduling.UpdateScheduleRequest{
		DayOfWeek:    body.DayOfWeek,
		Date:         body.Date,
		StartTime:    body.StartTime,
		EndTime:      body.EndTime,
		SlotDuration: body.SlotDuration,
		IsAvailable:  body.IsAvailable,
	})
	if err != nil {
		return mapScheduleError(c, err)
	}
	return ok(c, "Schedule updated successfully", "schedule", sc)
}

// DELETE /api/v1/schedule/:id
func (h *ScheduleHandler) Delete(c fiber.Ctx) error {
	id, found := actor(c)
	if !found {
		return unauthorized(c)
	}
	scheduleID, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid schedule id")
	}

	if err := h.svc.Delete(c.Context(), id, scheduleID); err != nil {
		return mapScheduleError(c, err)
	}
	return ok(c, "Schedule deleted successfully", "", nil)
}
