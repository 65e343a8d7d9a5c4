package controllers

import (
	"time"
	"tutorlink_go/middleware"
	"tutorlink_go/services"
	"tutorlink_go/utils"

	"github.com/gofiber/fiber/v2"
)

// CreateRecurringBooking creates a recurrence pattern and all of its member
// bookings atomically. Either occurrences or end_date must be given.
func CreateRecurringBooking(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return err
	}

	var req struct {
		TeacherID   uint       `json:"teacher_id" validate:"required"`
		StudentID   uint       `json:"student_id" validate:"required"`
		ClassTitle  string     `json:"class_title" validate:"required,max=255"`
		Topic       string     `json:"topic" validate:"max=255"`
		StartTime   time.Time  `json:"start_time" validate:"required"`
		Duration    int        `json:"duration" validate:"required,min=15,max=480"`
		Frequency   string     `json:"frequency" validate:"required,oneof=daily weekly biweekly monthly"`
		Occurrences int        `json:"occurrences" validate:"min=0,max=365"`
		EndDate     *time.Time `json:"end_date"`
		DaysOfWeek  []int      `json:"days_of_week" validate:"omitempty,dive,min=0,max=6"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return validationFailed(c, errs)
	}
	if req.Occurrences == 0 && req.EndDate == nil {
		return badRequest(c, "Either occurrences or end_date is required")
	}
	if len(req.DaysOfWeek) > 0 && req.Frequency != "weekly" {
		return badRequest(c, "days_of_week is only valid with weekly frequency")
	}

	result, err := services.NewRecurrenceService().CreateRecurring(services.CreateRecurringInput{
		TeacherID:     req.TeacherID,
		StudentID:     req.StudentID,
		ClassTitle:    utils.SanitizeString(req.ClassTitle),
		Topic:         utils.SanitizeString(req.Topic),
		StartTime:     req.StartTime,
		Duration:      req.Duration,
		Frequency:     req.Frequency,
		Occurrences:   req.Occurrences,
		EndDate:       req.EndDate,
		DaysOfWeek:    req.DaysOfWeek,
		CreatedByRole: claims.Role,
		CreatedByID:   claims.UserID,
	})
	if err != nil {
		return serviceError(c, err)
	}

	bookings := make([]utils.BookingDTO, 0, len(result.Bookings))
	for _, b := range result.Bookings {
		bookings = append(bookings, utils.ToBookingDTO(b))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"message":  "Recurring bookings created",
		"pattern":  result.Pattern,
		"bookings": bookings,
	})
}

// GetRecurringPattern returns a pattern and its member bookings.
func GetRecurringPattern(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	pattern, bookings, err := services.NewRecurrenceService().GetPattern(id)
	if err != nil {
		return serviceError(c, err)
	}

	dtos := make([]utils.BookingDTO, 0, len(bookings))
	for _, b := range bookings {
		dtos = append(dtos, utils.ToBookingDTO(b))
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"pattern":  pattern,
		"bookings": dtos,
	})
}

// CancelRecurringPattern cancels a pattern and optionally its future bookings.
func CancelRecurringPattern(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Reason       string `json:"reason" validate:"max=500"`
		CancelFuture bool   `json:"cancel_future"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	pattern, cancelled, err := services.NewRecurrenceService().CancelPattern(id, req.Reason, req.CancelFuture)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":            true,
		"message":            "Recurring pattern cancelled",
		"pattern":            pattern,
		"cancelled_bookings": cancelled,
	})
}

// DeleteRecurringPattern hard-deletes a pattern and all of its member
// bookings. Ledger lines are left untouched.
func DeleteRecurringPattern(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := services.NewRecurrenceService().DeletePattern(id); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Recurring pattern deleted",
	})
}
