package controllers

import (
	"tutorlink_go/middleware"
	"tutorlink_go/services"
	"tutorlink_go/utils"

	"github.com/gofiber/fiber/v2"
)

// MarkLessonComplete marks an accepted booking as completed, deducting a
// student credit and crediting the teacher. Admin only.
func MarkLessonComplete(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	var req struct {
		BookingID uint `json:"booking_id" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return validationFailed(c, errs)
	}

	result, err := services.NewLifecycleService().MarkComplete(req.BookingID, user.ID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Lesson marked as completed",
		"booking":    utils.ToBookingDTO(result.Booking),
		"teacher":    utils.ToTeacherShort(result.Teacher),
		"student":    utils.ToStudentShort(result.Student),
		"rate_added": result.RateAdded,
	})
}

// UnmarkLessonComplete reverses a completed booking back to accepted,
// restoring the student credit and cancelling the pending ledger line.
func UnmarkLessonComplete(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	var req struct {
		BookingID uint   `json:"booking_id" validate:"required"`
		Reason    string `json:"reason" validate:"required,max=500"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return validationFailed(c, errs)
	}

	result, err := services.NewLifecycleService().Unmark(req.BookingID, user.ID, req.Reason)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"message":       "Lesson completion reversed",
		"booking":       utils.ToBookingDTO(result.Booking),
		"teacher":       utils.ToTeacherShort(result.Teacher),
		"student":       utils.ToStudentShort(result.Student),
		"rate_deducted": result.RateDeducted,
	})
}
