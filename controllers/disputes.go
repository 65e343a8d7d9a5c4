package controllers

import (
	"tutorlink_go/database"
	"tutorlink_go/middleware"
	"tutorlink_go/models"
	"tutorlink_go/services"
	"tutorlink_go/utils"

	"github.com/gofiber/fiber/v2"
)

// ListDisputes returns bookings currently in the disputed state.
func ListDisputes(c *fiber.Ctx) error {
	var bookings []models.Booking
	if err := database.DB.Preload("Teacher").Preload("Student").
		Where("status = ?", models.BookingDisputed).
		Order("updated_at ASC").
		Find(&bookings).Error; err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"disputes": bookings,
		"count":    len(bookings),
	})
}

// ResolveDispute settles a disputed booking in favor of one party. Admin only.
func ResolveDispute(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Resolution string `json:"resolution" validate:"required,oneof=approve_teacher approve_student"`
		AdminNotes string `json:"admin_notes" validate:"max=2000"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return validationFailed(c, errs)
	}

	result, err := services.NewLifecycleService().ResolveDispute(id, user.ID, req.Resolution, req.AdminNotes)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Dispute resolved",
		"booking": utils.ToBookingDTO(result.Booking),
		"teacher": utils.ToTeacherShort(result.Teacher),
		"student": utils.ToStudentShort(result.Student),
	})
}
