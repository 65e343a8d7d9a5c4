package controllers

import (
	"time"
	"tutorlink_go/database"
	"tutorlink_go/middleware"
	"tutorlink_go/models"
	"tutorlink_go/services"
	"tutorlink_go/utils"

	"github.com/gofiber/fiber/v2"
)

// CreateBooking creates a single lesson booking in the pending state.
func CreateBooking(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return err
	}

	var req struct {
		TeacherID     uint      `json:"teacher_id" validate:"required"`
		StudentID     uint      `json:"student_id" validate:"required"`
		ClassTitle    string    `json:"class_title" validate:"required,max=255"`
		Topic         string    `json:"topic" validate:"max=255"`
		ScheduledTime time.Time `json:"scheduled_time" validate:"required"`
		Duration      int       `json:"duration" validate:"required,min=15,max=480"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return validationFailed(c, errs)
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, req.TeacherID).Error; err != nil {
		return serviceError(c, &services.NotFoundError{Entity: "teacher", ID: req.TeacherID})
	}
	var student models.Student
	if err := database.DB.First(&student, req.StudentID).Error; err != nil {
		return serviceError(c, &services.NotFoundError{Entity: "student", ID: req.StudentID})
	}

	booking := models.Booking{
		TeacherID:     req.TeacherID,
		StudentID:     req.StudentID,
		ClassTitle:    utils.SanitizeString(req.ClassTitle),
		Topic:         utils.SanitizeString(req.Topic),
		ScheduledTime: req.ScheduledTime,
		Duration:      req.Duration,
		Status:        models.BookingPending,
		CreatedByRole: claims.Role,
		CreatedByID:   claims.UserID,
	}
	if err := database.DB.Create(&booking).Error; err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Booking created",
		"booking": utils.ToBookingDTO(booking),
	})
}

// ListBookings returns bookings filtered by teacher, student or status.
func ListBookings(c *fiber.Ctx) error {
	q := database.DB.Model(&models.Booking{}).Order("scheduled_time DESC")

	if teacherID := c.QueryInt("teacher_id"); teacherID > 0 {
		q = q.Where("teacher_id = ?", teacherID)
	}
	if studentID := c.QueryInt("student_id"); studentID > 0 {
		q = q.Where("student_id = ?", studentID)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	limit := c.QueryInt("limit", 100)
	if limit > 500 {
		limit = 500
	}

	var bookings []models.Booking
	if err := q.Limit(limit).Find(&bookings).Error; err != nil {
		return serviceError(c, err)
	}

	dtos := make([]utils.BookingDTO, 0, len(bookings))
	for _, b := range bookings {
		dtos = append(dtos, utils.ToBookingDTO(b))
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"bookings": dtos,
		"count":    len(dtos),
	})
}

// GetBooking returns one booking with its parties.
func GetBooking(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var booking models.Booking
	if err := database.DB.Preload("Teacher").Preload("Student").First(&booking, id).Error; err != nil {
		return serviceError(c, &services.NotFoundError{Entity: "booking", ID: id})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"booking": booking,
	})
}

// UpdateBookingStatus lets a teacher accept or reject a pending booking.
func UpdateBookingStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=accepted rejected"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return validationFailed(c, errs)
	}

	var booking models.Booking
	if err := database.DB.First(&booking, id).Error; err != nil {
		return serviceError(c, &services.NotFoundError{Entity: "booking", ID: id})
	}
	if !services.CanTransition(booking.Status, req.Status) {
		return serviceError(c, &services.StateConflictError{
			Entity: "booking", ID: id, Current: booking.Status, Attempted: req.Status,
		})
	}

	booking.Status = req.Status
	if err := database.DB.Save(&booking).Error; err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Booking " + req.Status,
		"booking": utils.ToBookingDTO(booking),
	})
}

// CancelBooking cancels a pending or accepted booking.
func CancelBooking(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	booking, err := services.NewLifecycleService().CancelBooking(id)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Booking cancelled",
		"booking": utils.ToBookingDTO(*booking),
	})
}

// FlagBookingDispute moves an accepted booking into the disputed state for
// admin resolution.
func FlagBookingDispute(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	booking, err := services.NewLifecycleService().FlagDispute(id)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Booking flagged as disputed",
		"booking": utils.ToBookingDTO(*booking),
	})
}
