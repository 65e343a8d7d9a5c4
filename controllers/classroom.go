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

// RecordAttendance ingests one join/leave/heartbeat event from a classroom
// participant. The session is created lazily on first contact.
func RecordAttendance(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return err
	}

	var req struct {
		BookingID  uint      `json:"booking_id" validate:"required"`
		Action     string    `json:"action" validate:"required,oneof=join leave heartbeat"`
		Role       string    `json:"role" validate:"required,oneof=teacher student"`
		Timestamp  time.Time `json:"timestamp"`
		ActiveTime int       `json:"active_time" validate:"min=0"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return validationFailed(c, errs)
	}

	// Admins may replay events for either role; others only their own.
	if claims.Role != "admin" && claims.Role != req.Role {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Cannot report attendance for another role",
		})
	}

	session, err := services.NewAttendanceService().RecordEvent(services.AttendanceEvent{
		BookingID:  req.BookingID,
		Role:       req.Role,
		Action:     req.Action,
		Timestamp:  req.Timestamp,
		ActiveTime: req.ActiveTime,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"session": session,
	})
}

// CheckCompletion reports whether a booking's session has reached the
// required joint presence.
func CheckCompletion(c *fiber.Ctx) error {
	bookingID, err := paramID(c, "bookingId")
	if err != nil {
		return err
	}

	check, err := services.NewAttendanceService().CheckCompletion(bookingID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"completion": check,
	})
}

// GetSession returns the attendance ledger for a booking.
func GetSession(c *fiber.Ctx) error {
	bookingID, err := paramID(c, "bookingId")
	if err != nil {
		return err
	}

	var session models.ClassroomSession
	if err := database.DB.Where("booking_id = ?", bookingID).First(&session).Error; err != nil {
		return serviceError(c, &services.NotFoundError{Entity: "session", ID: bookingID})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"session": session,
	})
}

// EndClassEarly records a premature class end: the session snapshot becomes
// a complaint for admin review and the booking returns to pending.
func EndClassEarly(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return err
	}

	var req struct {
		BookingID         uint      `json:"booking_id" validate:"required"`
		Reason            string    `json:"reason" validate:"required,oneof=technical_issue no_show left_early connection_lost other"`
		Description       string    `json:"description" validate:"max=2000"`
		TeacherActiveTime int       `json:"teacher_active_time" validate:"min=0"`
		StudentActiveTime int       `json:"student_active_time" validate:"min=0"`
		RequiredTime      int       `json:"required_time" validate:"min=0"`
		EndedAt           time.Time `json:"ended_at"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return validationFailed(c, errs)
	}

	complaint, err := services.NewAttendanceService().EndEarly(services.EndEarlyInput{
		BookingID:         req.BookingID,
		Reason:            req.Reason,
		ReportedBy:        claims.Role,
		Description:       utils.SanitizeString(req.Description),
		TeacherActiveTime: req.TeacherActiveTime,
		StudentActiveTime: req.StudentActiveTime,
		RequiredTime:      req.RequiredTime,
		EndedAt:           req.EndedAt,
		EndedBy:           claims.Role,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"message":   "Class ended early, complaint filed for review",
		"complaint": complaint,
	})
}

// ListComplaints returns class complaints, optionally filtered by status.
func ListComplaints(c *fiber.Ctx) error {
	q := database.DB.Model(&models.ClassComplaint{}).Preload("Booking").Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var complaints []models.ClassComplaint
	if err := q.Find(&complaints).Error; err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"complaints": complaints,
		"count":      len(complaints),
	})
}

// GetComplaint returns one complaint with its booking.
func GetComplaint(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var complaint models.ClassComplaint
	if err := database.DB.Preload("Booking").First(&complaint, id).Error; err != nil {
		return serviceError(c, &services.NotFoundError{Entity: "complaint", ID: id})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"complaint": complaint,
	})
}

// ReviewComplaint applies an admin decision to a complaint. An approved
// review with a resolution drives the booking to its terminal state.
func ReviewComplaint(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Status     string `json:"status" validate:"required,oneof=approved rejected under_review"`
		Resolution string `json:"resolution" validate:"omitempty,oneof=mark_complete mark_incomplete refund_student no_action"`
		AdminNotes string `json:"admin_notes" validate:"max=2000"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return validationFailed(c, errs)
	}
	if req.Status == "approved" && req.Resolution == "" {
		return badRequest(c, "Approved reviews require a resolution")
	}

	complaint, err := services.NewLifecycleService().ReviewComplaint(id, user.ID, req.Status, req.Resolution, req.AdminNotes)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Complaint reviewed",
		"complaint": complaint,
	})
}
