package routes

import (
	"tutorlink_go/controllers"
	"tutorlink_go/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "tutorlink-go",
		})
	})

	api := app.Group("/api")

	// Public
	auth := api.Group("/auth")
	auth.Post("/login", controllers.Login)

	// Everything else requires a valid token
	protected := api.Group("", middleware.JWTMiddleware(), middleware.LogActivityMiddleware())
	protected.Get("/profile", controllers.GetProfile)

	// Bookings
	bookings := protected.Group("/bookings")
	bookings.Post("/", controllers.CreateBooking)
	bookings.Get("/", controllers.ListBookings)
	bookings.Get("/:id", controllers.GetBooking)
	bookings.Patch("/:id/status", middleware.RequireStaff(), controllers.UpdateBookingStatus)
	bookings.Patch("/:id/cancel", controllers.CancelBooking)
	bookings.Patch("/:id/dispute", controllers.FlagBookingDispute)

	// Recurring booking patterns
	recurring := protected.Group("/recurring-bookings")
	recurring.Post("/", middleware.RequireStaff(), controllers.CreateRecurringBooking)
	recurring.Get("/:id", controllers.GetRecurringPattern)
	recurring.Patch("/:id/cancel", middleware.RequireStaff(), controllers.CancelRecurringPattern)
	recurring.Delete("/:id", middleware.RequireAdmin(), controllers.DeleteRecurringPattern)

	// Classroom attendance and complaints
	classroom := protected.Group("/classroom")
	classroom.Post("/attendance", controllers.RecordAttendance)
	classroom.Post("/end-early", controllers.EndClassEarly)
	classroom.Get("/check-completion/:bookingId", controllers.CheckCompletion)
	classroom.Get("/session/:bookingId", controllers.GetSession)
	classroom.Get("/complaints", middleware.RequireAdmin(), controllers.ListComplaints)
	classroom.Get("/complaints/:id", middleware.RequireAdmin(), controllers.GetComplaint)
	classroom.Patch("/complaints/:id/review", middleware.RequireAdmin(), controllers.ReviewComplaint)

	// Admin lesson adjudication
	lessons := protected.Group("/admin/lessons", middleware.RequireAdmin())
	lessons.Post("/mark", controllers.MarkLessonComplete)
	lessons.Post("/unmark", controllers.UnmarkLessonComplete)

	// Disputes
	disputes := protected.Group("/disputes", middleware.RequireAdmin())
	disputes.Get("/", controllers.ListDisputes)
	disputes.Patch("/:id/resolve", controllers.ResolveDispute)

	// Payments
	payments := protected.Group("/payments")
	payments.Get("/", middleware.RequireStaff(), controllers.ListTransactions)
	payments.Get("/export", middleware.RequireAdmin(), controllers.ExportTransactions)
	payments.Get("/teacher/:id/summary", middleware.RequireStaff(), controllers.GetTeacherSummary)
	payments.Patch("/:id/pay", middleware.RequireAdmin(), controllers.PayTransaction)
	payments.Patch("/teacher/:id/pay-all", middleware.RequireAdmin(), controllers.PayAllForTeacher)
	payments.Post("/adjustments", middleware.RequireAdmin(), controllers.CreateAdjustment)

	// Parties
	teachers := protected.Group("/teachers")
	teachers.Get("/", controllers.ListTeachers)
	teachers.Get("/:id", controllers.GetTeacher)

	students := protected.Group("/students")
	students.Get("/", controllers.ListStudents)
	students.Get("/:id", controllers.GetStudent)
	students.Post("/:id/credits", middleware.RequireAdmin(), controllers.AddStudentCredits)

	// Notifications
	notifications := protected.Group("/notifications")
	notifications.Get("/", controllers.ListNotifications)
	notifications.Get("/unread-count", controllers.UnreadCount)
	notifications.Patch("/:id/read", controllers.MarkNotificationRead)
	notifications.Patch("/read-all", controllers.MarkAllNotificationsRead)

	// Archives
	archives := protected.Group("/archives", middleware.RequireAdmin())
	archives.Get("/", controllers.GetSessionArchives)
	archives.Get("/:id/download", controllers.DownloadSessionArchive)
	archives.Post("/run", controllers.TriggerArchiveMaintenance)
}
