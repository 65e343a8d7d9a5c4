package services

import (
	"fmt"
	"time"
	"tutorlink_go/database"
	"tutorlink_go/models"
	notifsvc "tutorlink_go/services/notifications"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// bookingTransitions is the full lifecycle graph. completed->accepted is
// the administrative reversal edge; accepted->pending is the early-end
// resubmission edge.
var bookingTransitions = map[string][]string{
	models.BookingPending:   {models.BookingAccepted, models.BookingRejected, models.BookingCancelled, models.BookingCompleted},
	models.BookingAccepted:  {models.BookingCompleted, models.BookingCancelled, models.BookingDisputed, models.BookingPending},
	models.BookingCompleted: {models.BookingAccepted},
	models.BookingDisputed:  {models.BookingCompleted, models.BookingCancelled},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CompletionEffects is the computed side-effect plan of completing a lesson.
type CompletionEffects struct {
	StudentCredits    int
	StudentClamped    bool
	DeactivateStudent bool
	TeacherEarnedAdd  float64
}

// PlanCompletion computes what completing a lesson does to the student's
// credit balance and the teacher's earnings. When clampStudent is set the
// balance floors at zero and the student is deactivated on reaching it;
// the dispute-approval path does not clamp.
func PlanCompletion(studentCredits int, rate float64, clampStudent bool) CompletionEffects {
	effects := CompletionEffects{
		StudentCredits:   studentCredits - 1,
		TeacherEarnedAdd: rate,
	}
	if clampStudent && effects.StudentCredits < 0 {
		effects.StudentCredits = 0
		effects.StudentClamped = true
	}
	if clampStudent && effects.StudentCredits == 0 {
		effects.DeactivateStudent = true
	}
	return effects
}

// MarkResult carries the post-commit state returned by Mark/Unmark.
type MarkResult struct {
	Booking      models.Booking
	Teacher      models.Teacher
	Student      models.Student
	RateAdded    float64
	RateDeducted float64
}

// ResolveResult carries the post-commit state of a dispute resolution.
type ResolveResult struct {
	Booking models.Booking
	Teacher models.Teacher
	Student models.Student
}

// LifecycleService owns booking state transitions and their financial side
// effects. Every mutating operation runs inside a single transaction so a
// failure at any step rolls back the whole operation.
type LifecycleService struct {
	db    *gorm.DB
	notif *notifsvc.Service
}

// NewLifecycleService builds the service on the shared connection.
func NewLifecycleService() *LifecycleService {
	return &LifecycleService{db: database.GetDB(), notif: notifsvc.NewService()}
}

// NewLifecycleServiceWithDB injects an explicit connection (tests, batch jobs).
func NewLifecycleServiceWithDB(db *gorm.DB) *LifecycleService {
	return &LifecycleService{db: db, notif: notifsvc.NewService()}
}

// MarkComplete marks an accepted booking as completed: the student loses a
// credit (clamped at zero), the teacher gains a lesson and their per-class
// rate, and a pending class_completion ledger line is appended.
func (ls *LifecycleService) MarkComplete(bookingID, adminID uint) (*MarkResult, error) {
	var result MarkResult

	err := ls.db.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.First(&booking, bookingID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &NotFoundError{Entity: "booking", ID: bookingID}
			}
			return err
		}
		if booking.Status != models.BookingAccepted {
			return &StateConflictError{Entity: "booking", ID: bookingID, Current: booking.Status, Attempted: "mark complete"}
		}

		teacher, student, err := ls.applyCompletion(tx, &booking, true, "")
		if err != nil {
			return err
		}

		result = MarkResult{Booking: booking, Teacher: *teacher, Student: *student, RateAdded: teacher.RatePerClass}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ls.notifyParties(result.Teacher, result.Student,
		"Lesson completed",
		fmt.Sprintf("Lesson %q on %s has been marked complete.", result.Booking.ClassTitle, result.Booking.ScheduledTime.Format("2006-01-02 15:04")),
		"success", result.Booking.ID)

	return &result, nil
}

// Unmark reverses a completed booking. It is the exact compensating inverse
// of MarkComplete; the pending ledger line is cancelled, never deleted.
func (ls *LifecycleService) Unmark(bookingID, adminID uint, reason string) (*MarkResult, error) {
	var result MarkResult

	err := ls.db.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.First(&booking, bookingID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &NotFoundError{Entity: "booking", ID: bookingID}
			}
			return err
		}
		if booking.Status != models.BookingCompleted || booking.AdminRejected {
			current := booking.Status
			if booking.AdminRejected {
				current = current + " (already reversed)"
			}
			return &StateConflictError{Entity: "booking", ID: bookingID, Current: current, Attempted: "unmark"}
		}

		now := time.Now()
		booking.Status = models.BookingAccepted
		booking.CompletedAt = nil
		booking.AdminRejected = true
		booking.AdminRejectedReason = reason
		booking.AdminRejectedAt = &now
		booking.AdminRejectedBy = adminID
		if err := tx.Save(&booking).Error; err != nil {
			return err
		}

		var student models.Student
		if err := tx.First(&student, booking.StudentID).Error; err != nil {
			return err
		}
		student.NoOfClasses++
		student.Active = true
		if err := tx.Save(&student).Error; err != nil {
			return err
		}

		var teacher models.Teacher
		if err := tx.First(&teacher, booking.TeacherID).Error; err != nil {
			return err
		}
		rateDeducted := teacher.RatePerClass
		teacher.LessonsCompleted--
		if teacher.LessonsCompleted < 0 {
			teacher.LessonsCompleted = 0
		}
		teacher.Earned -= teacher.RatePerClass
		if teacher.Earned < 0 {
			teacher.Earned = 0
		}
		if err := tx.Save(&teacher).Error; err != nil {
			return err
		}

		// Cancel the matching pending ledger line(s), preserving the audit trail.
		note := fmt.Sprintf("Cancelled: lesson completion reversed by admin (%s)", reason)
		if err := tx.Model(&models.PaymentTransaction{}).
			Where("booking_id = ? AND type = ? AND status = ?", booking.ID, models.TxnClassCompletion, models.TxnPending).
			Updates(map[string]interface{}{"status": models.TxnCancelled, "notes": note}).Error; err != nil {
			return err
		}

		result = MarkResult{Booking: booking, Teacher: teacher, Student: student, RateDeducted: rateDeducted}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ls.notifyParties(result.Teacher, result.Student,
		"Lesson completion reversed",
		fmt.Sprintf("Lesson %q has been reverted to accepted: %s", result.Booking.ClassTitle, reason),
		"warning", result.Booking.ID)

	return &result, nil
}

// FlagDispute moves an accepted booking into the disputed state.
func (ls *LifecycleService) FlagDispute(bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	err := ls.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, bookingID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &NotFoundError{Entity: "booking", ID: bookingID}
			}
			return err
		}
		if booking.Status != models.BookingAccepted {
			return &StateConflictError{Entity: "booking", ID: bookingID, Current: booking.Status, Attempted: "dispute"}
		}
		booking.Status = models.BookingDisputed
		return tx.Save(&booking).Error
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CancelBooking cancels a pending or accepted booking.
func (ls *LifecycleService) CancelBooking(bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	err := ls.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, bookingID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &NotFoundError{Entity: "booking", ID: bookingID}
			}
			return err
		}
		if booking.Status != models.BookingPending && booking.Status != models.BookingAccepted {
			return &StateConflictError{Entity: "booking", ID: bookingID, Current: booking.Status, Attempted: "cancel"}
		}
		now := time.Now()
		booking.Status = models.BookingCancelled
		booking.CancelledAt = &now
		return tx.Save(&booking).Error
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// ResolveDispute settles a disputed booking in favor of one party. Both
// branches run inside a single transaction: booking save, student update,
// teacher update and ledger insert either all succeed or all roll back.
func (ls *LifecycleService) ResolveDispute(bookingID, adminID uint, resolution, adminNotes string) (*ResolveResult, error) {
	if resolution != "approve_teacher" && resolution != "approve_student" {
		return nil, fmt.Errorf("invalid resolution %q", resolution)
	}

	var result ResolveResult
	err := ls.db.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.First(&booking, bookingID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &NotFoundError{Entity: "booking", ID: bookingID}
			}
			return err
		}
		if booking.Status != models.BookingDisputed {
			return &StateConflictError{Entity: "booking", ID: bookingID, Current: booking.Status, Attempted: "resolve dispute"}
		}

		now := time.Now()
		booking.DisputeResolvedBy = adminID
		booking.DisputeResolvedAt = &now
		booking.DisputeNotes = adminNotes

		if resolution == "approve_teacher" {
			// No clamp here: the student balance may go negative on a
			// teacher-favoring resolution.
			teacher, student, err := ls.applyCompletion(tx, &booking, false, "approved_teacher")
			if err != nil {
				return err
			}
			result = ResolveResult{Booking: booking, Teacher: *teacher, Student: *student}
			return nil
		}

		teacher, student, err := ls.applyCancellation(tx, &booking, true, "approved_student")
		if err != nil {
			return err
		}
		result = ResolveResult{Booking: booking, Teacher: *teacher, Student: *student}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ls.notifyParties(result.Teacher, result.Student,
		"Dispute resolved",
		fmt.Sprintf("The dispute over lesson %q has been resolved (%s).", result.Booking.ClassTitle, result.Booking.DisputeResolution),
		"info", result.Booking.ID)

	return &result, nil
}

// ReviewComplaint applies an admin's review to a class complaint and, when
// the review is approved, drives the underlying booking to its terminal
// state through the same applyCompletion/applyCancellation path the
// booking-level dispute resolver uses.
func (ls *LifecycleService) ReviewComplaint(complaintID, adminID uint, status, resolution, adminNotes string) (*models.ClassComplaint, error) {
	var complaint models.ClassComplaint

	err := ls.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&complaint, complaintID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &NotFoundError{Entity: "complaint", ID: complaintID}
			}
			return err
		}
		if complaint.Status == "approved" || complaint.Status == "rejected" {
			return &StateConflictError{Entity: "complaint", ID: complaintID, Current: complaint.Status, Attempted: "review"}
		}

		now := time.Now()
		complaint.Status = status
		complaint.Resolution = resolution
		complaint.ReviewedBy = adminID
		complaint.ReviewedAt = &now
		complaint.AdminNotes = adminNotes
		if err := tx.Save(&complaint).Error; err != nil {
			return err
		}

		if status != "approved" || resolution == "no_action" || resolution == "" {
			return nil
		}

		var booking models.Booking
		if err := tx.First(&booking, complaint.BookingID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &NotFoundError{Entity: "booking", ID: complaint.BookingID}
			}
			return err
		}
		if booking.Status == models.BookingCompleted || booking.Status == models.BookingCancelled || booking.Status == models.BookingRejected {
			return &StateConflictError{Entity: "booking", ID: booking.ID, Current: booking.Status, Attempted: "apply complaint resolution"}
		}

		switch resolution {
		case "mark_complete":
			// Complaint-level completion clamps the student balance at zero.
			if _, _, err := ls.applyCompletion(tx, &booking, true, ""); err != nil {
				return err
			}
			return ls.updateSessionStatus(tx, booking.ID, models.SessionCompleted)
		case "mark_incomplete":
			if _, _, err := ls.applyCancellation(tx, &booking, false, ""); err != nil {
				return err
			}
			return ls.updateSessionStatus(tx, booking.ID, models.SessionIncomplete)
		case "refund_student":
			if _, _, err := ls.applyCancellation(tx, &booking, true, ""); err != nil {
				return err
			}
			return ls.updateSessionStatus(tx, booking.ID, models.SessionIncomplete)
		default:
			return fmt.Errorf("invalid resolution %q", resolution)
		}
	})
	if err != nil {
		return nil, err
	}

	return &complaint, nil
}

// applyCompletion drives a booking to completed and applies the financial
// side effects: student credit -1 (optionally clamped), teacher lesson and
// earnings +rate, pending class_completion ledger line. Shared by the admin
// mark path, the dispute resolver and the complaint reviewer.
func (ls *LifecycleService) applyCompletion(tx *gorm.DB, booking *models.Booking, clampStudent bool, disputeResolution string) (*models.Teacher, *models.Student, error) {
	now := time.Now()
	booking.Status = models.BookingCompleted
	booking.CompletedAt = &now
	if disputeResolution != "" {
		booking.DisputeResolution = disputeResolution
	}
	if err := tx.Save(booking).Error; err != nil {
		return nil, nil, err
	}

	var student models.Student
	if err := tx.First(&student, booking.StudentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, &NotFoundError{Entity: "student", ID: booking.StudentID}
		}
		return nil, nil, err
	}
	var teacher models.Teacher
	if err := tx.First(&teacher, booking.TeacherID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, &NotFoundError{Entity: "teacher", ID: booking.TeacherID}
		}
		return nil, nil, err
	}

	effects := PlanCompletion(student.NoOfClasses, teacher.RatePerClass, clampStudent)
	student.NoOfClasses = effects.StudentCredits
	if effects.DeactivateStudent {
		student.Active = false
	}
	if err := tx.Save(&student).Error; err != nil {
		return nil, nil, err
	}

	teacher.LessonsCompleted++
	teacher.Earned += effects.TeacherEarnedAdd
	if err := tx.Save(&teacher).Error; err != nil {
		return nil, nil, err
	}

	txn := models.PaymentTransaction{
		Reference:   uuid.New().String(),
		TeacherID:   teacher.ID,
		BookingID:   &booking.ID,
		Amount:      teacher.RatePerClass,
		Type:        models.TxnClassCompletion,
		Status:      models.TxnPending,
		CompletedAt: &now,
		Notes:       fmt.Sprintf("Class completion: %s", booking.ClassTitle),
	}
	if err := tx.Create(&txn).Error; err != nil {
		return nil, nil, err
	}

	return &teacher, &student, nil
}

// applyCancellation drives a booking to cancelled, optionally refunding the
// student one credit. No teacher earning and no ledger line.
func (ls *LifecycleService) applyCancellation(tx *gorm.DB, booking *models.Booking, refundStudent bool, disputeResolution string) (*models.Teacher, *models.Student, error) {
	now := time.Now()
	booking.Status = models.BookingCancelled
	booking.CancelledAt = &now
	if disputeResolution != "" {
		booking.DisputeResolution = disputeResolution
	}
	if err := tx.Save(booking).Error; err != nil {
		return nil, nil, err
	}

	var student models.Student
	if err := tx.First(&student, booking.StudentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, &NotFoundError{Entity: "student", ID: booking.StudentID}
		}
		return nil, nil, err
	}
	if refundStudent {
		student.NoOfClasses++
		student.Active = true
		if err := tx.Save(&student).Error; err != nil {
			return nil, nil, err
		}
	}

	var teacher models.Teacher
	if err := tx.First(&teacher, booking.TeacherID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, &NotFoundError{Entity: "teacher", ID: booking.TeacherID}
		}
		return nil, nil, err
	}

	return &teacher, &student, nil
}

func (ls *LifecycleService) updateSessionStatus(tx *gorm.DB, bookingID uint, status string) error {
	return tx.Model(&models.ClassroomSession{}).
		Where("booking_id = ?", bookingID).
		Update("status", status).Error
}

// notifyParties sends a best-effort notification to both sides of a booking.
// Delivery failure never fails the owning operation.
func (ls *LifecycleService) notifyParties(teacher models.Teacher, student models.Student, title, message, typ string, bookingID uint) {
	userIDs := make([]uint, 0, 2)
	if teacher.UserID != 0 {
		userIDs = append(userIDs, teacher.UserID)
	}
	if student.UserID != 0 {
		userIDs = append(userIDs, student.UserID)
	}
	if len(userIDs) == 0 {
		return
	}
	payload := notifsvc.QueuedWithData(title, message, typ, map[string]interface{}{"booking_id": bookingID})
	if err := ls.notif.EnqueueOrCreate(userIDs, payload); err != nil {
		logrus.WithError(err).Warn("failed to notify booking parties")
	}
}
