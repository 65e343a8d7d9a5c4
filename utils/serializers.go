package utils

import (
	"time"
	"tutorlink_go/models"
)

// Compact representations used across APIs

type TeacherShort struct {
	ID               uint    `json:"id"`
	FirstName        string  `json:"first_name,omitempty"`
	LastName         string  `json:"last_name,omitempty"`
	Nickname         string  `json:"nickname,omitempty"`
	LessonsCompleted int     `json:"lessons_completed"`
	Earned           float64 `json:"earned"`
	RatePerClass     float64 `json:"rate_per_class"`
	Active           bool    `json:"active"`
}

type StudentShort struct {
	ID          uint   `json:"id"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Nickname    string `json:"nickname,omitempty"`
	NoOfClasses int    `json:"no_of_classes"`
	Active      bool   `json:"active"`
}

type BookingDTO struct {
	ID                 uint       `json:"id"`
	TeacherID          uint       `json:"teacher_id"`
	StudentID          uint       `json:"student_id"`
	ClassTitle         string     `json:"class_title"`
	Topic              string     `json:"topic,omitempty"`
	ScheduledTime      time.Time  `json:"scheduled_time"`
	Duration           int        `json:"duration"`
	Status             string     `json:"status"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	AdminRejected      bool       `json:"admin_rejected"`
	DisputeResolution  string     `json:"dispute_resolution,omitempty"`
	DisputeNotes       string     `json:"dispute_notes,omitempty"`
	RecurringPatternID *uint      `json:"recurring_pattern_id,omitempty"`
}

type TransactionDTO struct {
	ID            uint       `json:"id"`
	Reference     string     `json:"reference"`
	TeacherID     uint       `json:"teacher_id"`
	BookingID     *uint      `json:"booking_id,omitempty"`
	Amount        float64    `json:"amount"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToTeacherShort maps a models.Teacher to the compact DTO.
func ToTeacherShort(t models.Teacher) TeacherShort {
	return TeacherShort{
		ID:               t.ID,
		FirstName:        t.FirstName,
		LastName:         t.LastName,
		Nickname:         t.Nickname,
		LessonsCompleted: t.LessonsCompleted,
		Earned:           t.Earned,
		RatePerClass:     t.RatePerClass,
		Active:           t.Active,
	}
}

// ToStudentShort maps a models.Student to the compact DTO.
func ToStudentShort(s models.Student) StudentShort {
	return StudentShort{
		ID:          s.ID,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		Nickname:    s.Nickname,
		NoOfClasses: s.NoOfClasses,
		Active:      s.Active,
	}
}

// ToBookingDTO maps a models.Booking to the compact DTO.
func ToBookingDTO(b models.Booking) BookingDTO {
	return BookingDTO{
		ID:                 b.ID,
		TeacherID:          b.TeacherID,
		StudentID:          b.StudentID,
		ClassTitle:         b.ClassTitle,
		Topic:              b.Topic,
		ScheduledTime:      b.ScheduledTime,
		Duration:           b.Duration,
		Status:             b.Status,
		CompletedAt:        b.CompletedAt,
		CancelledAt:        b.CancelledAt,
		AdminRejected:      b.AdminRejected,
		DisputeResolution:  b.DisputeResolution,
		DisputeNotes:       b.DisputeNotes,
		RecurringPatternID: b.RecurringPatternID,
	}
}

// ToTransactionDTO maps a models.PaymentTransaction to the compact DTO.
func ToTransactionDTO(t models.PaymentTransaction) TransactionDTO {
	return TransactionDTO{
		ID:            t.ID,
		Reference:     t.Reference,
		TeacherID:     t.TeacherID,
		BookingID:     t.BookingID,
		Amount:        t.Amount,
		Type:          t.Type,
		Status:        t.Status,
		PaidAt:        t.PaidAt,
		PaymentMethod: t.PaymentMethod,
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt,
	}
}
