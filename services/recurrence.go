package services

import (
	"encoding/json"
	"sort"
	"time"
	"tutorlink_go/database"
	"tutorlink_go/models"

	"gorm.io/gorm"
)

// maxOccurrences caps a single pattern; end-date derivation also stops here.
const maxOccurrences = 365

// GeneratePatternDates expands a recurrence template into concrete class
// times, sorted ascending. Frequencies:
//
//	daily    - start + i days
//	weekly   - start + 7i days, or specific weekdays (see below)
//	biweekly - start + 14i days
//	monthly  - start + i calendar months (AddDate normalization applies,
//	           so Jan 31 monthly can land on Mar 2/3)
//
// When daysOfWeek is non-empty (weekly only), generation walks week by week
// from the week containing start, emitting each listed weekday at start's
// clock time, skipping candidates before start itself.
func GeneratePatternDates(start time.Time, frequency string, occurrences int, daysOfWeek []int) []time.Time {
	if occurrences <= 0 {
		return nil
	}
	if occurrences > maxOccurrences {
		occurrences = maxOccurrences
	}

	if frequency == "weekly" && len(daysOfWeek) > 0 {
		return weeklyOnDays(start, occurrences, daysOfWeek)
	}

	dates := make([]time.Time, 0, occurrences)
	for i := 0; i < occurrences; i++ {
		switch frequency {
		case "daily":
			dates = append(dates, start.AddDate(0, 0, i))
		case "weekly":
			dates = append(dates, start.AddDate(0, 0, 7*i))
		case "biweekly":
			dates = append(dates, start.AddDate(0, 0, 14*i))
		case "monthly":
			dates = append(dates, start.AddDate(0, i, 0))
		}
	}
	return dates
}

// weeklyOnDays emits occurrences on the given weekdays (0=Sunday..6=Saturday)
// week by week, anchored at the Sunday of start's week.
func weeklyOnDays(start time.Time, occurrences int, daysOfWeek []int) []time.Time {
	days := make([]int, 0, len(daysOfWeek))
	seen := make(map[int]bool)
	for _, d := range daysOfWeek {
		if d >= 0 && d <= 6 && !seen[d] {
			days = append(days, d)
			seen[d] = true
		}
	}
	if len(days) == 0 {
		return nil
	}
	sort.Ints(days)

	weekAnchor := start.AddDate(0, 0, -int(start.Weekday()))
	dates := make([]time.Time, 0, occurrences)
	for week := 0; len(dates) < occurrences; week++ {
		for _, d := range days {
			candidate := weekAnchor.AddDate(0, 0, week*7+d)
			if candidate.Before(start) {
				continue
			}
			dates = append(dates, candidate)
			if len(dates) == occurrences {
				break
			}
		}
	}
	return dates
}

// OccurrencesBetween derives an occurrence count from an end date: how many
// generated dates fall on or before end. Capped at maxOccurrences.
func OccurrencesBetween(start, end time.Time, frequency string, daysOfWeek []int) int {
	if end.Before(start) {
		return 0
	}
	dates := GeneratePatternDates(start, frequency, maxOccurrences, daysOfWeek)
	count := 0
	for _, d := range dates {
		if d.After(end) {
			break
		}
		count++
	}
	return count
}

// CreateRecurringInput describes a requested booking series.
type CreateRecurringInput struct {
	TeacherID     uint
	StudentID     uint
	ClassTitle    string
	Topic         string
	StartTime     time.Time
	Duration      int
	Frequency     string
	Occurrences   int
	EndDate       *time.Time // alternative to Occurrences
	DaysOfWeek    []int
	CreatedByRole string
	CreatedByID   uint
}

// RecurringResult is returned from pattern creation.
type RecurringResult struct {
	Pattern  *models.RecurringPattern `json:"pattern"`
	Bookings []models.Booking         `json:"bookings"`
}

// RecurrenceService manages booking series.
type RecurrenceService struct {
	db *gorm.DB
}

func NewRecurrenceService() *RecurrenceService {
	return &RecurrenceService{db: database.GetDB()}
}

func NewRecurrenceServiceWithDB(db *gorm.DB) *RecurrenceService {
	return &RecurrenceService{db: db}
}

// CreateRecurring creates a pattern and all of its bookings in one
// transaction. The student must hold at least as many prepaid classes as the
// series length; nothing is deducted here, completion does that per class.
func (rs *RecurrenceService) CreateRecurring(in CreateRecurringInput) (*RecurringResult, error) {
	var result RecurringResult

	err := rs.db.Transaction(func(tx *gorm.DB) error {
		var teacher models.Teacher
		if err := tx.First(&teacher, in.TeacherID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &NotFoundError{Entity: "teacher", ID: in.TeacherID}
			}
			return err
		}
		var student models.Student
		if err := tx.First(&student, in.StudentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &NotFoundError{Entity: "student", ID: in.StudentID}
			}
			return err
		}

		occurrences := in.Occurrences
		if occurrences == 0 && in.EndDate != nil {
			occurrences = OccurrencesBetween(in.StartTime, *in.EndDate, in.Frequency, in.DaysOfWeek)
		}
		if occurrences <= 0 {
			return &CapacityError{Available: student.NoOfClasses, Requested: 0}
		}
		if occurrences > maxOccurrences {
			occurrences = maxOccurrences
		}

		if student.NoOfClasses < occurrences {
			return &CapacityError{Available: student.NoOfClasses, Requested: occurrences}
		}

		dates := GeneratePatternDates(in.StartTime, in.Frequency, occurrences, in.DaysOfWeek)
		if len(dates) == 0 {
			return &CapacityError{Available: student.NoOfClasses, Requested: 0}
		}

		pattern := models.RecurringPattern{
			TeacherID:   in.TeacherID,
			StudentID:   in.StudentID,
			ClassTitle:  in.ClassTitle,
			Topic:       in.Topic,
			StartTime:   in.StartTime,
			Duration:    in.Duration,
			Frequency:   in.Frequency,
			Occurrences: len(dates),
			Status:      "active",
		}
		if len(in.DaysOfWeek) > 0 {
			if raw, err := json.Marshal(in.DaysOfWeek); err == nil {
				pattern.DaysOfWeek = raw
			}
		}
		if err := tx.Create(&pattern).Error; err != nil {
			return err
		}

		bookings := make([]models.Booking, 0, len(dates))
		bookingIDs := make([]uint, 0, len(dates))
		for _, d := range dates {
			booking := models.Booking{
				TeacherID:          in.TeacherID,
				StudentID:          in.StudentID,
				ClassTitle:         in.ClassTitle,
				Topic:              in.Topic,
				ScheduledTime:      d,
				Duration:           in.Duration,
				Status:             models.BookingPending,
				CreatedByRole:      in.CreatedByRole,
				CreatedByID:        in.CreatedByID,
				RecurringPatternID: &pattern.ID,
			}
			if err := tx.Create(&booking).Error; err != nil {
				return err
			}
			bookings = append(bookings, booking)
			bookingIDs = append(bookingIDs, booking.ID)
		}

		raw, err := json.Marshal(bookingIDs)
		if err != nil {
			return err
		}
		pattern.BookingIDs = raw
		if err := tx.Save(&pattern).Error; err != nil {
			return err
		}

		result = RecurringResult{Pattern: &pattern, Bookings: bookings}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelPattern cancels a series. When cancelFuture is set, member bookings
// still pending or accepted with a future class time are cancelled too;
// completed or in-flight classes are left alone.
func (rs *RecurrenceService) CancelPattern(patternID uint, reason string, cancelFuture bool) (*models.RecurringPattern, int, error) {
	var pattern models.RecurringPattern
	cancelled := 0

	err := rs.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&pattern, patternID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &NotFoundError{Entity: "recurring pattern", ID: patternID}
			}
			return err
		}
		if pattern.Status == "cancelled" {
			return &StateConflictError{Entity: "recurring pattern", ID: patternID, Current: pattern.Status, Attempted: "cancel"}
		}

		pattern.Status = "cancelled"
		pattern.CancelReason = reason
		if err := tx.Save(&pattern).Error; err != nil {
			return err
		}

		if cancelFuture {
			now := time.Now()
			res := tx.Model(&models.Booking{}).
				Where("recurring_pattern_id = ? AND status IN ? AND scheduled_time > ?",
					patternID, []string{models.BookingPending, models.BookingAccepted}, now).
				Updates(map[string]interface{}{"status": models.BookingCancelled, "cancelled_at": now})
			if res.Error != nil {
				return res.Error
			}
			cancelled = int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return &pattern, cancelled, nil
}

// DeletePattern hard-deletes a pattern together with every booking it
// generated. This is the one administrative path that removes booking rows;
// ledger lines keep their booking_id reference so the audit trail survives.
func (rs *RecurrenceService) DeletePattern(patternID uint) error {
	return rs.db.Transaction(func(tx *gorm.DB) error {
		var pattern models.RecurringPattern
		if err := tx.First(&pattern, patternID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &NotFoundError{Entity: "recurring pattern", ID: patternID}
			}
			return err
		}

		if err := tx.Unscoped().
			Where("recurring_pattern_id = ?", patternID).
			Delete(&models.Booking{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&pattern).Error
	})
}

// GetPattern loads a pattern with its member bookings.
func (rs *RecurrenceService) GetPattern(patternID uint) (*models.RecurringPattern, []models.Booking, error) {
	var pattern models.RecurringPattern
	if err := rs.db.Preload("Teacher").Preload("Student").First(&pattern, patternID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, &NotFoundError{Entity: "recurring pattern", ID: patternID}
		}
		return nil, nil, err
	}

	var bookings []models.Booking
	if err := rs.db.Where("recurring_pattern_id = ?", patternID).
		Order("scheduled_time ASC").Find(&bookings).Error; err != nil {
		return nil, nil, err
	}
	return &pattern, bookings, nil
}
