package services

import (
	"encoding/json"
	"time"
	"tutorlink_go/database"
	"tutorlink_go/models"

	"gorm.io/gorm"
)

// RequiredSeconds is the minimum joint presence for a lesson of the given
// duration: 83% of the scheduled seconds, floored. Integer arithmetic so
// 60 minutes yields exactly 2988.
func RequiredSeconds(durationMinutes int) int {
	return durationMinutes * 60 * 83 / 100
}

// JointPresence approximates overlapping presence as the minimum of the two
// independently reported cumulative counters once both are positive. This
// is deliberately not a true time-interval intersection.
func JointPresence(teacherSeconds, studentSeconds int) int {
	if teacherSeconds <= 0 || studentSeconds <= 0 {
		return 0
	}
	if teacherSeconds < studentSeconds {
		return teacherSeconds
	}
	return studentSeconds
}

// AttendanceEvent is one join/leave/heartbeat report from a participant.
type AttendanceEvent struct {
	BookingID  uint
	Role       string // teacher | student
	Action     string // join | leave | heartbeat
	Timestamp  time.Time
	ActiveTime int // cumulative seconds reported by the participant
}

// EndEarlyInput captures the state of a class ended before the required
// joint time was reached.
type EndEarlyInput struct {
	BookingID         uint
	Reason            string
	ReportedBy        string
	Description       string
	TeacherActiveTime int
	StudentActiveTime int
	BothActiveTime    int
	RequiredTime      int
	EndedAt           time.Time
	EndedBy           string
}

// CompletionCheck is the advisory answer to "has this class met its
// attendance threshold". Actual completion still goes through the booking
// state machine.
type CompletionCheck struct {
	CanComplete    bool    `json:"can_complete"`
	BothActiveTime int     `json:"both_active_time"`
	RequiredTime   int     `json:"required_time"`
	Percentage     float64 `json:"percentage"`
}

// AttendanceService records per-participant presence for classroom sessions.
type AttendanceService struct {
	db *gorm.DB
}

func NewAttendanceService() *AttendanceService {
	return &AttendanceService{db: database.GetDB()}
}

func NewAttendanceServiceWithDB(db *gorm.DB) *AttendanceService {
	return &AttendanceService{db: db}
}

// RecordEvent applies one attendance event to a booking's session, creating
// the session lazily on the first event.
func (as *AttendanceService) RecordEvent(ev AttendanceEvent) (*models.ClassroomSession, error) {
	var session models.ClassroomSession

	err := as.db.Transaction(func(tx *gorm.DB) error {
		loaded, err := as.loadOrCreateSession(tx, ev.BookingID)
		if err != nil {
			return err
		}
		session = *loaded

		switch ev.Action {
		case "join":
			as.applyJoin(&session, ev)
		case "leave":
			as.applyLeave(&session, ev)
		case "heartbeat":
			if err := as.applyHeartbeat(&session, ev); err != nil {
				return err
			}
		}

		session.BothActiveTime = JointPresence(session.TeacherActiveTime, session.StudentActiveTime)

		return tx.Save(&session).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// CheckCompletion reports whether a booking's session has met the required
// joint presence. The answer is advisory only.
func (as *AttendanceService) CheckCompletion(bookingID uint) (*CompletionCheck, error) {
	var session models.ClassroomSession
	if err := as.db.Where("booking_id = ?", bookingID).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &NotFoundError{Entity: "session", ID: bookingID}
		}
		return nil, err
	}

	check := &CompletionCheck{
		CanComplete:    session.BothActiveTime >= session.RequiredTime,
		BothActiveTime: session.BothActiveTime,
		RequiredTime:   session.RequiredTime,
	}
	if session.RequiredTime > 0 {
		check.Percentage = float64(session.BothActiveTime) / float64(session.RequiredTime) * 100
		if check.Percentage > 100 {
			check.Percentage = 100
		}
	}
	return check, nil
}

// EndEarly records a class ended before the attendance threshold: a
// complaint snapshot is created for admin review, the session is marked
// ended-early and the booking goes back to pending for re-adjudication.
func (as *AttendanceService) EndEarly(in EndEarlyInput) (*models.ClassComplaint, error) {
	var complaint models.ClassComplaint

	err := as.db.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.First(&booking, in.BookingID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &NotFoundError{Entity: "booking", ID: in.BookingID}
			}
			return err
		}

		session, err := as.loadOrCreateSession(tx, in.BookingID)
		if err != nil {
			return err
		}

		endedAt := in.EndedAt
		if endedAt.IsZero() {
			endedAt = time.Now()
		}

		session.TeacherActiveTime = in.TeacherActiveTime
		session.StudentActiveTime = in.StudentActiveTime
		session.BothActiveTime = JointPresence(in.TeacherActiveTime, in.StudentActiveTime)
		session.ClassEndedAt = &endedAt
		session.Status = models.SessionEndedEarly
		if err := tx.Save(session).Error; err != nil {
			return err
		}

		requiredTime := in.RequiredTime
		if requiredTime == 0 {
			requiredTime = session.RequiredTime
		}

		complaint = models.ClassComplaint{
			BookingID:         booking.ID,
			TeacherID:         booking.TeacherID,
			StudentID:         booking.StudentID,
			Reason:            in.Reason,
			ReportedBy:        in.ReportedBy,
			Description:       in.Description,
			TeacherActiveTime: in.TeacherActiveTime,
			StudentActiveTime: in.StudentActiveTime,
			BothActiveTime:    session.BothActiveTime,
			RequiredTime:      requiredTime,
			EndedAt:           &endedAt,
			EndedBy:           in.EndedBy,
			Status:            "pending",
		}
		if err := tx.Create(&complaint).Error; err != nil {
			return err
		}

		if booking.Status == models.BookingAccepted {
			booking.Status = models.BookingPending
			if err := tx.Save(&booking).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

// loadOrCreateSession fetches the unique session for a booking, creating it
// on first contact. Creation requires the booking to exist.
func (as *AttendanceService) loadOrCreateSession(tx *gorm.DB, bookingID uint) (*models.ClassroomSession, error) {
	var session models.ClassroomSession
	err := tx.Where("booking_id = ?", bookingID).First(&session).Error
	if err == nil {
		return &session, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var booking models.Booking
	if err := tx.First(&booking, bookingID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &NotFoundError{Entity: "booking", ID: bookingID}
		}
		return nil, err
	}

	session = models.ClassroomSession{
		BookingID:    bookingID,
		RequiredTime: RequiredSeconds(booking.Duration),
		Status:       models.SessionWaiting,
		Heartbeats:   models.JSON("[]"),
	}
	if err := tx.Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (as *AttendanceService) applyJoin(session *models.ClassroomSession, ev AttendanceEvent) {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	if ev.Role == "teacher" {
		session.TeacherJoinedAt = &ts
	} else {
		session.StudentJoinedAt = &ts
	}
	if session.TeacherJoinedAt != nil && session.StudentJoinedAt != nil && session.ClassStartedAt == nil {
		started := ts
		session.ClassStartedAt = &started
		session.Status = models.SessionActive
	}
}

func (as *AttendanceService) applyLeave(session *models.ClassroomSession, ev AttendanceEvent) {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	if ev.Role == "teacher" {
		session.TeacherLeftAt = &ts
		session.TeacherActiveTime = ev.ActiveTime
	} else {
		session.StudentLeftAt = &ts
		session.StudentActiveTime = ev.ActiveTime
	}
}

func (as *AttendanceService) applyHeartbeat(session *models.ClassroomSession, ev AttendanceEvent) error {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	if ev.Role == "teacher" {
		session.TeacherActiveTime = ev.ActiveTime
	} else {
		session.StudentActiveTime = ev.ActiveTime
	}

	var entries []models.HeartbeatEntry
	if !session.Heartbeats.IsNull() {
		if err := json.Unmarshal(session.Heartbeats, &entries); err != nil {
			entries = nil
		}
	}
	entries = append(entries, models.HeartbeatEntry{Role: ev.Role, Timestamp: ts, ActiveTime: ev.ActiveTime})

	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	session.Heartbeats = raw
	return nil
}
