package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// Booking status values
const (
	BookingPending   = "pending"
	BookingAccepted  = "accepted"
	BookingRejected  = "rejected"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
	BookingDisputed  = "disputed"
)

// ClassroomSession status values
const (
	SessionWaiting    = "waiting"
	SessionActive     = "active"
	SessionCompleted  = "completed"
	SessionEndedEarly = "ended-early"
	SessionIncomplete = "incomplete"
)

// PaymentTransaction status and type values
const (
	TxnPending   = "pending"
	TxnPaid      = "paid"
	TxnCancelled = "cancelled"

	TxnClassCompletion  = "class_completion"
	TxnManualAdjustment = "manual_adjustment"
	TxnBonus            = "bonus"
	TxnDeduction        = "deduction"
)

// User model - the authenticated principal. Full profile management lives
// outside this service; the engine only needs id, role and active status.
type User struct {
	BaseModel
	Username string `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Password string `json:"-" gorm:"size:255;not null"`
	Email    string `json:"email" gorm:"size:255;uniqueIndex"`
	Role     string `json:"role" gorm:"size:50;not null;default:'student';type:enum('admin','teacher','student')"`
	Status   string `json:"status" gorm:"size:50;not null;default:'active';type:enum('active','inactive','suspended')"`

	// Relationships
	Student *Student `json:"student,omitempty" gorm:"foreignKey:UserID"`
	Teacher *Teacher `json:"teacher,omitempty" gorm:"foreignKey:UserID"`
}

// Teacher model
type Teacher struct {
	BaseModel
	UserID           uint    `json:"user_id" gorm:"uniqueIndex;not null"`
	FirstName        string  `json:"first_name" gorm:"size:100"`
	LastName         string  `json:"last_name" gorm:"size:100"`
	Nickname         string  `json:"nickname" gorm:"size:100"`
	Subjects         string  `json:"subjects" gorm:"type:text"`
	RatePerClass     float64 `json:"rate_per_class"`
	LessonsCompleted int     `json:"lessons_completed"`
	Earned           float64 `json:"earned"`
	Active           bool    `json:"active" gorm:"default:true"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Student model. NoOfClasses is the remaining prepaid lesson balance.
type Student struct {
	BaseModel
	UserID      uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	FirstName   string `json:"first_name" gorm:"size:100"`
	LastName    string `json:"last_name" gorm:"size:100"`
	Nickname    string `json:"nickname" gorm:"size:100"`
	GradeLevel  string `json:"grade_level" gorm:"size:50"`
	NoOfClasses int    `json:"no_of_classes"`
	Active      bool   `json:"active" gorm:"default:true"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Booking model - one scheduled lesson between a teacher and a student.
// Duplicate (teacher, student, scheduled_time) rows are allowed; each
// booking carries its own id and lifecycle.
type Booking struct {
	BaseModel
	TeacherID     uint      `json:"teacher_id" gorm:"not null;index"`
	StudentID     uint      `json:"student_id" gorm:"not null;index"`
	ClassTitle    string    `json:"class_title" gorm:"size:255;not null"`
	Topic         string    `json:"topic" gorm:"size:255"`
	ScheduledTime time.Time `json:"scheduled_time" gorm:"not null"`
	Duration      int       `json:"duration" gorm:"not null"` // minutes
	Status        string    `json:"status" gorm:"size:50;not null;default:'pending';index;type:enum('pending','accepted','rejected','completed','cancelled','disputed')"`
	CreatedByRole string    `json:"created_by_role" gorm:"size:50"`
	CreatedByID   uint      `json:"created_by_id"`

	CompletedAt *time.Time `json:"completed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`

	// Set when an admin reverses a completed lesson back to accepted.
	AdminRejected       bool       `json:"admin_rejected" gorm:"default:false"`
	AdminRejectedReason string     `json:"admin_rejected_reason" gorm:"size:500"`
	AdminRejectedAt     *time.Time `json:"admin_rejected_at"`
	AdminRejectedBy     uint       `json:"admin_rejected_by"`

	DisputeResolution string     `json:"dispute_resolution" gorm:"size:50"`
	DisputeResolvedBy uint       `json:"dispute_resolved_by"`
	DisputeResolvedAt *time.Time `json:"dispute_resolved_at"`
	DisputeNotes      string     `json:"dispute_notes" gorm:"type:text"`

	RecurringPatternID *uint `json:"recurring_pattern_id" gorm:"index;default:null"`

	// Relationships
	Teacher Teacher `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// ClassroomSession - attendance ledger for exactly one booking. Created
// lazily on the first attendance event, never deleted.
type ClassroomSession struct {
	BaseModel
	BookingID uint `json:"booking_id" gorm:"uniqueIndex;not null"`

	TeacherJoinedAt *time.Time `json:"teacher_joined_at"`
	TeacherLeftAt   *time.Time `json:"teacher_left_at"`
	StudentJoinedAt *time.Time `json:"student_joined_at"`
	StudentLeftAt   *time.Time `json:"student_left_at"`

	// Cumulative seconds as reported by each participant. BothActiveTime is
	// the min of the two counters once both are positive, not a true
	// interval intersection.
	TeacherActiveTime int `json:"teacher_active_time"`
	StudentActiveTime int `json:"student_active_time"`
	BothActiveTime    int `json:"both_active_time"`
	RequiredTime      int `json:"required_time"` // seconds

	ClassStartedAt *time.Time `json:"class_started_at"`
	ClassEndedAt   *time.Time `json:"class_ended_at"`
	Status         string     `json:"status" gorm:"size:50;not null;default:'waiting';type:enum('waiting','active','completed','ended-early','incomplete')"`

	// Append-only log of {role, timestamp, active_time} entries.
	Heartbeats JSON `json:"heartbeats" gorm:"type:json"`

	// Relationships
	Booking Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
}

// HeartbeatEntry is one element of ClassroomSession.Heartbeats.
type HeartbeatEntry struct {
	Role       string    `json:"role"`
	Timestamp  time.Time `json:"timestamp"`
	ActiveTime int       `json:"active_time"`
}

// ClassComplaint - raised when a class ends before the required joint time.
type ClassComplaint struct {
	BaseModel
	BookingID  uint   `json:"booking_id" gorm:"not null;index"`
	TeacherID  uint   `json:"teacher_id" gorm:"not null"`
	StudentID  uint   `json:"student_id" gorm:"not null"`
	Reason     string `json:"reason" gorm:"size:100;type:enum('technical_issue','no_show','left_early','connection_lost','other')"`
	ReportedBy string `json:"reported_by" gorm:"size:50"`

	Description string `json:"description" gorm:"type:text"`

	// Snapshot of the attendance counters when the class ended.
	TeacherActiveTime int `json:"teacher_active_time"`
	StudentActiveTime int `json:"student_active_time"`
	BothActiveTime    int `json:"both_active_time"`
	RequiredTime      int `json:"required_time"`

	EndedAt *time.Time `json:"ended_at"`
	EndedBy string     `json:"ended_by" gorm:"size:50"`

	Status     string     `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','approved','rejected','under_review')"`
	Resolution string     `json:"resolution" gorm:"size:50"`
	ReviewedBy uint       `json:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at"`
	AdminNotes string     `json:"admin_notes" gorm:"type:text"`

	// Relationships
	Booking Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
}

// PaymentTransaction - one ledger line for a teacher. Reversals cancel the
// pending line instead of deleting it so the audit trail survives.
type PaymentTransaction struct {
	BaseModel
	Reference string  `json:"reference" gorm:"size:64;uniqueIndex"`
	TeacherID uint    `json:"teacher_id" gorm:"not null;index"`
	BookingID *uint   `json:"booking_id" gorm:"index;default:null"` // nil for manual adjustments
	Amount    float64 `json:"amount" gorm:"not null"`
	Type      string  `json:"type" gorm:"size:50;not null;type:enum('class_completion','manual_adjustment','bonus','deduction')"`
	Status    string  `json:"status" gorm:"size:50;not null;default:'pending';index;type:enum('pending','paid','cancelled')"`

	CompletedAt   *time.Time `json:"completed_at"`
	PaidAt        *time.Time `json:"paid_at"`
	PaidBy        uint       `json:"paid_by"`
	PaymentMethod string     `json:"payment_method" gorm:"size:100"`
	Notes         string     `json:"notes" gorm:"type:text"`

	// Relationships
	Teacher Teacher  `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	Booking *Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
}

// RecurringPattern - template describing a series of bookings. Created
// atomically with its generated bookings; BookingIDs keeps the ordered
// references so cancelling or deleting the pattern can reach them.
type RecurringPattern struct {
	BaseModel
	TeacherID   uint      `json:"teacher_id" gorm:"not null"`
	StudentID   uint      `json:"student_id" gorm:"not null"`
	ClassTitle  string    `json:"class_title" gorm:"size:255;not null"`
	Topic       string    `json:"topic" gorm:"size:255"`
	StartTime   time.Time `json:"start_time" gorm:"not null"`
	Duration    int       `json:"duration" gorm:"not null"`
	Frequency   string    `json:"frequency" gorm:"size:50;not null;type:enum('daily','weekly','biweekly','monthly')"`
	Occurrences int       `json:"occurrences" gorm:"not null"`
	DaysOfWeek  JSON      `json:"days_of_week" gorm:"type:json"` // subset of 0-6, weekly only
	Status      string    `json:"status" gorm:"size:50;not null;default:'active';type:enum('active','completed','cancelled')"`
	BookingIDs  JSON      `json:"booking_ids" gorm:"type:json"`

	CancelReason string `json:"cancel_reason" gorm:"size:500"`

	// Relationships
	Teacher Teacher `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Notification model
type Notification struct {
	BaseModel
	UserID  uint       `json:"user_id" gorm:"not null"`
	Title   string     `json:"title" gorm:"size:255;not null"`
	Message string     `json:"message" gorm:"type:text;not null"`
	Type    string     `json:"type" gorm:"size:50;not null;type:enum('info','warning','error','success')"`
	Read    bool       `json:"read" gorm:"default:false"`
	ReadAt  *time.Time `json:"read_at"`
	Data    JSON       `json:"data" gorm:"type:json"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// SessionArchive model for tracking heartbeat logs exported to S3
type SessionArchive struct {
	BaseModel
	FileName     string    `json:"file_name" gorm:"size:255;not null"`
	S3Key        string    `json:"s3_key" gorm:"size:500;not null"`
	StartDate    time.Time `json:"start_date" gorm:"not null"`
	EndDate      time.Time `json:"end_date" gorm:"not null"`
	SessionCount int       `json:"session_count" gorm:"not null"`
	FileSize     int64     `json:"file_size" gorm:"not null"`
	Status       string    `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','completed','failed')"`
	Error        string    `json:"error" gorm:"type:text"`
}
