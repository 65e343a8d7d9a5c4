package services

import (
	"time"
	"tutorlink_go/database"
	"tutorlink_go/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PayAllResult summarizes a bulk settlement for one teacher.
type PayAllResult struct {
	Teacher          *models.Teacher `json:"teacher"`
	TotalAmount      float64         `json:"total_amount"`
	TransactionCount int             `json:"transaction_count"`
}

// TeacherSummary is the read-side projection of a teacher's ledger.
type TeacherSummary struct {
	TeacherID     uint    `json:"teacher_id"`
	PendingAmount float64 `json:"pending_amount"`
	PendingCount  int     `json:"pending_count"`
	PaidAmount    float64 `json:"paid_amount"`
	PaidCount     int     `json:"paid_count"`
}

// PaymentService owns the teacher payment ledger. Ledger lines are
// append-only; state changes flip status, never delete rows.
type PaymentService struct {
	db *gorm.DB
}

func NewPaymentService() *PaymentService {
	return &PaymentService{db: database.GetDB()}
}

func NewPaymentServiceWithDB(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db}
}

// PaySingle settles one pending transaction.
func (ps *PaymentService) PaySingle(txnID, paidBy uint, method, notes string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction

	err := ps.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&txn, txnID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &NotFoundError{Entity: "transaction", ID: txnID}
			}
			return err
		}
		if txn.Status != models.TxnPending {
			return &StateConflictError{Entity: "transaction", ID: txnID, Current: txn.Status, Attempted: "pay"}
		}

		now := time.Now()
		txn.Status = models.TxnPaid
		txn.PaidAt = &now
		txn.PaidBy = paidBy
		txn.PaymentMethod = method
		if notes != "" {
			txn.Notes = notes
		}
		return tx.Save(&txn).Error
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// PayAllForTeacher settles every pending transaction for a teacher in one
// transaction and zeroes the teacher's accrued counters. Deduction lines
// carry negative amounts, so the total nets them against accruals. The
// ledger keeps the full history; earned/lessons_completed only track the
// unsettled run.
func (ps *PaymentService) PayAllForTeacher(teacherID, paidBy uint, method string) (*PayAllResult, error) {
	var result PayAllResult

	err := ps.db.Transaction(func(tx *gorm.DB) error {
		var teacher models.Teacher
		if err := tx.First(&teacher, teacherID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &NotFoundError{Entity: "teacher", ID: teacherID}
			}
			return err
		}

		var pending []models.PaymentTransaction
		if err := tx.Where("teacher_id = ? AND status = ?", teacherID, models.TxnPending).
			Find(&pending).Error; err != nil {
			return err
		}
		if len(pending) == 0 {
			return &StateConflictError{Entity: "teacher", ID: teacherID, Current: "no pending transactions", Attempted: "pay all"}
		}

		now := time.Now()
		total := 0.0
		for _, t := range pending {
			total += t.Amount
		}

		if err := tx.Model(&models.PaymentTransaction{}).
			Where("teacher_id = ? AND status = ?", teacherID, models.TxnPending).
			Updates(map[string]interface{}{
				"status":         models.TxnPaid,
				"paid_at":        now,
				"paid_by":        paidBy,
				"payment_method": method,
			}).Error; err != nil {
			return err
		}

		teacher.Earned = 0
		teacher.LessonsCompleted = 0
		if err := tx.Save(&teacher).Error; err != nil {
			return err
		}

		result = PayAllResult{Teacher: &teacher, TotalAmount: total, TransactionCount: len(pending)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AdjustmentDelta converts an adjustment request into the signed amount
// recorded on the ledger: deductions are negative, everything else positive.
func AdjustmentDelta(typ string, amount float64) float64 {
	if typ == models.TxnDeduction {
		return -amount
	}
	return amount
}

// ApplyAdjustment moves an earned balance by a signed delta, flooring at zero.
func ApplyAdjustment(earned, delta float64) float64 {
	earned += delta
	if earned < 0 {
		return 0
	}
	return earned
}

// ManualAdjustment appends a bonus, deduction or manual adjustment line and
// moves the teacher's earned balance with it. The ledger stores the signed
// amount so pending-side sums stay aligned with what is actually owed;
// earned itself floors at zero.
func (ps *PaymentService) ManualAdjustment(teacherID uint, amount float64, typ, notes string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction

	err := ps.db.Transaction(func(tx *gorm.DB) error {
		var teacher models.Teacher
		if err := tx.First(&teacher, teacherID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &NotFoundError{Entity: "teacher", ID: teacherID}
			}
			return err
		}

		delta := AdjustmentDelta(typ, amount)
		teacher.Earned = ApplyAdjustment(teacher.Earned, delta)
		if err := tx.Save(&teacher).Error; err != nil {
			return err
		}

		txn = models.PaymentTransaction{
			Reference: uuid.New().String(),
			TeacherID: teacherID,
			Amount:    delta,
			Type:      typ,
			Status:    models.TxnPending,
			Notes:     notes,
		}
		return tx.Create(&txn).Error
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// SummaryForTeacher projects pending/paid totals from the ledger instead of
// trusting the teacher's stored counters.
func (ps *PaymentService) SummaryForTeacher(teacherID uint) (*TeacherSummary, error) {
	var teacher models.Teacher
	if err := ps.db.First(&teacher, teacherID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &NotFoundError{Entity: "teacher", ID: teacherID}
		}
		return nil, err
	}

	summary := &TeacherSummary{TeacherID: teacherID}

	rows := []struct {
		Status string
		Total  float64
		Count  int
	}{}
	if err := ps.db.Model(&models.PaymentTransaction{}).
		Select("status, SUM(amount) as total, COUNT(*) as count").
		Where("teacher_id = ? AND status IN ?", teacherID, []string{models.TxnPending, models.TxnPaid}).
		Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		switch r.Status {
		case models.TxnPending:
			summary.PendingAmount = r.Total
			summary.PendingCount = r.Count
		case models.TxnPaid:
			summary.PaidAmount = r.Total
			summary.PaidCount = r.Count
		}
	}
	return summary, nil
}

// ListTransactions returns ledger lines with optional teacher/status filters,
// newest first.
func (ps *PaymentService) ListTransactions(teacherID uint, status string, limit int) ([]models.PaymentTransaction, error) {
	q := ps.db.Model(&models.PaymentTransaction{}).Preload("Teacher").Order("created_at DESC")
	if teacherID != 0 {
		q = q.Where("teacher_id = ?", teacherID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var txns []models.PaymentTransaction
	if err := q.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}
