package services

import (
	"testing"
	"tutorlink_go/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestAdjustmentDelta(t *testing.T) {
	tests := []struct {
		name   string
		typ    string
		amount float64
		want   float64
	}{
		{name: "bonus stays positive", typ: models.TxnBonus, amount: 50, want: 50},
		{name: "manual adjustment stays positive", typ: models.TxnManualAdjustment, amount: 75, want: 75},
		{name: "deduction is signed negative", typ: models.TxnDeduction, amount: 50, want: -50},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := AdjustmentDelta(tc.typ, tc.amount); got != tc.want {
				t.Fatalf("AdjustmentDelta(%q, %v) = %v, want %v", tc.typ, tc.amount, got, tc.want)
			}
		})
	}
}

func TestApplyAdjustment(t *testing.T) {
	tests := []struct {
		name   string
		earned float64
		delta  float64
		want   float64
	}{
		{name: "bonus adds", earned: 0, delta: 100, want: 100},
		{name: "deduction subtracts", earned: 350, delta: -50, want: 300},
		{name: "deduction floors at zero", earned: 30, delta: -50, want: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := ApplyAdjustment(tc.earned, tc.delta); got != tc.want {
				t.Fatalf("ApplyAdjustment(%v, %v) = %v, want %v", tc.earned, tc.delta, got, tc.want)
			}
		})
	}
}

// A class accrual followed by a deduction must leave the sum of pending
// ledger amounts equal to the earned balance, so a bulk settlement pays
// exactly what is owed.
func TestAdjustmentLedgerAlignment(t *testing.T) {
	earned := ApplyAdjustment(0, 350)
	deduction := AdjustmentDelta(models.TxnDeduction, 50)
	earned = ApplyAdjustment(earned, deduction)

	pendingSum := 350 + deduction

	if earned != 300 {
		t.Fatalf("earned = %v, want 300", earned)
	}
	if pendingSum != earned {
		t.Fatalf("pending ledger sum %v diverges from earned %v", pendingSum, earned)
	}
}

// Bulk settlement nets deductions into the payout total and resets the
// teacher's accrued counters in the same transaction.
func TestPayAllNetsDeductionsAndResetsCounters(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `teachers`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "rate_per_class", "lessons_completed", "earned", "active"}).
			AddRow(3, 2, 350.0, 1, 300.0, true))
	mock.ExpectQuery("SELECT (.+) FROM `payment_transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "teacher_id", "amount", "type", "status"}).
			AddRow(10, 3, 350.0, models.TxnClassCompletion, models.TxnPending).
			AddRow(11, 3, -50.0, models.TxnDeduction, models.TxnPending))
	mock.ExpectExec("UPDATE `payment_transactions`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE `teachers`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := NewPaymentServiceWithDB(db).PayAllForTeacher(3, 1, "bank_transfer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalAmount != 300 {
		t.Fatalf("TotalAmount = %v, want 300", result.TotalAmount)
	}
	if result.TransactionCount != 2 {
		t.Fatalf("TransactionCount = %d, want 2", result.TransactionCount)
	}
	if result.Teacher.Earned != 0 || result.Teacher.LessonsCompleted != 0 {
		t.Fatalf("counters not reset: earned=%v lessons=%d", result.Teacher.Earned, result.Teacher.LessonsCompleted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
