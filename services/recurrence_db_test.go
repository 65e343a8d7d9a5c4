package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// Deleting a pattern must hard-delete its member bookings and the pattern
// row itself, not soft-delete or merely cancel them.
func TestDeletePatternHardDeletesBookings(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `recurring_patterns`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "teacher_id", "student_id", "status"}).
			AddRow(7, 1, 1, "active"))
	mock.ExpectExec("DELETE FROM `bookings`").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("DELETE FROM `recurring_patterns`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := NewRecurrenceServiceWithDB(db).DeletePattern(7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeletePatternNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `recurring_patterns`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := NewRecurrenceServiceWithDB(db).DeletePattern(99)
	if _, ok := err.(*NotFoundError); !ok {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
