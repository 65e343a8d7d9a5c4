package services

import (
	"testing"
	"tutorlink_go/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{name: "pending to accepted", from: models.BookingPending, to: models.BookingAccepted, allowed: true},
		{name: "pending to rejected", from: models.BookingPending, to: models.BookingRejected, allowed: true},
		{name: "pending to cancelled", from: models.BookingPending, to: models.BookingCancelled, allowed: true},
		{name: "pending to completed", from: models.BookingPending, to: models.BookingCompleted, allowed: true},
		{name: "accepted to completed", from: models.BookingAccepted, to: models.BookingCompleted, allowed: true},
		{name: "accepted to disputed", from: models.BookingAccepted, to: models.BookingDisputed, allowed: true},
		{name: "accepted back to pending", from: models.BookingAccepted, to: models.BookingPending, allowed: true},
		{name: "completed reversal to accepted", from: models.BookingCompleted, to: models.BookingAccepted, allowed: true},
		{name: "disputed to completed", from: models.BookingDisputed, to: models.BookingCompleted, allowed: true},
		{name: "disputed to cancelled", from: models.BookingDisputed, to: models.BookingCancelled, allowed: true},
		{name: "completed to cancelled", from: models.BookingCompleted, to: models.BookingCancelled, allowed: false},
		{name: "completed to disputed", from: models.BookingCompleted, to: models.BookingDisputed, allowed: false},
		{name: "cancelled is terminal", from: models.BookingCancelled, to: models.BookingPending, allowed: false},
		{name: "rejected is terminal", from: models.BookingRejected, to: models.BookingAccepted, allowed: false},
		{name: "pending to disputed", from: models.BookingPending, to: models.BookingDisputed, allowed: false},
		{name: "disputed to pending", from: models.BookingDisputed, to: models.BookingPending, allowed: false},
		{name: "unknown status", from: "nonsense", to: models.BookingAccepted, allowed: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransition(tc.from, tc.to); got != tc.allowed {
				t.Fatalf("CanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.allowed)
			}
		})
	}
}

func TestPlanCompletion(t *testing.T) {
	tests := []struct {
		name           string
		credits        int
		rate           float64
		clamp          bool
		wantCredits    int
		wantClamped    bool
		wantDeactivate bool
	}{
		{name: "normal deduction", credits: 5, rate: 350, clamp: true, wantCredits: 4},
		{name: "last credit deactivates", credits: 1, rate: 350, clamp: true, wantCredits: 0, wantDeactivate: true},
		{name: "zero credits clamps", credits: 0, rate: 350, clamp: true, wantCredits: 0, wantClamped: true, wantDeactivate: true},
		{name: "no clamp goes negative", credits: 0, rate: 350, clamp: false, wantCredits: -1},
		{name: "no clamp normal", credits: 3, rate: 500, clamp: false, wantCredits: 2},
		{name: "no clamp never deactivates", credits: 1, rate: 500, clamp: false, wantCredits: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := PlanCompletion(tc.credits, tc.rate, tc.clamp)
			if got.StudentCredits != tc.wantCredits {
				t.Fatalf("StudentCredits = %d, want %d", got.StudentCredits, tc.wantCredits)
			}
			if got.StudentClamped != tc.wantClamped {
				t.Fatalf("StudentClamped = %v, want %v", got.StudentClamped, tc.wantClamped)
			}
			if got.DeactivateStudent != tc.wantDeactivate {
				t.Fatalf("DeactivateStudent = %v, want %v", got.DeactivateStudent, tc.wantDeactivate)
			}
			if got.TeacherEarnedAdd != tc.rate {
				t.Fatalf("TeacherEarnedAdd = %v, want %v", got.TeacherEarnedAdd, tc.rate)
			}
		})
	}
}

// A mark followed by its reversal must restore the student balance exactly
// when no clamping occurred.
func TestPlanCompletionReversible(t *testing.T) {
	for credits := 1; credits <= 10; credits++ {
		effects := PlanCompletion(credits, 400, true)
		if effects.StudentClamped {
			continue
		}
		restored := effects.StudentCredits + 1
		if restored != credits {
			t.Fatalf("credits %d: restore gives %d", credits, restored)
		}
	}
}
