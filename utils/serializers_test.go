package utils

import (
	"testing"
	"time"
	"tutorlink_go/models"
)

func TestToBookingDTO(t *testing.T) {
	scheduled := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	resolved := time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)

	b := models.Booking{
		BaseModel:         models.BaseModel{ID: 9},
		TeacherID:         2,
		StudentID:         3,
		ClassTitle:        "Conversation practice",
		Topic:             "Travel vocabulary",
		ScheduledTime:     scheduled,
		Duration:          60,
		Status:            models.BookingCompleted,
		CompletedAt:       &resolved,
		DisputeResolution: "approved_teacher",
		DisputeNotes:      "Reviewed the session recording before deciding",
	}

	dto := ToBookingDTO(b)

	if dto.ID != 9 || dto.TeacherID != 2 || dto.StudentID != 3 {
		t.Fatalf("identity fields lost: %+v", dto)
	}
	if dto.Status != models.BookingCompleted {
		t.Fatalf("Status = %q, want %q", dto.Status, models.BookingCompleted)
	}
	if dto.DisputeResolution != "approved_teacher" {
		t.Fatalf("DisputeResolution = %q", dto.DisputeResolution)
	}
	if dto.DisputeNotes != b.DisputeNotes {
		t.Fatalf("DisputeNotes = %q, want %q", dto.DisputeNotes, b.DisputeNotes)
	}
	if dto.CompletedAt == nil || !dto.CompletedAt.Equal(resolved) {
		t.Fatalf("CompletedAt = %v, want %v", dto.CompletedAt, resolved)
	}
}

func TestToTeacherShort(t *testing.T) {
	short := ToTeacherShort(models.Teacher{
		BaseModel:        models.BaseModel{ID: 4},
		FirstName:        "Daniel",
		RatePerClass:     350,
		LessonsCompleted: 2,
		Earned:           700,
		Active:           true,
	})

	if short.ID != 4 || short.RatePerClass != 350 || short.Earned != 700 || short.LessonsCompleted != 2 {
		t.Fatalf("unexpected mapping: %+v", short)
	}
}
