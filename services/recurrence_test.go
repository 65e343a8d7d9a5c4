package services

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

func TestGeneratePatternDates(t *testing.T) {
	start := date(2024, time.January, 1, 10, 0) // Monday

	tests := []struct {
		name        string
		frequency   string
		occurrences int
		daysOfWeek  []int
		want        []time.Time
	}{
		{
			name:        "daily",
			frequency:   "daily",
			occurrences: 3,
			want: []time.Time{
				date(2024, time.January, 1, 10, 0),
				date(2024, time.January, 2, 10, 0),
				date(2024, time.January, 3, 10, 0),
			},
		},
		{
			name:        "weekly",
			frequency:   "weekly",
			occurrences: 3,
			want: []time.Time{
				date(2024, time.January, 1, 10, 0),
				date(2024, time.January, 8, 10, 0),
				date(2024, time.January, 15, 10, 0),
			},
		},
		{
			name:        "biweekly",
			frequency:   "biweekly",
			occurrences: 3,
			want: []time.Time{
				date(2024, time.January, 1, 10, 0),
				date(2024, time.January, 15, 10, 0),
				date(2024, time.January, 29, 10, 0),
			},
		},
		{
			name:        "monthly",
			frequency:   "monthly",
			occurrences: 3,
			want: []time.Time{
				date(2024, time.January, 1, 10, 0),
				date(2024, time.February, 1, 10, 0),
				date(2024, time.March, 1, 10, 0),
			},
		},
		{
			name:        "weekly on monday and wednesday",
			frequency:   "weekly",
			occurrences: 4,
			daysOfWeek:  []int{1, 3},
			want: []time.Time{
				date(2024, time.January, 1, 10, 0),
				date(2024, time.January, 3, 10, 0),
				date(2024, time.January, 8, 10, 0),
				date(2024, time.January, 10, 10, 0),
			},
		},
		{
			name:        "weekly on days skips before start",
			frequency:   "weekly",
			occurrences: 3,
			daysOfWeek:  []int{0, 3}, // Sunday of start week is before Monday start
			want: []time.Time{
				date(2024, time.January, 3, 10, 0),
				date(2024, time.January, 7, 10, 0),
				date(2024, time.January, 10, 10, 0),
			},
		},
		{
			name:        "zero occurrences",
			frequency:   "daily",
			occurrences: 0,
			want:        nil,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := GeneratePatternDates(start, tc.frequency, tc.occurrences, tc.daysOfWeek)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d dates, want %d: %v", len(got), len(tc.want), got)
			}
			for i := range got {
				if !got[i].Equal(tc.want[i]) {
					t.Fatalf("date[%d] = %v, want %v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestGeneratePatternDatesSorted(t *testing.T) {
	start := date(2024, time.March, 6, 14, 30) // Wednesday
	got := GeneratePatternDates(start, "weekly", 6, []int{5, 1, 3})
	for i := 1; i < len(got); i++ {
		if !got[i].After(got[i-1]) {
			t.Fatalf("dates not strictly ascending at %d: %v", i, got)
		}
	}
	// Clock time carries through to every occurrence.
	for i, d := range got {
		if d.Hour() != 14 || d.Minute() != 30 {
			t.Fatalf("date[%d] lost time of day: %v", i, d)
		}
	}
}

func TestGeneratePatternDatesMonthlyNormalization(t *testing.T) {
	// Jan 31 + 1 month normalizes past Feb's end, per AddDate semantics.
	start := date(2024, time.January, 31, 9, 0)
	got := GeneratePatternDates(start, "monthly", 2, nil)
	want := date(2024, time.March, 2, 9, 0) // 2024 is a leap year
	if !got[1].Equal(want) {
		t.Fatalf("got %v, want %v", got[1], want)
	}
}

func TestOccurrencesBetween(t *testing.T) {
	start := date(2024, time.January, 1, 10, 0)

	tests := []struct {
		name      string
		end       time.Time
		frequency string
		days      []int
		want      int
	}{
		{name: "two weeks of weekly", end: date(2024, time.January, 15, 10, 0), frequency: "weekly", want: 3},
		{name: "end before start", end: date(2023, time.December, 31, 10, 0), frequency: "daily", want: 0},
		{name: "daily over a week", end: date(2024, time.January, 7, 10, 0), frequency: "daily", want: 7},
		{name: "weekly on days", end: date(2024, time.January, 10, 10, 0), frequency: "weekly", days: []int{1, 3}, want: 4},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := OccurrencesBetween(start, tc.end, tc.frequency, tc.days); got != tc.want {
				t.Fatalf("OccurrencesBetween = %d, want %d", got, tc.want)
			}
		})
	}
}
