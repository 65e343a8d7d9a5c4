package services

import "testing"

func TestRequiredSeconds(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		want     int
	}{
		{name: "hour class", duration: 60, want: 2988},
		{name: "half hour class", duration: 30, want: 1494},
		{name: "45 minute class", duration: 45, want: 2241},
		{name: "90 minute class", duration: 90, want: 4482},
		{name: "odd duration floors", duration: 25, want: 1245},
		{name: "zero duration", duration: 0, want: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := RequiredSeconds(tc.duration); got != tc.want {
				t.Fatalf("RequiredSeconds(%d) = %d, want %d", tc.duration, got, tc.want)
			}
		})
	}
}

func TestJointPresence(t *testing.T) {
	tests := []struct {
		name    string
		teacher int
		student int
		want    int
	}{
		{name: "both zero", teacher: 0, student: 0, want: 0},
		{name: "only teacher present", teacher: 1200, student: 0, want: 0},
		{name: "only student present", teacher: 0, student: 900, want: 0},
		{name: "teacher lower", teacher: 1500, student: 2988, want: 1500},
		{name: "student lower", teacher: 3600, student: 2987, want: 2987},
		{name: "equal counters", teacher: 2988, student: 2988, want: 2988},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := JointPresence(tc.teacher, tc.student); got != tc.want {
				t.Fatalf("JointPresence(%d, %d) = %d, want %d", tc.teacher, tc.student, got, tc.want)
			}
		})
	}
}

// The completion threshold is a strict >= comparison at exactly 83%.
func TestCompletionBoundary(t *testing.T) {
	required := RequiredSeconds(60)

	if required != 2988 {
		t.Fatalf("expected 2988s for a 60 minute class, got %d", required)
	}
	if 2987 >= required {
		t.Fatalf("one second short must not satisfy the threshold")
	}
	if !(2988 >= required) {
		t.Fatalf("exact threshold must satisfy completion")
	}
}
