package utils

import "testing"

func TestValidateStruct(t *testing.T) {
	type req struct {
		Title    string `validate:"required,max=10"`
		Status   string `validate:"required,oneof=pending accepted"`
		Duration int    `validate:"min=15"`
	}

	tests := []struct {
		name      string
		input     req
		wantErrs  int
		wantField string
	}{
		{
			name:     "valid",
			input:    req{Title: "Math", Status: "pending", Duration: 60},
			wantErrs: 0,
		},
		{
			name:      "missing title",
			input:     req{Status: "pending", Duration: 60},
			wantErrs:  1,
			wantField: "title",
		},
		{
			name:      "bad status",
			input:     req{Title: "Math", Status: "done", Duration: 60},
			wantErrs:  1,
			wantField: "status",
		},
		{
			name:      "duration too short",
			input:     req{Title: "Math", Status: "accepted", Duration: 5},
			wantErrs:  1,
			wantField: "duration",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidateStruct(tc.input)
			if len(errs) != tc.wantErrs {
				t.Fatalf("got %d errors, want %d: %v", len(errs), tc.wantErrs, errs)
			}
			if tc.wantErrs > 0 && errs[0].Field != tc.wantField {
				t.Fatalf("field = %q, want %q", errs[0].Field, tc.wantField)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world  "); got != "helloworld" {
		t.Fatalf("got %q", got)
	}
}

func TestIsValidFrequency(t *testing.T) {
	for _, f := range []string{"daily", "weekly", "biweekly", "monthly"} {
		if !IsValidFrequency(f) {
			t.Fatalf("%q should be valid", f)
		}
	}
	if IsValidFrequency("yearly") {
		t.Fatalf("yearly should be invalid")
	}
}
