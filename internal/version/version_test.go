package version

import (
	"strings"
	"testing"
)

func TestCalculateBuildID(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		expected  int
		wantError bool
	}{
		{
			name:     "epoch date",
			date:     "2026-01-01",
			expected: 0,
		},
		{
			name:     "next day after epoch",
			date:     "2026-01-02",
			expected: 1,
		},
		{
			name:     "one year later",
			date:     "2027-01-01",
			expected: 365,
		},
		{
			name:     "date with leap years included",
			date:     "2033-01-01",
			expected: 2557,
		},
		{
			name:      "invalid format",
			date:      "invalid",
			wantError: true,
		},
		{
			name:      "empty date",
			date:      "",
			wantError: true,
		},
		{
			name:      "before epoch",
			date:      "2025-12-31",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := BuildDate
			defer func() { BuildDate = old }()

			BuildDate = tt.date

			got, err := CalculateBuildID()

			if tt.wantError {
				if err == nil {
					t.Fatalf("expected error, got nil (id=%d)", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.expected {
				t.Errorf("CalculateBuildID() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestString(t *testing.T) {
	old, oldCommit := BuildDate, BuildCommit
	defer func() { BuildDate, BuildCommit = old, oldCommit }()

	BuildDate, BuildCommit = "", ""
	if s := String(); !strings.HasPrefix(s, "geballer-core build unknown") {
		t.Errorf("String() = %q", s)
	}

	BuildDate, BuildCommit = "2026-01-11", "abc123"
	s := String()
	if !strings.Contains(s, "build 10 (2026-01-11)") || !strings.Contains(s, "commit[abc123]") {
		t.Errorf("String() = %q", s)
	}
	if info := Info(); info.Name != Name || !info.Calculated {
		t.Errorf("Info() = %+v", info)
	}
}
