package timeutil

import (
	"testing"
	"time"
)

func TestNow_AlwaysUTC(t *testing.T) {
	now := Now()

	if now.Location() != time.UTC {
		t.Errorf("Now() returned non-UTC timezone: %v", now.Location())
	}
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2006-01-02", "2025-11-20")
	if err != nil {
		t.Fatalf("ParseDate() error: %v", err)
	}

	expected := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	if !parsed.Equal(expected) {
		t.Errorf("ParseDate() = %v, want %v", parsed, expected)
	}

	if parsed.Location() != time.UTC {
		t.Errorf("ParseDate() returned non-UTC: %v", parsed.Location())
	}

	if _, err := ParseDate("2006-01-02", "not-a-date"); err == nil {
		t.Error("ParseDate() accepted malformed input")
	}
}

func TestEndOfDay(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{
			name:     "midnight UTC",
			input:    time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC),
			expected: "2025-11-20 23:59:59.999999999 +0000 UTC",
		},
		{
			name:     "noon UTC",
			input:    time.Date(2025, 11, 20, 12, 30, 45, 0, time.UTC),
			expected: "2025-11-20 23:59:59.999999999 +0000 UTC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EndOfDay(tt.input)

			if result.String() != tt.expected {
				t.Errorf("EndOfDay() = %v, want %v", result, tt.expected)
			}

			if result.Location() != time.UTC {
				t.Errorf("EndOfDay() returned non-UTC: %v", result.Location())
			}
		})
	}
}

func TestSystemClock_NowIsUTC(t *testing.T) {
	now := SystemClock{}.Now()

	if now.Location() != time.UTC {
		t.Errorf("SystemClock.Now() returned non-UTC: %v", now.Location())
	}
}
