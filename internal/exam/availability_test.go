package exam

import (
	"testing"
	"time"
)

func TestWindowEnd(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	test := Test{ScheduledStart: start, DurationMinutes: 60}
	want := start.Add(60 * time.Minute)
	if got := WindowEnd(test); !got.Equal(want) {
		t.Fatalf("WindowEnd() = %v, want %v", got, want)
	}
}

func TestIsActive(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	test := Test{ScheduledStart: start, DurationMinutes: 60}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before start", start.Add(-time.Second), false},
		{"at start", start, true},
		{"mid window", start.Add(30 * time.Minute), true},
		{"at window end", start.Add(60 * time.Minute), true},
		{"after window end", start.Add(60*time.Minute + time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsActive(test, tt.now); got != tt.want {
				t.Errorf("IsActive(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}
