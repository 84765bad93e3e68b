package timeutil_test

import (
	"testing"
	"time"

	"github.com/balkashynov/punchd/internal/timeutil"
)

func TestFracHour(t *testing.T) {
	tests := []struct {
		frac   float64
		hour   int
		minute int
	}{
		{9.0, 9, 0},
		{9.5, 9, 30},
		{9.25, 9, 15},
		{8.75, 8, 45},
		{9.999, 10, 0}, // rounds to minute 60, carries
		{0, 0, 0},
	}
	for _, tt := range tests {
		h, m := timeutil.FracHour(tt.frac)
		if h != tt.hour || m != tt.minute {
			t.Errorf("FracHour(%v) = %d:%02d, want %d:%02d", tt.frac, h, m, tt.hour, tt.minute)
		}
	}
}

func TestZoneToLocal(t *testing.T) {
	zone := timeutil.NewZone(10 * 60)
	utc := time.Date(2026, 3, 2, 23, 20, 0, 0, time.UTC)
	local := zone.ToLocal(utc)

	if local.Hour() != 9 || local.Minute() != 20 {
		t.Errorf("ToLocal = %s, want 09:20", local.Format("15:04"))
	}
	if local.Weekday() != time.Tuesday {
		t.Errorf("ToLocal weekday = %s, want Tuesday", local.Weekday())
	}
	if !zone.ToUTC(local).Equal(utc) {
		t.Errorf("ToUTC did not round-trip: %s", zone.ToUTC(local))
	}
}

func TestExpectedAt(t *testing.T) {
	zone := timeutil.NewZone(10 * 60)
	local := zone.ToLocal(time.Date(2026, 3, 2, 23, 20, 0, 0, time.UTC)) // Tue 09:20 local

	expected := zone.ExpectedAt(local, 9.5)
	if expected.Hour() != 9 || expected.Minute() != 30 {
		t.Errorf("ExpectedAt = %s, want 09:30", expected.Format("15:04"))
	}
	if expected.Day() != local.Day() {
		t.Errorf("ExpectedAt day = %d, want %d", expected.Day(), local.Day())
	}
}

func TestRoundMinutes(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want float64
	}{
		{20 * time.Minute, 20.00},
		{15*time.Minute + 30*time.Second, 15.50},
		{20*time.Minute + 20*time.Second, 20.33},
	}
	for _, tt := range tests {
		if got := timeutil.RoundMinutes(tt.d); got != tt.want {
			t.Errorf("RoundMinutes(%s) = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{90 * time.Minute, "1h 30m"},
	}
	for _, tt := range tests {
		if got := timeutil.FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
