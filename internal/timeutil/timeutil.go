package timeutil

import (
	"fmt"
	"math"
	"time"
)

// Zone converts between the storage zone (UTC) and a fixed-offset local zone.
// The offset is fixed on purpose: the deployment site runs on AEST (UTC+10)
// year-round with no daylight saving.
type Zone struct {
	loc *time.Location
}

// NewZone builds a fixed-offset zone from an offset in minutes east of UTC.
func NewZone(offsetMinutes int) Zone {
	name := fmt.Sprintf("UTC%+03d:%02d", offsetMinutes/60, abs(offsetMinutes)%60)
	return Zone{loc: time.FixedZone(name, offsetMinutes*60)}
}

// ToLocal converts a stored UTC instant into the local zone.
func (z Zone) ToLocal(t time.Time) time.Time {
	return t.In(z.loc)
}

// ToUTC converts a local instant into the storage zone.
func (z Zone) ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// ExpectedAt places a fractional-hour schedule time on the local calendar
// date of ref. ref must already be in the local zone.
func (z Zone) ExpectedAt(ref time.Time, fracHour float64) time.Time {
	h, m := FracHour(fracHour)
	return time.Date(ref.Year(), ref.Month(), ref.Day(), h, m, 0, 0, z.loc)
}

// FracHour splits a fractional hour into hour and minute: 9.5 -> 9:30,
// 9.25 -> 9:15. Rounding that lands on minute 60 carries into the hour.
func FracHour(f float64) (hour, minute int) {
	hour = int(f)
	minute = int(math.Round((f - float64(hour)) * 60))
	if minute >= 60 {
		hour++
		minute = 0
	}
	return hour, minute
}

// RoundMinutes rounds a duration to minutes with two decimal places, the
// precision the attendance record stores for lateness.
func RoundMinutes(d time.Duration) float64 {
	return math.Round(d.Minutes()*100) / 100
}

// FormatDuration formats a duration as "1h 40m", "45m" or "30s" for CLI
// output.
func FormatDuration(d time.Duration) string {
	s := int64(d.Seconds())
	h := s / 3600
	m := (s % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s%60)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
