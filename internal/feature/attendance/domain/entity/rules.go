package entity

import (
	"math"
	"time"
)

// LateThreshold is the time of day after which a check-in counts as late.
const LateThreshold = 9 * time.Hour

// sinceMidnight returns the wall-clock offset of t from the start of its day.
func sinceMidnight(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(t.Nanosecond())
}

// CheckInStatus returns StatusLate when t is strictly after LateThreshold.
// 09:00:00 is present; 09:00:01 is late.
func CheckInStatus(t time.Time) Status {
	if sinceMidnight(t) > LateThreshold {
		return StatusLate
	}
	return StatusPresent
}

// WorkedHours returns the hours between two HH:mm values, at minute precision.
// A check-out earlier than check-in yields 0.
func WorkedHours(checkIn, checkOut string) (float64, error) {
	in, err := time.Parse(TimeLayout, checkIn)
	if err != nil {
		return 0, err
	}
	out, err := time.Parse(TimeLayout, checkOut)
	if err != nil {
		return 0, err
	}
	minutes := out.Sub(in).Minutes()
	if minutes < 0 {
		return 0, nil
	}
	return minutes / 60, nil
}

// Round2 rounds v to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// IsDate reports whether s is a valid YYYY-MM-DD date.
func IsDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// IsMonth reports whether s is a valid YYYY-MM month.
func IsMonth(s string) bool {
	_, err := time.Parse(MonthLayout, s)
	return err == nil
}
