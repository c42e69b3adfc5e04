package clock

import "time"

// Clock supplies the current time. Production code uses System; tests
// substitute a fixed implementation.
type Clock interface {
	Now() time.Time
}

// System is the wall clock, normalized to UTC.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always returns the same instant. Test helper.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}

// In shifts t into the user's fixed-offset zone. offsetMinutes is minutes
// east of UTC (e.g. -300 for New York in winter).
func In(t time.Time, offsetMinutes int) time.Time {
	return t.In(time.FixedZone("user", offsetMinutes*60))
}

// DayKey returns the calendar-day identifier for t in the user's zone.
// Spend records are partitioned by this key, so the daily counter resets
// at the user's midnight without any scheduled job.
func DayKey(t time.Time, offsetMinutes int) string {
	return In(t, offsetMinutes).Format("2006-01-02")
}

// LocalHour returns the hour of day (0-23) for t in the user's zone.
func LocalHour(t time.Time, offsetMinutes int) int {
	return In(t, offsetMinutes).Hour()
}
