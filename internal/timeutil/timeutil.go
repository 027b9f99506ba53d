package timeutil

import "time"

// DateLayout and TimeLayout are the wire formats for calendar dates and
// times of day across the API (ISO date, 24-hour clock).
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Location is the hostel's civil timezone. Every timestamp in the system
// is recorded in this zone, not UTC, so that overdue comparisons line up
// with what on-site staff see on the clock.
var Location = loadLocation()

func loadLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Static fallback for containers without tzdata
		return time.FixedZone("IST", 5*3600+30*60)
	}
	return loc
}

// Clock supplies the current time to guard and overdue logic. Production
// code uses SystemClock; tests inject a fixed clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in the hostel timezone.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().In(Location)
}

// Now returns the current time in the hostel timezone.
func Now() time.Time {
	return SystemClock{}.Now()
}

// ParseDate parses an ISO calendar date in the hostel timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, Location)
}

// ParseTimeOfDay parses a 24-hour HH:MM time of day.
func ParseTimeOfDay(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s, Location)
}

// Combine merges a calendar date and a time of day into one instant in
// the hostel timezone.
func Combine(date, timeOfDay time.Time) time.Time {
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		timeOfDay.Hour(), timeOfDay.Minute(), 0, 0,
		Location,
	)
}

// StartOfDay truncates an instant to midnight in the hostel timezone.
func StartOfDay(t time.Time) time.Time {
	t = t.In(Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location)
}
