package timezone

import "time"

// NowIn returns the current time in the clinic's timezone, falling back to
// UTC when the name does not resolve.
func NowIn(tz string) time.Time {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Now().UTC()
	}
	return time.Now().In(loc)
}

// DayBounds returns the [start, end) of the calendar day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
