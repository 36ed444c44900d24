package services

import "time"

const DateLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
}

// SystemClock reports wall time in the restaurant's time zone.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Today is the current calendar day of c.
func Today(c Clock) string {
	return c.Now().Format(DateLayout)
}

func currentMonth(now time.Time) string {
	return now.Format("2006-01")
}
