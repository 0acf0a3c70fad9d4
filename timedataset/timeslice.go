package timedataset

import (
	"time"
)

type TimeSlice []time.Time

func (t TimeSlice) EndTime() time.Time {
	var lastTime time.Time
	if len(t) < 1 {
		return lastTime
	}

	lastTime = t[len(t)-1]
	return lastTime
}

// MonthStart maps a time to the first day of its calendar month, as read in the time's own
// location, stamped in UTC
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths steps a month start forward by n calendar months. Unlike time.AddDate this
// never overflows into a following month.
func AddMonths(t time.Time, n int) time.Time {
	start := MonthStart(t)
	return time.Date(start.Year(), start.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
}

// MonthRange returns n contiguous month starts beginning at the month of start
func MonthRange(start time.Time, n int) TimeSlice {
	if n <= 0 {
		return TimeSlice{}
	}
	res := make(TimeSlice, 0, n)
	for i := 0; i < n; i++ {
		res = append(res, AddMonths(start, i))
	}
	return res
}

// MonthsBetween counts calendar months from a to b, negative when b is before a. Each month
// is read in its time's own location.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
