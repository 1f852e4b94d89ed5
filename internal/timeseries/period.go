package timeseries

import "time"

// MonthEnd returns the last day of t's calendar month at midnight UTC.
func MonthEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// NextMonthEnd returns the last day of the month after t's month.
func NextMonthEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+2, 0, 0, 0, 0, 0, time.UTC)
}

// MonthKey identifies a calendar month ("2017-01").
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// MonthsBetween counts calendar months from a to b (negative when b is earlier).
func MonthsBetween(a, b time.Time) int {
	a, b = a.UTC(), b.UTC()
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
