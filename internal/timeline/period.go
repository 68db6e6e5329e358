// Package timeline aligns raw glucose entries and treatment events onto a
// common, day-partitioned timeline for a query period.
package timeline

import "time"

const dayFormat = "2006-01-02"

// Period is the queried time window, inclusive on both ends. It drives
// all filtering; everything outside it is discarded before computation.
type Period struct {
	From time.Time
	To   time.Time
}

// NewPeriodMillis builds a period from epoch-millisecond bounds.
func NewPeriodMillis(fromMillis, toMillis int64) Period {
	return Period{From: time.UnixMilli(fromMillis), To: time.UnixMilli(toMillis)}
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.From) && !t.After(p.To)
}

// DayCount returns the number of calendar days the period spans,
// inclusive, in local time. An inverted period counts zero days.
func (p Period) DayCount() int {
	from := midnight(p.From)
	to := midnight(p.To)
	if to.Before(from) {
		return 0
	}
	// Count by stepping calendar days so DST transitions don't skew the
	// division.
	n := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// Days returns the midnight of every calendar day in the period, ascending.
func (p Period) Days() []time.Time {
	from := midnight(p.From)
	to := midnight(p.To)
	if to.Before(from) {
		return nil
	}
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
