// Package basal reconstructs the basal insulin actually delivered by
// merging the scheduled time-of-day rates with temporary overrides.
package basal

import (
	"time"

	"github.com/mrcode/nightscout-report/internal/models"
	"github.com/mrcode/nightscout-report/internal/timeline"
)

// Override is one temp-basal interval during which the pump ran at Rate
// instead of the scheduled value. A zero rate is a real suspension, not
// missing data.
type Override struct {
	Start time.Time
	End   time.Time // exclusive
	Rate  float64   // units/hour
}

// Overrides extracts the usable temp-basal intervals from a treatment
// list, in encounter order.
func Overrides(treatments []models.Treatment) []Override {
	var out []Override
	for _, t := range treatments {
		start, end, ok := t.ActiveInterval()
		if !ok {
			continue
		}
		out = append(out, Override{Start: start, End: end, Rate: t.Rate})
	}
	return out
}

// RateAt returns the effective delivered rate in units/hour at instant t:
// the first override covering t wins; otherwise the scheduled rate for
// t's time-of-day applies.
func RateAt(schedule models.BasalSchedule, overrides []Override, t time.Time) float64 {
	for _, o := range overrides {
		if !t.Before(o.Start) && t.Before(o.End) {
			return o.Rate
		}
	}
	return schedule.RateAtMinute(t.Hour()*60 + t.Minute())
}

// DailyTotal integrates the effective rate over one calendar day at
// 1-minute resolution. The discrete sum is intentional: one minute is the
// real pump command granularity and matches how delivered insulin is
// accounted clinically.
func DailyTotal(schedule models.BasalSchedule, overrides []Override, day time.Time) float64 {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	delivered := 0.0
	for min := 0; min < 24*60; min++ {
		ts := start.Add(time.Duration(min) * time.Minute)
		delivered += RateAt(schedule, overrides, ts) / 60 // U/h -> U/min
	}
	return delivered
}

// PeriodAverage returns the average daily delivered basal over every
// calendar day of the period, regardless of whether glucose samples exist
// for those days. The schedule in force is re-selected per day from the
// profile history. Zero days yields 0, never NaN.
func PeriodAverage(profiles []models.Profile, treatments []models.Treatment, period timeline.Period) float64 {
	days := period.Days()
	if len(days) == 0 || len(profiles) == 0 {
		return 0
	}

	all := Overrides(treatments)

	total := 0.0
	for _, day := range days {
		profile := models.ActiveProfile(profiles, day)
		schedule := profile.Schedule()
		if len(schedule) == 0 {
			continue
		}
		dayStart := day
		dayEnd := day.AddDate(0, 0, 1)
		var dayOverrides []Override
		for _, o := range all {
			if o.Start.Before(dayEnd) && !o.Start.Before(dayStart) {
				dayOverrides = append(dayOverrides, o)
			}
		}
		total += DailyTotal(schedule, dayOverrides, day)
	}
	return total / float64(len(days))
}
