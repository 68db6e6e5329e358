// Package stats derives clinical metrics from a normalized glucose and
// treatment series. Every function is pure: same inputs, same outputs,
// no shared state.
package stats

import (
	"fmt"
	"math"
	"strings"

	"github.com/mrcode/nightscout-report/internal/models"
	"github.com/mrcode/nightscout-report/internal/timeline"
)

// Compute derives the full statistics set for one period. basalPerDay is
// the reconstructed average daily delivered basal (see the basal
// package); it is computed from the schedule and overrides, not from
// sample presence, so it is passed in rather than derived here.
func Compute(series *timeline.Series, basalPerDay float64) *models.DerivedStatistics {
	out := &models.DerivedStatistics{
		DaysEvaluated:    series.DaysEvaluated(),
		MeasurementCount: len(series.Values),
		BasalPerDay:      basalPerDay,
	}

	out.PumpChanges = countEventType(series.Treatments, "site change")
	out.SensorChanges = countEventType(series.Treatments, "sensor change")

	values := series.Values
	n := len(values)

	var below, in, high, veryHigh int
	for _, v := range values {
		switch {
		case v < 70:
			below++
		case v <= 180:
			in++
		case v <= 240:
			high++
		default:
			veryHigh++
		}
	}
	out.Below70 = bucket(below, n)
	out.InRange = bucket(in, n)
	out.High = bucket(high, n)
	out.VeryHigh = bucket(veryHigh, n)

	if n > 0 {
		out.HasData = true
		out.Min = values[0]
		out.Max = values[0]
		sum := 0.0
		for _, v := range values {
			if v < out.Min {
				out.Min = v
			}
			if v > out.Max {
				out.Max = v
			}
			sum += v
		}
		out.Mean = sum / float64(n)

		sumSq := 0.0
		for _, v := range values {
			diff := v - out.Mean
			sumSq += diff * diff
		}
		// Population standard deviation: divide by N, not N-1.
		out.StdDev = math.Sqrt(sumSq / float64(n))
	}

	if out.Mean > 0 {
		out.GVI = (out.StdDev / out.Mean) * 100
		out.HbA1c = fmt.Sprintf("%.1f", (out.Mean+46.7)/28.7)
	} else {
		out.HbA1c = "-"
	}

	out.PGS = patientGlycemicStatus(values, out.Mean, out.StdDev)

	// Treatment averages. Days defaults to 1 so empty periods degrade to
	// plain totals instead of dividing by zero.
	days := out.DaysEvaluated
	if days == 0 {
		days = 1
	}
	deduped := timeline.DedupeCarbs(series.Treatments)
	totalCarbs := 0.0
	totalBolus := 0.0
	for _, t := range deduped {
		if t.HasCarbs() {
			totalCarbs += t.Carbs
		}
	}
	for _, t := range series.Treatments {
		if t.IsBolus() {
			totalBolus += t.Insulin
		}
	}
	out.CarbsPerDay = totalCarbs / float64(days)
	out.BolusPerDay = totalBolus / float64(days)
	out.TotalInsulinPerDay = out.BolusPerDay + out.BasalPerDay

	return out
}

// bucket builds a range bucket with its independently-rounded percentage.
// An empty series yields 0%, never NaN.
func bucket(count, total int) models.RangeBucket {
	b := models.RangeBucket{Count: count}
	if total > 0 {
		b.Percent = int(math.Round(float64(count) / float64(total) * 100))
	}
	return b
}

// countEventType counts treatments whose raw event type contains the
// given fragment, case-insensitively. Device changes are only ever
// recorded as free text, so this is a substring match by design of the
// upstream data.
func countEventType(treatments []models.Treatment, fragment string) int {
	n := 0
	for _, t := range treatments {
		if strings.Contains(strings.ToLower(t.EventType), fragment) {
			n++
		}
	}
	return n
}

// patientGlycemicStatus computes the composite 0-5 PGS score from five
// threshold-ladder sub-scores, with time-in-range weighted double:
// (tir*2 + tar + tbr + cv + mean) / 6.
func patientGlycemicStatus(values []float64, mean, stdev float64) float64 {
	n := len(values)
	if n == 0 || mean <= 0 {
		return 0
	}

	var inRange, above, below int
	for _, v := range values {
		switch {
		case v < 70:
			below++
		case v <= 180:
			inRange++
		default:
			above++
		}
	}

	tir := float64(inRange) / float64(n) * 100
	tar := float64(above) / float64(n) * 100
	tbr := float64(below) / float64(n) * 100
	cv := stdev / mean * 100

	tirScore := ladderDesc(tir, 70, 55, 40, 25, 10)
	tarScore := ladderAsc(tar, 25, 40, 55, 70, 90)
	tbrScore := ladderAsc(tbr, 4, 10, 15, 25, 40)
	cvScore := ladderAsc(cv, 25, 33, 40, 50, 60)
	meanScore := ladderAsc(mean, 120, 145, 170, 200, 250)

	return (tirScore*2 + tarScore + tbrScore + cvScore + meanScore) / 6
}

// ladderDesc scores 5..1 for v >= each threshold in order, 0 below all.
func ladderDesc(v float64, thresholds ...float64) float64 {
	for i, th := range thresholds {
		if v >= th {
			return float64(5 - i)
		}
	}
	return 0
}

// ladderAsc scores 5..1 for v < each threshold in order, 0 above all.
func ladderAsc(v float64, thresholds ...float64) float64 {
	for i, th := range thresholds {
		if v < th {
			return float64(5 - i)
		}
	}
	return 0
}
