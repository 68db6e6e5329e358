package stats

import (
	"math"
	"sort"

	"github.com/mrcode/nightscout-report/internal/models"
)

// BinCount is the number of 5-minute slots in a day.
const BinCount = 288

// Curve is an ambulatory glucose profile: per-slot percentile bands and
// mean over every reading in the period, folded onto a single day.
// Slots with N == 0 carry zero values and must be skipped by renderers.
type Curve struct {
	N    [BinCount]int
	Mean [BinCount]float64
	P10  [BinCount]float64
	P25  [BinCount]float64
	P75  [BinCount]float64
	P90  [BinCount]float64
}

// AggregateCurve folds entries into 5-minute-of-day bins and computes
// nearest-rank percentiles per bin. Invalid entries are skipped.
func AggregateCurve(entries []models.GlucoseEntry) *Curve {
	bins := make([][]float64, BinCount)
	for _, e := range entries {
		if !e.IsValid() {
			continue
		}
		t := e.Time()
		idx := (t.Hour()*60 + t.Minute()) / 5
		if idx < 0 || idx >= BinCount {
			continue
		}
		bins[idx] = append(bins[idx], e.ValueMgDL())
	}

	c := &Curve{}
	for i, vals := range bins {
		c.N[i] = len(vals)
		if len(vals) == 0 {
			continue
		}
		sort.Float64s(vals)
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		c.Mean[i] = sum / float64(len(vals))
		c.P10[i] = percentile(vals, 0.10)
		c.P25[i] = percentile(vals, 0.25)
		c.P75[i] = percentile(vals, 0.75)
		c.P90[i] = percentile(vals, 0.90)
	}
	return c
}

// percentile picks the floor(n*p) element of a sorted slice, clamped to
// the last index. With a single sample every percentile is that sample.
func percentile(sorted []float64, p float64) float64 {
	idx := int(math.Floor(float64(len(sorted)) * p))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
