package timeline

import (
	"sort"
	"time"

	"github.com/mrcode/nightscout-report/internal/models"
)

// Day groups the entries and treatments of one calendar day.
type Day struct {
	Key        string // "YYYY-MM-DD", local time
	Date       time.Time
	Entries    []models.GlucoseEntry
	Treatments []models.Treatment
}

// Series is the normalized view of one query period: window-filtered,
// validated, day-partitioned. It is a pure projection of the inputs;
// building it has no side effects.
type Series struct {
	Period     Period
	Entries    []models.GlucoseEntry // valid readings inside the window, ascending
	Values     []float64             // the readings of Entries, same order
	Treatments []models.Treatment    // all treatments inside the window, ascending
	Days       []Day                 // calendar days with at least one entry or treatment
}

// DaysEvaluated counts the distinct calendar days with at least one valid
// glucose reading.
func (s *Series) DaysEvaluated() int {
	n := 0
	for _, d := range s.Days {
		if len(d.Entries) > 0 {
			n++
		}
	}
	return n
}

// Normalize filters raw entries and treatments to the period, drops
// entries that fail numeric validation, sorts both collections and
// partitions them by local calendar day.
func Normalize(entries []models.GlucoseEntry, treatments []models.Treatment, period Period) *Series {
	s := &Series{Period: period}

	for _, e := range entries {
		if !e.IsValid() || !period.Contains(e.Time()) {
			continue
		}
		s.Entries = append(s.Entries, e)
	}
	sort.Slice(s.Entries, func(i, j int) bool {
		return s.Entries[i].Date < s.Entries[j].Date
	})

	s.Values = make([]float64, len(s.Entries))
	for i, e := range s.Entries {
		s.Values[i] = e.ValueMgDL()
	}

	for _, t := range treatments {
		ts := t.Time()
		if ts.IsZero() || !period.Contains(ts) {
			continue
		}
		s.Treatments = append(s.Treatments, t)
	}
	sort.Slice(s.Treatments, func(i, j int) bool {
		return s.Treatments[i].Time().Before(s.Treatments[j].Time())
	})

	s.Days = partition(s.Entries, s.Treatments)
	return s
}

// partition buckets entries and treatments by local calendar day.
func partition(entries []models.GlucoseEntry, treatments []models.Treatment) []Day {
	byKey := make(map[string]*Day)

	dayFor := func(t time.Time) *Day {
		key := t.Format(dayFormat)
		d, ok := byKey[key]
		if !ok {
			d = &Day{Key: key, Date: midnight(t)}
			byKey[key] = d
		}
		return d
	}

	for _, e := range entries {
		d := dayFor(e.Time())
		d.Entries = append(d.Entries, e)
	}
	for _, t := range treatments {
		d := dayFor(t.Time())
		d.Treatments = append(d.Treatments, t)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	days := make([]Day, 0, len(keys))
	for _, k := range keys {
		days = append(days, *byKey[k])
	}
	return days
}

// DedupeCarbs collapses carb-carrying treatments that share a dedupe
// identifier down to their first occurrence in encounter order; carbs
// attached to several linked records must only be counted once.
// Treatments without an identifier are kept as-is, each being its own
// logical entry.
func DedupeCarbs(treatments []models.Treatment) []models.Treatment {
	seen := make(map[string]bool)
	out := make([]models.Treatment, 0, len(treatments))
	for _, t := range treatments {
		if t.HasCarbs() && t.Identifier != "" {
			if seen[t.Identifier] {
				continue
			}
			seen[t.Identifier] = true
		}
		out = append(out, t)
	}
	return out
}
