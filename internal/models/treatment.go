// Package models contains data structures used throughout the application
package models

import (
	"strings"
	"time"
)

// EventKind is the closed set of treatment categories the core reasons
// about. The free-text eventType strings coming off the wire are mapped
// into it exactly once, in KindOf.
type EventKind int

const (
	KindOther EventKind = iota
	KindMealBolus
	KindCorrectionBolus
	KindTempBasal
	KindCarbIntake
	KindSiteChange
	KindSensorChange
)

// String returns a readable name for the kind
func (k EventKind) String() string {
	switch k {
	case KindMealBolus:
		return "Meal Bolus"
	case KindCorrectionBolus:
		return "Correction Bolus"
	case KindTempBasal:
		return "Temp Basal"
	case KindCarbIntake:
		return "Carb Correction"
	case KindSiteChange:
		return "Site Change"
	case KindSensorChange:
		return "Sensor Change"
	default:
		return "Other"
	}
}

// Treatment represents a treatment entry from Nightscout (insulin, carbs,
// temp basals, device changes, etc.)
type Treatment struct {
	ID         string  `json:"_id"`
	EventType  string  `json:"eventType"`
	Date       int64   `json:"date"`       // Unix timestamp in milliseconds
	CreatedAt  string  `json:"created_at"` // RFC3339 fallback
	Timestamp  string  `json:"timestamp"`  // second RFC3339 fallback
	Identifier string  `json:"identifier"` // dedupe key for linked records
	Insulin    float64 `json:"insulin"`    // Units of insulin
	Carbs      float64 `json:"carbs"`      // Grams of carbohydrates
	Duration   float64 `json:"duration"`   // Minutes (temp basals)
	Rate       float64 `json:"rate"`       // Units/hour (temp basals)
	Percent    float64 `json:"percent"`
	Absolute   float64 `json:"absolute"`
	Glucose    float64 `json:"glucose"`
	Notes      string  `json:"notes"`
	EnteredBy  string  `json:"enteredBy"`
}

// Time returns the time of the treatment, preferring the millisecond date
// field and falling back to the RFC3339 created_at/timestamp strings.
func (t *Treatment) Time() time.Time {
	if t.Date > 0 {
		return time.UnixMilli(t.Date)
	}
	for _, s := range []string{t.CreatedAt, t.Timestamp} {
		if s == "" {
			continue
		}
		if parsed, err := time.Parse(time.RFC3339, s); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// Kind maps the free-text event type into the closed EventKind set. This
// is the only place the stringly-typed boundary is interpreted.
func (t *Treatment) Kind() EventKind {
	et := strings.ToLower(t.EventType)
	switch {
	case strings.Contains(et, "temp basal"):
		return KindTempBasal
	case strings.Contains(et, "site change"):
		return KindSiteChange
	case strings.Contains(et, "sensor change"):
		return KindSensorChange
	case strings.Contains(et, "meal bolus"), strings.Contains(et, "snack bolus"):
		return KindMealBolus
	case strings.Contains(et, "bolus"):
		return KindCorrectionBolus
	case strings.Contains(et, "carb"):
		return KindCarbIntake
	default:
		return KindOther
	}
}

// HasInsulin returns true if this treatment includes insulin
func (t *Treatment) HasInsulin() bool {
	return t.Insulin > 0
}

// HasCarbs returns true if this treatment includes carbohydrates
func (t *Treatment) HasCarbs() bool {
	return t.Carbs > 0
}

// IsBolus reports whether this treatment is a discrete insulin dose.
func (t *Treatment) IsBolus() bool {
	return t.HasInsulin() && strings.Contains(strings.ToLower(t.EventType), "bolus")
}

// ActiveInterval returns the interval during which a temp basal overrides
// the scheduled rate, and false for anything that is not a usable temp
// basal (missing duration or rate field).
func (t *Treatment) ActiveInterval() (start, end time.Time, ok bool) {
	if t.Kind() != KindTempBasal || t.Duration <= 0 {
		return time.Time{}, time.Time{}, false
	}
	start = t.Time()
	if start.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	end = start.Add(time.Duration(t.Duration * float64(time.Minute)))
	return start, end, true
}
