// Package models contains data structures used throughout the application
package models

import "time"

// Glucose status values returned by Settings.GetGlucoseStatus.
const (
	StatusUrgentLow  = "urgent_low"
	StatusLow        = "low"
	StatusNormal     = "normal"
	StatusHigh       = "high"
	StatusUrgentHigh = "urgent_high"
)

// GlucoseEntry represents a single glucose reading fetched from Nightscout
type GlucoseEntry struct {
	ID        string  `json:"_id"`
	SGV       float64 `json:"sgv"`     // Sensor glucose value in mg/dL
	Glucose   float64 `json:"glucose"` // Alternate value field used by some uploaders
	Date      int64   `json:"date"`    // Unix timestamp in milliseconds
	DateStr   string  `json:"dateString"`
	Trend     int     `json:"trend"`
	Direction string  `json:"direction"`
	Device    string  `json:"device"`
	Type      string  `json:"type"`
}

// Time returns the time of the glucose entry
func (g *GlucoseEntry) Time() time.Time {
	return time.UnixMilli(g.Date)
}

// ValueMgDL returns the glucose value in mg/dL, preferring the sgv field and
// falling back to glucose when only the latter is set.
func (g *GlucoseEntry) ValueMgDL() float64 {
	if g.SGV > 0 {
		return g.SGV
	}
	return g.Glucose
}

// ValueMmolL returns the glucose value in mmol/L
func (g *GlucoseEntry) ValueMmolL() float64 {
	return g.ValueMgDL() / 18.0182
}

// IsValid reports whether the entry carries a usable positive reading.
// Invalid entries are excluded from aggregates, never zero-filled.
func (g *GlucoseEntry) IsValid() bool {
	return g.ValueMgDL() > 0
}

// ServerStatus represents the Nightscout server status
type ServerStatus struct {
	Status     string `json:"status"`
	Name       string `json:"name"`
	Version    string `json:"version"`
	ServerTime string `json:"serverTime"`
	APIEnabled bool   `json:"apiEnabled"`
}
