package models

import (
	"math"
	"testing"
	"time"
)

func TestGlucoseEntry_Time(t *testing.T) {
	entry := GlucoseEntry{Date: 1772323200000}

	want := time.UnixMilli(1772323200000)
	if !entry.Time().Equal(want) {
		t.Errorf("Time() = %v, want %v", entry.Time(), want)
	}
}

func TestGlucoseEntry_ValueMgDL(t *testing.T) {
	tests := []struct {
		name    string
		sgv     float64
		glucose float64
		want    float64
	}{
		{"sgv set", 120, 0, 120},
		{"glucose fallback", 0, 110, 110},
		{"sgv preferred", 120, 110, 120},
		{"neither", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := GlucoseEntry{SGV: tt.sgv, Glucose: tt.glucose}
			if got := entry.ValueMgDL(); got != tt.want {
				t.Errorf("ValueMgDL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGlucoseEntry_ValueMmolL(t *testing.T) {
	entry := GlucoseEntry{SGV: 180.182}

	if got := entry.ValueMmolL(); math.Abs(got-10.0) > 0.001 {
		t.Errorf("ValueMmolL() = %v, want 10.0", got)
	}
}

func TestGlucoseEntry_IsValid(t *testing.T) {
	valid := GlucoseEntry{SGV: 95}
	if !valid.IsValid() {
		t.Error("Entry with sgv should be valid")
	}

	invalid := GlucoseEntry{Direction: "Flat"}
	if invalid.IsValid() {
		t.Error("Entry without a value should be invalid")
	}
}
