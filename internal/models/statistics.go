// Package models contains data structures used throughout the application
package models

// RangeBucket is one target-zone bucket: its sample count and its share of
// all valid samples, rounded to the nearest integer percent.
type RangeBucket struct {
	Count   int `json:"count"`
	Percent int `json:"percent"`
}

// DerivedStatistics is the immutable set of clinical metrics computed once
// per query period. It is recomputed from scratch when inputs change;
// nothing updates it incrementally.
type DerivedStatistics struct {
	DaysEvaluated    int `json:"daysEvaluated"`
	MeasurementCount int `json:"measurementCount"`
	PumpChanges      int `json:"pumpChanges"`
	SensorChanges    int `json:"sensorChanges"`

	// Target-zone buckets in mg/dL
	Below70  RangeBucket `json:"below70"`  // <70
	InRange  RangeBucket `json:"inRange"`  // 70-180
	High     RangeBucket `json:"high"`     // 180-240
	VeryHigh RangeBucket `json:"veryHigh"` // >240

	// Central tendency. HasData guards Min/Max: a literal 0 mg/dL would
	// read as a plausible but wrong value on an empty series.
	HasData bool    `json:"hasData"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"stdDev"` // population standard deviation

	GVI   float64 `json:"gvi"`   // glycemic variability index, CV*100
	PGS   float64 `json:"pgs"`   // patient glycemic status, composite 0-5
	HbA1c string  `json:"hba1c"` // estimated, one decimal; "-" when no data

	CarbsPerDay        float64 `json:"carbsPerDay"`
	BolusPerDay        float64 `json:"bolusPerDay"`
	BasalPerDay        float64 `json:"basalPerDay"` // delivered basal, reconstructed
	TotalInsulinPerDay float64 `json:"totalInsulinPerDay"`
}
