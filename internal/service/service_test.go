package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mrcode/nightscout-report/internal/models"
	"github.com/mrcode/nightscout-report/internal/timeline"
)

type fakeFetcher struct {
	entries    []models.GlucoseEntry
	treatments []models.Treatment
	profiles   []models.Profile

	entriesErr error
}

func (f *fakeFetcher) GetEntries(ctx context.Context, from, to time.Time, count int) ([]models.GlucoseEntry, error) {
	if f.entriesErr != nil {
		return nil, f.entriesErr
	}
	return f.entries, nil
}

func (f *fakeFetcher) GetTreatments(ctx context.Context, from, to time.Time, count int) ([]models.Treatment, error) {
	return f.treatments, nil
}

func (f *fakeFetcher) GetProfiles(ctx context.Context) ([]models.Profile, error) {
	return f.profiles, nil
}

func constantFortnight(from time.Time) *fakeFetcher {
	var entries []models.GlucoseEntry
	for day := 0; day < 14; day++ {
		for slot := 0; slot < 288; slot++ {
			at := from.AddDate(0, 0, day).Add(time.Duration(slot) * 5 * time.Minute)
			entries = append(entries, models.GlucoseEntry{SGV: 100, Date: at.UnixMilli()})
		}
	}
	return &fakeFetcher{
		entries: entries,
		profiles: []models.Profile{{
			Date:           from.AddDate(0, 0, -30).UnixMilli(),
			DefaultProfile: "Default",
			Store: map[string]models.ProfileStore{
				"Default": {Basal: models.BasalSchedule{{Time: "00:00", Value: 1.0}}},
			},
		}},
	}
}

func TestQueryConstantFortnight(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	period := timeline.Period{From: from, To: from.AddDate(0, 0, 14).Add(-time.Minute)}
	svc := New(constantFortnight(from), models.DefaultSettings(), zap.NewNop())

	res, err := svc.Query(context.Background(), period)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}

	st := res.Stats
	if st.Mean != 100 || st.StdDev != 0 || st.GVI != 0 {
		t.Errorf("mean/std/gvi = %v/%v/%v, want 100/0/0", st.Mean, st.StdDev, st.GVI)
	}
	if st.HbA1c != "5.1" {
		t.Errorf("hba1c = %q, want \"5.1\"", st.HbA1c)
	}
	if st.InRange.Percent != 100 {
		t.Errorf("in-range percent = %d, want 100", st.InRange.Percent)
	}
	if math.Abs(st.BasalPerDay-24.0) > 1e-9 {
		t.Errorf("basal per day = %v, want 24.0 for flat 1.0 U/h", st.BasalPerDay)
	}
	if res.Curve == nil {
		t.Fatal("curve not aggregated")
	}
	if res.Curve.N[0] != 14 {
		t.Errorf("curve bin 0 has %d samples, want 14", res.Curve.N[0])
	}
}

func TestQueryFetchError(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	period := timeline.Period{From: from, To: from.AddDate(0, 0, 7)}
	wantErr := errors.New("boom")
	svc := New(&fakeFetcher{entriesErr: wantErr}, models.DefaultSettings(), zap.NewNop())

	_, err := svc.Query(context.Background(), period)
	if !errors.Is(err, wantErr) {
		t.Errorf("Query() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestQueryCancelled(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	period := timeline.Period{From: from, To: from.AddDate(0, 0, 7)}
	svc := New(&fakeFetcher{}, models.DefaultSettings(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Query(ctx, period); !errors.Is(err, context.Canceled) {
		t.Errorf("Query() error = %v, want context.Canceled", err)
	}
}

func TestGenerateReportEmptyPeriod(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	period := timeline.Period{From: from, To: from.AddDate(0, 0, 7)}
	settings := models.DefaultSettings()
	settings.PatientName = "doe"
	svc := New(&fakeFetcher{}, settings, zap.NewNop())

	pdf, err := svc.GenerateReport(context.Background(), period, nil)
	if err != nil {
		t.Fatalf("GenerateReport() error: %v", err)
	}
	if len(pdf) == 0 {
		t.Error("empty period produced no report")
	}

	stats, err := svc.Statistics(context.Background(), period)
	if err != nil {
		t.Fatalf("Statistics() error: %v", err)
	}
	if stats.DaysEvaluated != 0 || stats.HbA1c != "-" {
		t.Errorf("daysEvaluated=%d hba1c=%q, want 0 and \"-\"", stats.DaysEvaluated, stats.HbA1c)
	}
}

func TestGenerateReportProgress(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	period := timeline.Period{From: from, To: from.AddDate(0, 0, 14).Add(-time.Minute)}
	settings := models.DefaultSettings()
	settings.IncludeDailyCharts = true
	settings.IncludeVariabilityChart = true
	svc := New(constantFortnight(from), settings, zap.NewNop())

	calls := 0
	_, err := svc.GenerateReport(context.Background(), period, func(page, total int) {
		calls++
		// Summary + 14 day pages + variability page.
		if total != 16 {
			t.Errorf("total = %d, want 16", total)
		}
	})
	if err != nil {
		t.Fatalf("GenerateReport() error: %v", err)
	}
	if calls != 16 {
		t.Errorf("progress called %d times, want 16", calls)
	}
}
