// Package service orchestrates the fetch-derive-compose pipeline behind
// the CLI commands.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mrcode/nightscout-report/internal/basal"
	"github.com/mrcode/nightscout-report/internal/models"
	"github.com/mrcode/nightscout-report/internal/nightscout"
	"github.com/mrcode/nightscout-report/internal/report"
	"github.com/mrcode/nightscout-report/internal/stats"
	"github.com/mrcode/nightscout-report/internal/timeline"
)

const maxFetchCount = 100000

// Fetcher is the slice of the Nightscout client the service needs.
// The client satisfies it; tests substitute a fake.
type Fetcher interface {
	GetEntries(ctx context.Context, from, to time.Time, count int) ([]models.GlucoseEntry, error)
	GetTreatments(ctx context.Context, from, to time.Time, count int) ([]models.Treatment, error)
	GetProfiles(ctx context.Context) ([]models.Profile, error)
}

var _ Fetcher = (*nightscout.Client)(nil)

// Service runs queries against Nightscout and turns the results into
// statistics and reports. Each call derives everything from scratch;
// the service keeps no cross-query state, so concurrent calls are safe.
type Service struct {
	client   Fetcher
	settings *models.Settings
	composer *report.Composer
	logger   *zap.Logger
}

// New creates a Service.
func New(client Fetcher, settings *models.Settings, logger *zap.Logger) *Service {
	return &Service{
		client:   client,
		settings: settings,
		composer: report.NewComposer(),
		logger:   logger,
	}
}

// QueryResult bundles everything derived for one period.
type QueryResult struct {
	Series *timeline.Series
	Stats  *models.DerivedStatistics
	Curve  *stats.Curve
}

// Query fetches entries, treatments and profiles concurrently, then
// derives the statistics set. The caller's context bounds all three
// fetches; cancelling it abandons the whole query, which is how a
// superseded query is discarded under last-query-wins.
func (s *Service) Query(ctx context.Context, period timeline.Period) (*QueryResult, error) {
	start := time.Now()

	var (
		entries    []models.GlucoseEntry
		treatments []models.Treatment
		profiles   []models.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.client.GetEntries(gctx, period.From, period.To, maxFetchCount)
		if err != nil {
			return fmt.Errorf("fetch entries: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		treatments, err = s.client.GetTreatments(gctx, period.From, period.To, maxFetchCount)
		if err != nil {
			return fmt.Errorf("fetch treatments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		profiles, err = s.client.GetProfiles(gctx)
		if err != nil {
			return fmt.Errorf("fetch profiles: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("fetched period data",
		zap.Int("entries", len(entries)),
		zap.Int("treatments", len(treatments)),
		zap.Int("profileVersions", len(profiles)),
		zap.Duration("elapsed", time.Since(start)))

	series := timeline.Normalize(entries, treatments, period)
	basalPerDay := basal.PeriodAverage(profiles, series.Treatments, period)
	derived := stats.Compute(series, basalPerDay)

	return &QueryResult{
		Series: series,
		Stats:  derived,
		Curve:  stats.AggregateCurve(series.Entries),
	}, nil
}

// Statistics runs a query and returns the derived statistics alone.
func (s *Service) Statistics(ctx context.Context, period timeline.Period) (*models.DerivedStatistics, error) {
	res, err := s.Query(ctx, period)
	if err != nil {
		return nil, err
	}
	return res.Stats, nil
}

// GenerateReport runs a query and composes the PDF. Patient fields and
// page toggles come from the settings; progress is optional.
func (s *Service) GenerateReport(ctx context.Context, period timeline.Period, progress func(page, total int)) ([]byte, error) {
	res, err := s.Query(ctx, period)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := report.Options{
		PatientName:             s.settings.PatientName,
		PatientFirstName:        s.settings.PatientFirstName,
		BirthDate:               s.settings.BirthDate,
		InsulinRegimen:          s.settings.InsulinRegimen,
		DiabeticSince:           s.settings.DiabeticSince,
		IncludeDailyCharts:      s.settings.IncludeDailyCharts,
		IncludeVariabilityChart: s.settings.IncludeVariabilityChart,
		Progress:                progress,
	}

	pdf, err := s.composer.Generate(&report.Data{
		Series: res.Series,
		Stats:  res.Stats,
		Curve:  res.Curve,
	}, opts)
	if err != nil {
		return nil, err
	}

	s.logger.Info("composed report",
		zap.Int("bytes", len(pdf)),
		zap.Int("daysEvaluated", res.Stats.DaysEvaluated))
	return pdf, nil
}
