// Package analysis runs the full groundwater engine for a region and assembles
// the results into a report.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/groundwater-insights/internal/domain"
	"github.com/couchcryptid/groundwater-insights/internal/observability"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Series names recorded in Report.Fallbacks.
const (
	SeriesTrend    = "trend"
	SeriesRainfall = "rainfall"
)

var tracer = otel.Tracer("groundwater-insights/analysis")

// Request is one region to analyze. History and Monthly are optional; when
// absent, synthesized series take their place.
type Request struct {
	Region  string                        `json:"region"`
	Metrics domain.RegionMetrics          `json:"metrics"`
	History []domain.HistoricalLevelPoint `json:"historicalLevels,omitempty"`
	Monthly []domain.MonthlyRainfallPoint `json:"monthlyRainfall,omitempty"`
}

// Report is the complete analysis of one region.
type Report struct {
	ID              string                  `json:"id"`
	Region          string                  `json:"region"`
	Category        domain.Category         `json:"category"`
	ExtractionRatio *float64                `json:"extractionRatio,omitempty"`
	Metrics         domain.RegionMetrics    `json:"metrics"`
	Trend           domain.TrendSeries      `json:"trend"`
	Rainfall        domain.RainfallSeries   `json:"rainfall"`
	Projection      domain.ProjectionSeries `json:"projection"`
	Risk            domain.RiskProfile      `json:"risk"`
	WaterBalance    *domain.WaterBalance    `json:"waterBalance,omitempty"`
	Fallbacks       []string                `json:"fallbacks,omitempty"`
	GeneratedAt     time.Time               `json:"generatedAt"`
}

// Analyzer runs every engine component for a request. It holds no mutable
// state and is safe for concurrent use.
type Analyzer struct {
	seed        uint64
	concurrency int
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// New creates an Analyzer. seed drives the synthesized fallback series;
// concurrency bounds AnalyzeAll.
func New(seed uint64, concurrency int, metrics *observability.Metrics, logger *slog.Logger) *Analyzer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Analyzer{
		seed:        seed,
		concurrency: concurrency,
		metrics:     metrics,
		logger:      logger,
	}
}

// Analyze produces the report for one region. It fails only when the region
// is unnamed or ctx is already done.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	region := strings.TrimSpace(req.Region)
	if region == "" {
		return Report{}, errors.New("region is required")
	}

	_, span := tracer.Start(ctx, "analysis.Analyze", trace.WithAttributes(attribute.String("region", region)))
	defer span.End()

	start := time.Now()
	m := req.Metrics.Normalized()
	gen := domain.NewGenerator(domain.SeedFor(a.seed, strings.ToLower(region)))

	report := Report{
		ID:          uuid.NewString(),
		Region:      region,
		Category:    domain.Classify(m),
		Metrics:     m,
		Risk:        domain.ScoreRisk(m),
		GeneratedAt: domain.Clock().Now().UTC(),
	}

	if ratio, err := domain.ExtractionRatio(m); err == nil {
		report.ExtractionRatio = &ratio
	}
	if balance, ok := domain.ComputeWaterBalance(m); ok {
		report.WaterBalance = &balance
	}

	// Malformed series are dropped and synthesized like absent ones.
	history, monthly := req.History, req.Monthly
	if err := domain.ValidateLevels(history); err != nil {
		a.logger.Warn("dropping historical levels", "region", region, "error", err)
		history = nil
	}
	if err := domain.ValidateRainfall(monthly); err != nil {
		a.logger.Warn("dropping monthly rainfall", "region", region, "error", err)
		monthly = nil
	}

	if len(history) == 0 {
		report.Fallbacks = append(report.Fallbacks, SeriesTrend)
	}
	report.Trend = domain.SynthesizeHistoricalTrend(history, gen)

	if len(monthly) == 0 {
		report.Fallbacks = append(report.Fallbacks, SeriesRainfall)
	}
	report.Rainfall = domain.AnalyzeRainfall(monthly, gen)

	report.Projection = domain.Project(report.Trend, m)

	for _, series := range report.Fallbacks {
		a.metrics.Fallbacks.WithLabelValues(series).Inc()
	}
	a.metrics.AnalysesTotal.WithLabelValues(string(report.Category)).Inc()
	a.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	span.SetAttributes(attribute.String("category", string(report.Category)))
	a.logger.Debug("region analyzed",
		"region", region,
		"category", report.Category,
		"fallbacks", report.Fallbacks,
	)
	return report, nil
}

// AnalyzeAll analyzes many regions concurrently and returns reports in
// request order. The first failure cancels the remaining work.
func (a *Analyzer) AnalyzeAll(ctx context.Context, reqs []Request) ([]Report, error) {
	reports := make([]Report, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			r, err := a.Analyze(ctx, req)
			if err != nil {
				return fmt.Errorf("analyze %q: %w", req.Region, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
