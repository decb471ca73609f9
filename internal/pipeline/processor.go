package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/pv-monitoring-etl/internal/domain"
	"github.com/couchcryptid/pv-monitoring-etl/internal/observability"
)

// DayStore reads raw day files and persists processed ones.
type DayStore interface {
	LoadDay(name string) (domain.Series, error)
	LoadProcessed(name string) ([]domain.ProcessedSample, error)
	SaveProcessed(name string, rows []domain.ProcessedSample) (string, error)
}

// DayProcessor runs the domain stages over stored day files.
type DayProcessor struct {
	store     DayStore
	processor *domain.Processor
	window    domain.TimeWindow
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewDayProcessor creates a DayProcessor. window bounds the summary metrics.
func NewDayProcessor(store DayStore, processor *domain.Processor, window domain.TimeWindow, logger *slog.Logger, metrics *observability.Metrics) *DayProcessor {
	return &DayProcessor{
		store:     store,
		processor: processor,
		window:    window,
		logger:    logger,
		metrics:   metrics,
	}
}

// ProcessDay reads the raw day file name, writes its processed file and
// returns the day's summary. Nothing is written when processing fails.
func (d *DayProcessor) ProcessDay(ctx context.Context, name string, coefficient float64) (domain.DaySummary, error) {
	start := time.Now()

	summary, err := d.processDay(ctx, name, coefficient)
	d.metrics.DaysProcessed.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return domain.DaySummary{}, err
	}

	d.metrics.DayProcessingDuration.Observe(time.Since(start).Seconds())
	d.metrics.SamplesProcessed.Add(float64(summary.Samples))
	d.metrics.DipsCorrected.Add(float64(summary.DipsCorrected))
	d.metrics.Coefficient.Set(summary.Coefficient)
	d.metrics.DayMAE.Set(summary.MAE)

	d.logger.Info("day processed",
		"date", summary.Date,
		"samples", summary.Samples,
		"dips_corrected", summary.DipsCorrected,
		"coefficient", summary.Coefficient,
		"mae", summary.MAE,
		"output", summary.Output,
	)
	return summary, nil
}

func (d *DayProcessor) processDay(ctx context.Context, name string, coefficient float64) (domain.DaySummary, error) {
	if err := ctx.Err(); err != nil {
		return domain.DaySummary{}, err
	}

	result, err := d.run(name, coefficient)
	if err != nil {
		return domain.DaySummary{}, err
	}

	out, err := d.store.SaveProcessed(name, result.Rows)
	if err != nil {
		return domain.DaySummary{}, fmt.Errorf("save processed day: %w", err)
	}

	summary := domain.Summarize(result, d.window)
	summary.Source = name
	summary.Output = out
	return summary, nil
}

func (d *DayProcessor) run(name string, coefficient float64) (domain.DayResult, error) {
	series, err := d.store.LoadDay(name)
	if err != nil {
		return domain.DayResult{}, fmt.Errorf("load day %s: %w", name, err)
	}
	result, err := d.processor.Process(series, coefficient)
	if err != nil {
		return domain.DayResult{}, fmt.Errorf("process day %s: %w", name, err)
	}
	return result, nil
}

// CalibrateDay fits the efficiency coefficient of one day. The processed file
// is used when present; otherwise the raw day is processed in memory. A
// non-nil window keeps only the rows inside it.
func (d *DayProcessor) CalibrateDay(ctx context.Context, name string, window *domain.TimeWindow) (domain.Calibration, error) {
	if err := ctx.Err(); err != nil {
		return domain.Calibration{}, err
	}

	rows, err := d.calibrationRows(name)
	if err != nil {
		return domain.Calibration{}, err
	}
	if window != nil {
		total := len(rows)
		rows = window.Filter(rows)
		d.logger.Debug("calibration window applied", "window", window.String(), "kept", len(rows), "total", total)
	}

	cal, err := domain.Calibrate(rows)
	if err != nil {
		return domain.Calibration{}, fmt.Errorf("calibrate %s: %w", name, err)
	}
	cal.Source = name

	d.logger.Info("day calibrated", "source", name, "samples", cal.Samples, "coefficient", cal.Coefficient)
	return cal, nil
}

func (d *DayProcessor) calibrationRows(name string) ([]domain.ProcessedSample, error) {
	rows, err := d.store.LoadProcessed(domain.ProcessedFileName(name))
	if err == nil {
		return rows, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load processed day %s: %w", name, err)
	}

	d.logger.Debug("no processed file, processing raw day", "source", name)
	// pvwatts_power does not depend on the coefficient.
	result, err := d.run(name, domain.DefaultCoefficient)
	if err != nil {
		return nil, err
	}
	return result.Rows, nil
}

// outcome labels the days_processed_total counter.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrMalformedInput):
		return "malformed"
	case errors.Is(err, domain.ErrConfigMissing):
		return "config"
	default:
		return "error"
	}
}
