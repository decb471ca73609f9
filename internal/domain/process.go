package domain

import (
	"fmt"
	"math"
	"time"
)

// DayResult is the outcome of processing one day.
type DayResult struct {
	Rows        []ProcessedSample
	Corrected   []int // indices repaired by the MPPT corrector
	Coefficient float64
}

// Processor runs the correction, smoothing and estimation stages for one site.
// It holds no mutable state and is safe for concurrent use.
type Processor struct {
	params    Params
	estimator *Estimator
}

// NewProcessor creates a Processor for site.
func NewProcessor(site Site, params Params) (*Processor, error) {
	est, err := NewEstimator(site, params.IAM)
	if err != nil {
		return nil, err
	}
	return &Processor{params: params, estimator: est}, nil
}

// Estimator exposes the site power model.
func (p *Processor) Estimator() *Estimator { return p.estimator }

// Process turns a raw day into processed rows. The input series is left
// untouched; processed rows carry the corrected power, voltage and current.
func (p *Processor) Process(series Series, coefficient float64) (DayResult, error) {
	if math.IsNaN(coefficient) || coefficient < 0 {
		return DayResult{}, fmt.Errorf("%w: coefficient %v must be non-negative", ErrConfigMissing, coefficient)
	}
	if err := series.Validate(); err != nil {
		return DayResult{}, err
	}

	times := make([]time.Time, len(series))
	for i, s := range series {
		t, err := p.estimator.ParseTime(s.Time)
		if err != nil {
			return DayResult{}, fmt.Errorf("row %d: %w", i, err)
		}
		times[i] = t
	}

	corrected, fixed := CorrectMPPTDips(series, p.params.Dip)
	smoothed := Smooth(corrected, p.params.SmoothingWindow)

	rows := make([]ProcessedSample, len(corrected))
	for i := range corrected {
		rows[i] = ProcessedSample{
			Sample:   corrected[i],
			Smoothed: smoothed[i],
			Estimate: p.estimator.Estimate(times[i], smoothed[i].Irradiance, smoothed[i].Temperature, coefficient),
		}
	}

	return DayResult{Rows: rows, Corrected: fixed, Coefficient: coefficient}, nil
}
