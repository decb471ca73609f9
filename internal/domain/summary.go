package domain

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DaySummary reports how one processed day compares with the model.
// Error metrics and means cover the rows inside the daylight window; energy
// covers the whole day.
type DaySummary struct {
	Date              string    `json:"date"`
	Source            string    `json:"source"`
	Output            string    `json:"output,omitempty"`
	Samples           int       `json:"samples"`
	DipsCorrected     int       `json:"dips_corrected"`
	Coefficient       float64   `json:"coefficient"`
	Window            string    `json:"window"`
	WindowSamples     int       `json:"window_samples"`
	MeanPower         float64   `json:"mean_power"`          // W, smoothed measured
	MeanComputedPower float64   `json:"mean_computed_power"` // W
	MAE               float64   `json:"mae"`                 // W
	RMSE              float64   `json:"rmse"`                // W
	MeasuredEnergyWh  float64   `json:"measured_energy_wh"`
	ComputedEnergyWh  float64   `json:"computed_energy_wh"`
	ProcessedAt       time.Time `json:"processed_at"`
}

// Summarize builds the DaySummary of a processed day.
func Summarize(result DayResult, window TimeWindow) DaySummary {
	rows := result.Rows
	s := DaySummary{
		Date:          dateOf(rows),
		Samples:       len(rows),
		DipsCorrected: len(result.Corrected),
		Coefficient:   result.Coefficient,
		Window:        window.String(),
		ProcessedAt:   clock.Now().UTC(),
	}

	inWindow := window.Filter(rows)
	s.WindowSamples = len(inWindow)
	if len(inWindow) > 0 {
		measured := make([]float64, len(inWindow))
		computed := make([]float64, len(inWindow))
		absErr := make([]float64, len(inWindow))
		sqErr := make([]float64, len(inWindow))
		for i, r := range inWindow {
			measured[i] = r.Smoothed.Power
			computed[i] = r.Estimate.ComputedPower
			d := computed[i] - measured[i]
			absErr[i] = math.Abs(d)
			sqErr[i] = d * d
		}
		s.MeanPower = Round2(stat.Mean(measured, nil))
		s.MeanComputedPower = Round2(stat.Mean(computed, nil))
		s.MAE = Round2(stat.Mean(absErr, nil))
		s.RMSE = Round2(math.Sqrt(stat.Mean(sqErr, nil)))
	}

	s.MeasuredEnergyWh = Round2(energyWh(rows, func(r ProcessedSample) float64 { return r.Smoothed.Power }))
	s.ComputedEnergyWh = Round2(energyWh(rows, func(r ProcessedSample) float64 { return r.Estimate.ComputedPower }))
	return s
}

// energyWh integrates power over the row timestamps with the trapezoid rule.
func energyWh(rows []ProcessedSample, power func(ProcessedSample) float64) float64 {
	var joules float64
	for i := 1; i < len(rows); i++ {
		dt := float64(rows[i].Timestamp - rows[i-1].Timestamp)
		joules += (power(rows[i]) + power(rows[i-1])) / 2 * dt
	}
	return joules / 3600
}

func dateOf(rows []ProcessedSample) string {
	if len(rows) == 0 || len(rows[0].Time) < len("2006-01-02") {
		return ""
	}
	return rows[0].Time[:len("2006-01-02")]
}
