package domain

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Calibration is the persisted efficiency coefficient relating modelled
// PVWatts power to measured power.
type Calibration struct {
	Coefficient  float64   `json:"coefficient"`
	Source       string    `json:"source,omitempty"`
	Samples      int       `json:"samples,omitempty"`
	CalibratedAt time.Time `json:"calibrated_at,omitzero"`
}

// EstimateCoefficient fits measured ≈ k × ideal by least squares through the
// origin, k = Σ(ideal·measured) / Σ(ideal²).
//
// Empty or mismatched inputs, an all-zero ideal series and a negative or
// non-finite fit all return ErrDegenerateCalibration.
func EstimateCoefficient(ideal, measured []float64) (float64, error) {
	if len(ideal) != len(measured) {
		return 0, fmt.Errorf("%w: %d ideal values for %d measured", ErrDegenerateCalibration, len(ideal), len(measured))
	}
	if len(ideal) == 0 {
		return 0, fmt.Errorf("%w: no samples", ErrDegenerateCalibration)
	}

	allZero := true
	for _, v := range ideal {
		if v != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return 0, fmt.Errorf("%w: ideal power is zero for all %d samples", ErrDegenerateCalibration, len(ideal))
	}

	_, k := stat.LinearRegression(ideal, measured, nil, true)
	if math.IsNaN(k) || math.IsInf(k, 0) {
		return 0, fmt.Errorf("%w: fit is not finite", ErrDegenerateCalibration)
	}
	if k < 0 {
		return 0, fmt.Errorf("%w: fitted coefficient %v is negative", ErrDegenerateCalibration, k)
	}
	return k, nil
}

// Calibrate fits the coefficient of processed rows, regressing smoothed
// measured power on PVWatts power.
func Calibrate(rows []ProcessedSample) (Calibration, error) {
	ideal := make([]float64, len(rows))
	measured := make([]float64, len(rows))
	for i, r := range rows {
		ideal[i] = r.Estimate.PVWattsPower
		measured[i] = r.Smoothed.Power
	}

	k, err := EstimateCoefficient(ideal, measured)
	if err != nil {
		return Calibration{}, err
	}
	return Calibration{
		Coefficient:  k,
		Samples:      len(rows),
		CalibratedAt: clock.Now().UTC(),
	}, nil
}
