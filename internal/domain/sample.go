package domain

import (
	"fmt"
	"math"
)

// Column names of the raw and processed day files.
const (
	ColTimestamp   = "timestamp"
	ColTime        = "time"
	ColTemperature = "temperature"
	ColIrradiance  = "irradiance"
	ColVoltage     = "voltage"
	ColCurrent     = "current"
	ColPower       = "power"

	ColTemperatureSmoothed = "temperature_smoothed"
	ColIrradianceSmoothed  = "irradiance_smoothed"
	ColVoltageSmoothed     = "voltage_smoothed"
	ColCurrentSmoothed     = "current_smoothed"
	ColPowerSmoothed       = "power_smoothed"
	ColIAMFactor           = "iam_factor"
	ColPVWattsPower        = "pvwatts_power"
	ColComputedPower       = "computed_power"
)

// TimeLayout is the local wall-clock format of the time column.
const TimeLayout = "2006-01-02 15:04:05"

// RawColumns lists the columns of a raw day file in output order.
var RawColumns = []string{
	ColTimestamp, ColTime, ColTemperature, ColIrradiance, ColVoltage, ColCurrent, ColPower,
}

// DerivedColumns lists the columns appended by processing, in output order.
var DerivedColumns = []string{
	ColTemperatureSmoothed, ColIrradianceSmoothed, ColVoltageSmoothed, ColCurrentSmoothed, ColPowerSmoothed,
	ColIAMFactor, ColPVWattsPower, ColComputedPower,
}

// ProcessedColumns lists the columns of a processed day file.
func ProcessedColumns() []string {
	cols := make([]string, 0, len(RawColumns)+len(DerivedColumns))
	cols = append(cols, RawColumns...)
	return append(cols, DerivedColumns...)
}

// Sample is one sensor reading.
type Sample struct {
	Timestamp   int64   `json:"timestamp"`   // seconds since the Unix epoch
	Time        string  `json:"time"`        // local wall clock, TimeLayout
	Temperature float64 `json:"temperature"` // °C, ambient/module
	Irradiance  float64 `json:"irradiance"`  // W/m², plane of array
	Voltage     float64 `json:"voltage"`     // V
	Current     float64 `json:"current"`     // A
	Power       float64 `json:"power"`       // W
}

// Series is one day of samples ordered by timestamp.
//
// Every stage addresses neighbours by index, never by timestamp. A gap in the
// recording silently widens the effective window of the corrector and the
// smoother.
type Series []Sample

// Clone returns an independent copy of the series.
func (s Series) Clone() Series {
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// Validate checks that the series is non-empty, ordered and numerically sound.
func (s Series) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: no samples", ErrMalformedInput)
	}
	for i, smp := range s {
		if i > 0 && smp.Timestamp < s[i-1].Timestamp {
			return fmt.Errorf("%w: row %d: timestamp %d precedes %d", ErrMalformedInput, i, smp.Timestamp, s[i-1].Timestamp)
		}
		fields := [...]struct {
			name string
			v    float64
		}{
			{ColTemperature, smp.Temperature},
			{ColIrradiance, smp.Irradiance},
			{ColVoltage, smp.Voltage},
			{ColCurrent, smp.Current},
			{ColPower, smp.Power},
		}
		for _, f := range fields {
			if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
				return fmt.Errorf("%w: row %d: %s is %v", ErrMalformedInput, i, f.name, f.v)
			}
		}
	}
	return nil
}

// Smoothed holds the smoothed channels of one sample.
type Smoothed struct {
	Temperature float64 `json:"temperature_smoothed"`
	Irradiance  float64 `json:"irradiance_smoothed"`
	Voltage     float64 `json:"voltage_smoothed"`
	Current     float64 `json:"current_smoothed"`
	Power       float64 `json:"power_smoothed"`
}

// Estimate holds the model outputs for one sample.
type Estimate struct {
	IAMFactor     float64 `json:"iam_factor"`
	PVWattsPower  float64 `json:"pvwatts_power"`  // W, uncalibrated
	ComputedPower float64 `json:"computed_power"` // W, scaled by the calibration coefficient
}

// ProcessedSample is a sample with its derived columns. The embedded Sample
// carries the corrected power, voltage and current.
type ProcessedSample struct {
	Sample
	Smoothed Smoothed
	Estimate Estimate
}
