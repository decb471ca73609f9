package domain

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Round2 rounds v to two decimals, resolving ties to even on the scaled value.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// MovingAverage returns the centered moving average of values over w samples,
// rounded to two decimals.
//
// Output i averages indices [i-w/2, i+(w-1)-w/2]. Near either end the window
// shrinks to the samples that exist, so every output is the mean of at least
// one input. A window below 1 is treated as 1. The window counts samples,
// not seconds, so irregular spacing is averaged as if it were regular.
func MovingAverage(values []float64, w int) []float64 {
	if w < 1 {
		w = 1
	}
	left := w / 2
	right := w - 1 - left

	out := make([]float64, len(values))
	for i := range values {
		lo := max(0, i-left)
		hi := min(len(values)-1, i+right)
		out[i] = Round2(stat.Mean(values[lo:hi+1], nil))
	}
	return out
}

// Smooth applies MovingAverage with window w to the temperature, irradiance,
// voltage, current and power channels of series.
func Smooth(series Series, w int) []Smoothed {
	temperature := MovingAverage(channel(series, func(s Sample) float64 { return s.Temperature }), w)
	irradiance := MovingAverage(channel(series, func(s Sample) float64 { return s.Irradiance }), w)
	voltage := MovingAverage(channel(series, func(s Sample) float64 { return s.Voltage }), w)
	current := MovingAverage(channel(series, func(s Sample) float64 { return s.Current }), w)
	power := MovingAverage(channel(series, func(s Sample) float64 { return s.Power }), w)

	out := make([]Smoothed, len(series))
	for i := range out {
		out[i] = Smoothed{
			Temperature: temperature[i],
			Irradiance:  irradiance[i],
			Voltage:     voltage[i],
			Current:     current[i],
			Power:       power[i],
		}
	}
	return out
}

func channel(series Series, get func(Sample) float64) []float64 {
	out := make([]float64, len(series))
	for i, s := range series {
		out[i] = get(s)
	}
	return out
}
