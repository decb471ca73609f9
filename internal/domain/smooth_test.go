package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.234, 1.23},
		{1.236, 1.24},
		{0.125, 0.12},
		{0.375, 0.38},
		{-0.125, -0.12},
		{395, 395},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round2(tt.in), "Round2(%v)", tt.in)
	}
}

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		window int
		want   []float64
	}{
		{
			name:   "window 5 shrinks at both edges",
			values: []float64{1, 2, 3, 4, 5, 6, 7},
			window: 5,
			want:   []float64{2, 2.5, 3, 4, 5, 5.5, 6},
		},
		{
			name:   "even window leans left",
			values: []float64{1, 2, 3, 4},
			window: 4,
			want:   []float64{1.5, 2, 2.5, 3},
		},
		{
			name:   "window 1 only rounds",
			values: []float64{1.111, 2.226},
			window: 1,
			want:   []float64{1.11, 2.23},
		},
		{
			name:   "window below 1 behaves like 1",
			values: []float64{3, 4},
			window: 0,
			want:   []float64{3, 4},
		},
		{
			name:   "single sample",
			values: []float64{42.424},
			window: 5,
			want:   []float64{42.42},
		},
		{
			name:   "window wider than series",
			values: []float64{1, 2, 4},
			window: 9,
			want:   []float64{2.33, 2.33, 2.33},
		},
		{
			name:   "empty",
			values: []float64{},
			window: 5,
			want:   []float64{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MovingAverage(tt.values, tt.window))
		})
	}
}

func TestMovingAverage_RerunIsDefined(t *testing.T) {
	once := MovingAverage([]float64{400, 395, 390, 380, 100, 370}, 5)
	twice := MovingAverage(once, 5)

	assert.Len(t, twice, len(once))
	for _, v := range twice {
		assert.Equal(t, Round2(v), v)
	}
}

func TestSmooth(t *testing.T) {
	series := Series{
		{Temperature: 20, Irradiance: 100, Voltage: 30, Current: 1, Power: 30},
		{Temperature: 22, Irradiance: 200, Voltage: 32, Current: 2, Power: 64},
		{Temperature: 24, Irradiance: 300, Voltage: 34, Current: 3, Power: 102},
	}

	got := Smooth(series, 5)

	assert.Equal(t, []Smoothed{
		{Temperature: 22, Irradiance: 200, Voltage: 32, Current: 2, Power: 65.33},
		{Temperature: 22, Irradiance: 200, Voltage: 32, Current: 2, Power: 65.33},
		{Temperature: 22, Irradiance: 200, Voltage: 32, Current: 2, Power: 65.33},
	}, got)
}
