// Package synth generates synthetic raw day files: clear-sky irradiance from
// the solar model, a diurnal temperature swing, modelled power with losses,
// periodic MPPT sweep dips and optional sensor noise. Used for demos, fixtures
// and integration tests.
package synth

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/couchcryptid/pv-monitoring-etl/internal/domain"
)

// Options tunes the generated day.
type Options struct {
	Interval         time.Duration // sampling period
	PeakIrradiance   float64       // W/m² with the sun at zenith
	NightTemperature float64       // °C at dawn
	PeakTemperature  float64       // °C at 15:00
	Losses           float64       // measured = Losses × PVWatts
	DipEvery         time.Duration // MPPT sweep period, 0 disables dips
	DipDepth         float64       // power fraction kept during a sweep
	DipMinIrradiance float64       // W/m², no sweeps below
	Noise            float64       // W, standard deviation of power noise
	Seed             uint64
}

// DefaultOptions returns a 10-second day with sweeps every 10 minutes.
func DefaultOptions() Options {
	return Options{
		Interval:         10 * time.Second,
		PeakIrradiance:   1000,
		NightTemperature: 14,
		PeakTemperature:  34,
		Losses:           domain.DefaultCoefficient,
		DipEvery:         10 * time.Minute,
		DipDepth:         0.15,
		DipMinIrradiance: 100,
		Noise:            0,
		Seed:             1,
	}
}

const (
	nominalVoltage = 36.0 // V
	airMassExp     = 1.15
)

// Day generates the samples of date (YYYY-MM-DD) in the site timezone and
// returns them with the indices of the injected MPPT dips.
func Day(site domain.Site, date string, opts Options) (domain.Series, []int, error) {
	if opts.Interval <= 0 {
		return nil, nil, fmt.Errorf("interval %v must be positive", opts.Interval)
	}
	est, err := domain.NewEstimator(site, domain.DefaultIAMParams())
	if err != nil {
		return nil, nil, err
	}
	day, err := time.ParseInLocation("2006-01-02", date, est.Location())
	if err != nil {
		return nil, nil, fmt.Errorf("date %q: %w", date, err)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	end := day.AddDate(0, 0, 1)

	var (
		series domain.Series
		dips   []int
	)
	for t := day; t.Before(end); t = t.Add(opts.Interval) {
		pos := domain.SolarPosition(t, site.Latitude, site.Longitude, site.Altitude)
		irradiance := clearSky(pos.ApparentZenith, opts.PeakIrradiance)
		temperature := diurnalTemperature(t.Sub(day), opts.NightTemperature, opts.PeakTemperature)

		power := est.Estimate(t, irradiance, temperature, opts.Losses).ComputedPower
		if opts.Noise > 0 && power > 0 {
			power = math.Max(0, power+rng.NormFloat64()*opts.Noise)
		}

		voltage := 0.0
		if power > 0 {
			voltage = nominalVoltage
		}
		if isSweep(t.Sub(day), opts) && irradiance >= opts.DipMinIrradiance && interior(t, day, end, opts.Interval) {
			power *= opts.DipDepth
			voltage *= 0.8
			dips = append(dips, len(series))
		}

		current := 0.0
		if voltage > 0 {
			current = power / voltage
		}

		series = append(series, domain.Sample{
			Timestamp:   t.Unix(),
			Time:        t.Format(domain.TimeLayout),
			Temperature: domain.Round2(temperature),
			Irradiance:  domain.Round2(irradiance),
			Voltage:     domain.Round2(voltage),
			Current:     domain.Round2(current),
			Power:       domain.Round2(power),
		})
	}

	return series, dips, nil
}

// interior reports whether t has a sample on both sides.
func interior(t, start, end time.Time, interval time.Duration) bool {
	return t.After(start) && t.Add(interval).Before(end)
}

func isSweep(offset time.Duration, opts Options) bool {
	return opts.DipEvery > 0 && offset%opts.DipEvery == 0
}

// clearSky is a Haurwitz-style global irradiance curve.
func clearSky(zenith, peak float64) float64 {
	if zenith >= 90 {
		return 0
	}
	return peak * math.Pow(math.Cos(zenith*math.Pi/180), airMassExp)
}

// diurnalTemperature is a cosine swing with its minimum at 03:00 and its
// maximum at 15:00.
func diurnalTemperature(offset time.Duration, low, high float64) float64 {
	hours := offset.Hours()
	mid := (low + high) / 2
	amp := (high - low) / 2
	return mid - amp*math.Cos((hours-3)*math.Pi/12)
}
