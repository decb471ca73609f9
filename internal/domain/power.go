package domain

import (
	"fmt"
	"time"
)

const (
	referenceTemperature = 25.0 // °C
	irradianceScale      = 0.001
)

// PVWattsDC returns the DC power in W of an array rated pdc0 W, given the
// effective irradiance in W/m² and the cell temperature in °C. The result is
// not clamped, so implausible temperatures may yield a negative power.
func PVWattsDC(effectiveIrradiance, cellTemperature, pdc0, gammaPDC float64) float64 {
	return effectiveIrradiance * irradianceScale * pdc0 * (1 + gammaPDC*(cellTemperature-referenceTemperature))
}

// Estimator turns smoothed irradiance and temperature into expected power for one site.
type Estimator struct {
	site Site
	iam  IAMParams
	loc  *time.Location
}

// NewEstimator creates an Estimator for site, resolving its timezone.
func NewEstimator(site Site, iam IAMParams) (*Estimator, error) {
	loc, err := site.Location()
	if err != nil {
		return nil, err
	}
	return &Estimator{site: site, iam: iam, loc: loc}, nil
}

// Location is the zone the estimator reads wall-clock times in.
func (e *Estimator) Location() *time.Location { return e.loc }

// ParseTime reads a TimeLayout wall-clock string in the site timezone.
func (e *Estimator) ParseTime(wallClock string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, wallClock, e.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q: %v", ErrMalformedInput, wallClock, err)
	}
	return t, nil
}

// IAM returns the incidence angle modifier for the module at t.
func (e *Estimator) IAM(t time.Time) float64 {
	pos := SolarPosition(t, e.site.Latitude, e.site.Longitude, e.site.Altitude)
	aoi := AngleOfIncidence(e.site.SurfaceTilt, e.site.SurfaceAzimuth, pos.ApparentZenith, pos.Azimuth)
	return PhysicalIAM(aoi, e.iam)
}

// Estimate computes the IAM factor, PVWatts power and calibrated power at t.
// Both powers are rounded to two decimals; the calibrated one is scaled from
// the unrounded DC power.
func (e *Estimator) Estimate(t time.Time, irradiance, temperature, coefficient float64) Estimate {
	iam := e.IAM(t)
	pdc := PVWattsDC(iam*irradiance, temperature, e.site.PDC0, e.site.GammaPDC)
	return Estimate{
		IAMFactor:     iam,
		PVWattsPower:  Round2(pdc),
		ComputedPower: Round2(pdc * coefficient),
	}
}
