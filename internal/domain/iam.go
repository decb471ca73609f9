package domain

import "math"

// IAMParams describes the glass cover of the module.
type IAMParams struct {
	RefractiveIndex       float64 // n
	ExtinctionCoefficient float64 // K, 1/m
	GlazingThickness      float64 // L, m
}

// DefaultIAMParams returns the parameters of standard low-iron solar glass.
func DefaultIAMParams() IAMParams {
	return IAMParams{
		RefractiveIndex:       1.526,
		ExtinctionCoefficient: 4,
		GlazingThickness:      0.002,
	}
}

// PhysicalIAM returns the incidence angle modifier at aoi degrees: the share
// of light transmitted through the glass relative to normal incidence, from
// Fresnel reflection of both polarisations and Beer-Lambert absorption.
//
// The result is 0 at or beyond 90° and in (0, 1] below it.
func PhysicalIAM(aoi float64, p IAMParams) float64 {
	if math.Abs(aoi) >= 90 {
		return 0
	}
	if aoi == 0 {
		aoi = 1e-6
	}

	n := p.RefractiveIndex
	kl := p.ExtinctionCoefficient * p.GlazingThickness

	cos1 := cosd(aoi)
	sin1 := math.Sqrt(1 - cos1*cos1)
	sin2 := sin1 / n
	cos2 := math.Sqrt(1 - sin2*sin2)

	rhoS := square((cos1 - n*cos2) / (cos1 + n*cos2))
	rhoP := square((cos2 - n*cos1) / (cos2 + n*cos1))
	rho0 := square((1 - n) / (1 + n))

	absorbed := math.Exp(-kl / cos2)
	tauS := (1 - rhoS) * absorbed
	tauP := (1 - rhoP) * absorbed
	tau0 := (1 - rho0) * math.Exp(-kl)

	return math.Min((tauS+tauP)/2/tau0, 1)
}

func square(x float64) float64 { return x * x }
