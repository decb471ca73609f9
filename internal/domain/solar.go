package domain

import (
	"math"
	"time"
)

// SunPosition is the position of the sun seen from an observer, in degrees.
type SunPosition struct {
	Zenith         float64 // geometric
	ApparentZenith float64 // corrected for atmospheric refraction
	Azimuth        float64 // east of north
}

// Refraction model constants.
const (
	refractionTemperature = 12.0    // °C, annual mean air temperature
	sunRadius             = 0.26667 // degrees
	atmosphericRefraction = 0.5667  // degrees at the horizon
)

// SolarPosition computes the sun position at t for an observer at latitude and
// longitude (degrees, east positive) and altitude (m above sea level).
//
// It follows the NOAA low-order series, accurate to about 0.01° between 1800
// and 2100, and corrects the elevation for refraction using the pressure
// implied by altitude.
func SolarPosition(t time.Time, latitude, longitude, altitude float64) SunPosition {
	utc := t.UTC()
	jd := float64(utc.UnixNano())/86400e9 + 2440587.5
	jc := (jd - 2451545.0) / 36525.0

	meanLong := positiveMod(280.46646+jc*(36000.76983+jc*0.0003032), 360)
	meanAnom := 357.52911 + jc*(35999.05029-0.0001537*jc)
	ecc := 0.016708634 - jc*(0.000042037+0.0000001267*jc)

	center := sind(meanAnom)*(1.914602-jc*(0.004817+0.000014*jc)) +
		sind(2*meanAnom)*(0.019993-0.000101*jc) +
		sind(3*meanAnom)*0.000289
	trueLong := meanLong + center
	omega := 125.04 - 1934.136*jc
	appLong := trueLong - 0.00569 - 0.00478*sind(omega)

	meanObliq := 23 + (26+(21.448-jc*(46.815+jc*(0.00059-jc*0.001813)))/60)/60
	obliq := meanObliq + 0.00256*cosd(omega)
	decl := asind(sind(obliq) * sind(appLong))

	y := math.Pow(tand(obliq/2), 2)
	ml, ma := radians(meanLong), radians(meanAnom)
	eqTime := 4 * degrees(y*math.Sin(2*ml)-2*ecc*math.Sin(ma)+
		4*ecc*y*math.Sin(ma)*math.Cos(2*ml)-
		0.5*y*y*math.Sin(4*ml)-1.25*ecc*ecc*math.Sin(2*ma))

	minutes := float64(utc.Hour()*60+utc.Minute()) + (float64(utc.Second())+float64(utc.Nanosecond())/1e9)/60
	trueSolarTime := positiveMod(minutes+eqTime+4*longitude, 1440)
	hourAngle := trueSolarTime/4 - 180

	zenith := acosd(sind(latitude)*sind(decl) + cosd(latitude)*cosd(decl)*cosd(hourAngle))

	azimuth := 180.0
	if denom := cosd(latitude) * sind(zenith); math.Abs(denom) > 1e-12 {
		a := acosd((sind(latitude)*cosd(zenith) - sind(decl)) / denom)
		if hourAngle > 0 {
			azimuth = positiveMod(a+180, 360)
		} else {
			azimuth = positiveMod(540-a, 360)
		}
	}

	elevation := 90 - zenith
	return SunPosition{
		Zenith:         zenith,
		ApparentZenith: 90 - (elevation + refraction(elevation, altitudeToPressure(altitude), refractionTemperature)),
		Azimuth:        azimuth,
	}
}

// refraction returns the elevation correction in degrees for a geometric
// elevation e0, pressure in hPa and temperature in °C. Below the horizon limit
// no correction applies.
func refraction(e0, pressure, temperature float64) float64 {
	if e0 < -(sunRadius + atmosphericRefraction) {
		return 0
	}
	return (pressure / 1010) * (283 / (273 + temperature)) * 1.02 / (60 * tand(e0+10.3/(e0+5.11)))
}

// altitudeToPressure returns the standard-atmosphere pressure in hPa at altitude metres.
func altitudeToPressure(altitude float64) float64 {
	return math.Pow((44331.514-altitude)/11880.516, 1/0.1902632)
}

// AngleOfIncidence returns the angle in degrees between the sun and the normal
// of a surface tilted by tilt degrees and facing surfaceAzimuth degrees east of
// north. Zenith and azimuth describe the sun position.
func AngleOfIncidence(tilt, surfaceAzimuth, zenith, azimuth float64) float64 {
	projection := cosd(tilt)*cosd(zenith) + sind(tilt)*sind(zenith)*cosd(azimuth-surfaceAzimuth)
	return acosd(projection)
}

func radians(d float64) float64 { return d * math.Pi / 180 }
func degrees(r float64) float64 { return r * 180 / math.Pi }

func sind(d float64) float64 { return math.Sin(radians(d)) }
func cosd(d float64) float64 { return math.Cos(radians(d)) }
func tand(d float64) float64 { return math.Tan(radians(d)) }

func asind(x float64) float64 { return degrees(math.Asin(clamp(x, -1, 1))) }
func acosd(x float64) float64 { return degrees(math.Acos(clamp(x, -1, 1))) }

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func positiveMod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}
