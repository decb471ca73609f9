package domain

import (
	"fmt"
	"time"
)

// DefaultTimezone is the zone used to read wall-clock times when a site does not name one.
const DefaultTimezone = "US/Pacific"

// Site describes the installation. It is read once and never mutated.
type Site struct {
	Latitude       float64 `json:"latitude"`        // degrees, north positive
	Longitude      float64 `json:"longitude"`       // degrees, east positive
	Altitude       float64 `json:"altitude"`        // m above sea level
	SurfaceTilt    float64 `json:"surface_tilt"`    // degrees from horizontal
	SurfaceAzimuth float64 `json:"surface_azimuth"` // degrees east of north
	PDC0           float64 `json:"pdc0"`            // W at 1000 W/m² and 25 °C
	GammaPDC       float64 `json:"gamma_pdc"`       // 1/°C
	Timezone       string  `json:"timezone"`        // IANA zone of the time column
}

// Location resolves the site timezone, falling back to DefaultTimezone.
func (s Site) Location() (*time.Location, error) {
	name := s.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrConfigMissing, name, err)
	}
	return loc, nil
}
