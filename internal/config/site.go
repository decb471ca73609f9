package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/pv-monitoring-etl/internal/domain"
	"github.com/goccy/go-json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// siteDocument mirrors the site config file:
//
//	{
//	  "pvsystem": {"surface_tilt": 30, "surface_azimuth": 180, "pdc0": 5000, "gamma_pdc": -0.004},
//	  "location": {"latitude": 37.77, "longitude": -122.42, "altitude": 16, "timezone": "US/Pacific"}
//	}
type siteDocument struct {
	PVSystem struct {
		SurfaceTilt    float64 `koanf:"surface_tilt" validate:"gte=0,lte=180"`
		SurfaceAzimuth float64 `koanf:"surface_azimuth" validate:"gte=0,lte=360"`
		PDC0           float64 `koanf:"pdc0" validate:"gt=0"`
		GammaPDC       float64 `koanf:"gamma_pdc" validate:"gte=-1,lte=1"`
	} `koanf:"pvsystem"`
	Location struct {
		Latitude  float64 `koanf:"latitude" validate:"latitude"`
		Longitude float64 `koanf:"longitude" validate:"longitude"`
		Altitude  float64 `koanf:"altitude" validate:"gte=-500,lte=9000"`
		Timezone  string  `koanf:"timezone" validate:"omitempty,timezone"`
	} `koanf:"location"`
}

var requiredSiteKeys = []string{
	"pvsystem.surface_tilt",
	"pvsystem.surface_azimuth",
	"pvsystem.pdc0",
	"pvsystem.gamma_pdc",
	"location.latitude",
	"location.longitude",
	"location.altitude",
}

// LoadSite reads and validates the site config document at path. JSON and
// YAML are both accepted. Any failure wraps domain.ErrConfigMissing.
func LoadSite(path string) (domain.Site, error) {
	k, err := loadDocument(path)
	if err != nil {
		return domain.Site{}, fmt.Errorf("%w: site config: %v", domain.ErrConfigMissing, err)
	}

	var missing []string
	for _, key := range requiredSiteKeys {
		if !k.Exists(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return domain.Site{}, fmt.Errorf("%w: site config %s: missing %s", domain.ErrConfigMissing, path, strings.Join(missing, ", "))
	}

	var doc siteDocument
	if err := k.Unmarshal("", &doc); err != nil {
		return domain.Site{}, fmt.Errorf("%w: site config %s: %v", domain.ErrConfigMissing, path, err)
	}
	if err := validateStruct(&doc, keyPath); err != nil {
		return domain.Site{}, fmt.Errorf("%w: site config %s: %v", domain.ErrConfigMissing, path, err)
	}

	site := domain.Site{
		Latitude:       doc.Location.Latitude,
		Longitude:      doc.Location.Longitude,
		Altitude:       doc.Location.Altitude,
		SurfaceTilt:    doc.PVSystem.SurfaceTilt,
		SurfaceAzimuth: doc.PVSystem.SurfaceAzimuth,
		PDC0:           doc.PVSystem.PDC0,
		GammaPDC:       doc.PVSystem.GammaPDC,
		Timezone:       doc.Location.Timezone,
	}
	if site.Timezone == "" {
		site.Timezone = domain.DefaultTimezone
	}
	if _, err := site.Location(); err != nil {
		return domain.Site{}, err
	}
	return site, nil
}

// loadDocument reads a JSON or YAML file into a fresh koanf instance.
func loadDocument(path string) (*koanf.Koanf, error) {
	var parser koanf.Parser = yaml.Parser()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		parser = jsonParser{}
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return k, nil
}

// jsonParser is a koanf.Parser backed by go-json.
type jsonParser struct{}

func (jsonParser) Unmarshal(b []byte) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("document is not an object")
	}
	return out, nil
}

func (jsonParser) Marshal(m map[string]any) ([]byte, error) {
	return json.Marshal(m)
}
