package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/pv-monitoring-etl/internal/domain"
	"github.com/goccy/go-json"
)

// LoadCalibration reads the calibration document at path:
//
//	{"coefficient": 0.88, "source": "2022-09-14.csv", "samples": 3600, "calibrated_at": "2022-09-15T02:00:00Z"}
//
// Only coefficient is required. Any failure wraps domain.ErrConfigMissing.
func LoadCalibration(path string) (domain.Calibration, error) {
	k, err := loadDocument(path)
	if err != nil {
		return domain.Calibration{}, fmt.Errorf("%w: calibration: %v", domain.ErrConfigMissing, err)
	}
	if !k.Exists("coefficient") {
		return domain.Calibration{}, fmt.Errorf("%w: calibration %s: missing coefficient", domain.ErrConfigMissing, path)
	}

	coef, ok := asFloat(k.Get("coefficient"))
	if !ok || math.IsNaN(coef) || math.IsInf(coef, 0) || coef < 0 {
		return domain.Calibration{}, fmt.Errorf("%w: calibration %s: coefficient %v must be a non-negative number",
			domain.ErrConfigMissing, path, k.Get("coefficient"))
	}

	cal := domain.Calibration{
		Coefficient: coef,
		Source:      k.String("source"),
		Samples:     k.Int("samples"),
	}
	switch at := k.Get("calibrated_at").(type) {
	case nil:
	case time.Time:
		cal.CalibratedAt = at
	case string:
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return domain.Calibration{}, fmt.Errorf("%w: calibration %s: calibrated_at: %v", domain.ErrConfigMissing, path, err)
		}
		cal.CalibratedAt = t
	default:
		return domain.Calibration{}, fmt.Errorf("%w: calibration %s: calibrated_at %v is not a timestamp", domain.ErrConfigMissing, path, at)
	}
	return cal, nil
}

// SaveCalibration writes cal to path as JSON, replacing any previous document
// atomically.
func SaveCalibration(path string, cal domain.Calibration) error {
	data, err := json.MarshalIndent(cal, "", "  ")
	if err != nil {
		return fmt.Errorf("encode calibration: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".calibration-*.json")
	if err != nil {
		return fmt.Errorf("create temp calibration: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write calibration: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close calibration: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
