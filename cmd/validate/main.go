// Command validate performs integrity checks on a processed day file: the
// column contract, row ordering, the smoothing, the solar and power model and
// the consistency of the applied coefficient. Every check is recomputed from
// the file itself, so it catches a file produced by a different build or
// edited by hand.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -f data/2022-09-14_processed.csv \
//	  -site config/config.json \
//	  -c 0.88
package main

import (
	"bytes"
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"slices"
	_ "time/tzdata"

	"github.com/couchcryptid/pv-monitoring-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/pv-monitoring-etl/internal/config"
	"github.com/couchcryptid/pv-monitoring-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name    string
	skipped bool
	errors  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// maxErrors caps the errors recorded per check so one bad column does not
// flood the report.
const maxErrors = 20

func main() {
	file := flag.String("f", "", "processed day file")
	sitePath := flag.String("site", "", "site document; enables the model recomputation phase")
	window := flag.Int("w", domain.DefaultSmoothingWindow, "smoothing window the file was produced with")
	coef := flag.Float64("c", 0, "expected coefficient; 0 skips the comparison")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*file, *sitePath, *window, *coef); code != 0 {
		os.Exit(code)
	}
}

func run(path, sitePath string, window int, coef float64) int {
	fmt.Println("=== Processed Day Integrity Validation ===")
	fmt.Println()

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read %s: %v\n", path, err)
		return 1
	}
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read header: %v\n", err)
		return 1
	}
	rows, err := csvfile.ReadProcessed(bytes.NewReader(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: decode %s: %v\n", path, err)
		return 1
	}

	var site *domain.Site
	if sitePath != "" {
		s, err := config.LoadSite(sitePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load site: %v\n", err)
			return 1
		}
		site = &s
	}

	// ── Run validation phases ──
	phases := []*phase{
		validateColumns(header),
		validateRows(rows),
		validateSmoothing(rows, window),
		validateModel(rows, site),
		validateCoefficient(rows, coef),
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		switch {
		case p.skipped:
			status = "\033[33mSKIP\033[0m"
		case !p.passed():
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d\n", len(rows))

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Column Contract ──
// The seven raw columns in order, then the derived ones.

func validateColumns(header []string) *phase {
	p := &phase{name: "Phase 1: Column Contract"}
	want := domain.ProcessedColumns()
	if !slices.Equal(header, want) {
		p.errorf("header %v, want %v", header, want)
	}
	return p
}

// ── Phase 2: Rows ──

func validateRows(rows []domain.ProcessedSample) *phase {
	p := &phase{name: "Phase 2: Rows (ordering, finite values)"}
	series := make(domain.Series, len(rows))
	for i, r := range rows {
		series[i] = r.Sample
	}
	if err := series.Validate(); err != nil {
		p.errorf("%v", err)
	}
	return p
}

// ── Phase 3: Smoothing ──
// Recomputes the centred moving average of every channel.

func validateSmoothing(rows []domain.ProcessedSample, window int) *phase {
	p := &phase{name: fmt.Sprintf("Phase 3: Smoothing (window %d)", window)}

	channels := []struct {
		name     string
		raw      func(domain.ProcessedSample) float64
		smoothed func(domain.ProcessedSample) float64
	}{
		{domain.ColTemperature, func(r domain.ProcessedSample) float64 { return r.Temperature }, func(r domain.ProcessedSample) float64 { return r.Smoothed.Temperature }},
		{domain.ColIrradiance, func(r domain.ProcessedSample) float64 { return r.Irradiance }, func(r domain.ProcessedSample) float64 { return r.Smoothed.Irradiance }},
		{domain.ColVoltage, func(r domain.ProcessedSample) float64 { return r.Voltage }, func(r domain.ProcessedSample) float64 { return r.Smoothed.Voltage }},
		{domain.ColCurrent, func(r domain.ProcessedSample) float64 { return r.Current }, func(r domain.ProcessedSample) float64 { return r.Smoothed.Current }},
		{domain.ColPower, func(r domain.ProcessedSample) float64 { return r.Power }, func(r domain.ProcessedSample) float64 { return r.Smoothed.Power }},
	}

	for _, ch := range channels {
		raw := make([]float64, len(rows))
		for i, r := range rows {
			raw[i] = ch.raw(r)
		}
		want := domain.MovingAverage(raw, window)
		bad := 0
		for i, r := range rows {
			if got := ch.smoothed(r); !floatEq(got, want[i]) {
				if bad < maxErrors {
					p.errorf("%s line %d: %s_smoothed=%g, recomputed %g", r.Time, i+2, ch.name, got, want[i])
				}
				bad++
			}
		}
		if bad > maxErrors {
			p.errorf("%s: %d more mismatches", ch.name, bad-maxErrors)
		}
	}
	return p
}

// ── Phase 4: Solar and Power Model ──
// IAM is always range-checked; with a site document the IAM and PVWatts
// columns are recomputed.

func validateModel(rows []domain.ProcessedSample, site *domain.Site) *phase {
	p := &phase{name: "Phase 4: Solar and Power Model"}

	for i, r := range rows {
		if iam := r.Estimate.IAMFactor; iam < 0 || iam > 1 {
			p.errorf("%s line %d: iam_factor %g outside [0, 1]", r.Time, i+2, iam)
		}
		if len(p.errors) >= maxErrors {
			return p
		}
	}
	if site == nil {
		return p
	}

	est, err := domain.NewEstimator(*site, domain.DefaultIAMParams())
	if err != nil {
		p.errorf("site: %v", err)
		return p
	}
	for i, r := range rows {
		t, err := est.ParseTime(r.Time)
		if err != nil {
			p.errorf("line %d: %v", i+2, err)
			continue
		}
		want := est.Estimate(t, r.Smoothed.Irradiance, r.Smoothed.Temperature, 1)
		if math.Abs(want.IAMFactor-r.Estimate.IAMFactor) > 1e-9 {
			p.errorf("%s line %d: iam_factor=%g, recomputed %g", r.Time, i+2, r.Estimate.IAMFactor, want.IAMFactor)
		}
		if math.Abs(want.PVWattsPower-r.Estimate.PVWattsPower) > 0.011 {
			p.errorf("%s line %d: pvwatts_power=%g, recomputed %g", r.Time, i+2, r.Estimate.PVWattsPower, want.PVWattsPower)
		}
		if len(p.errors) >= maxErrors {
			break
		}
	}
	return p
}

// ── Phase 5: Coefficient ──
// computed_power must be one coefficient times pvwatts_power, up to rounding.

func validateCoefficient(rows []domain.ProcessedSample, expected float64) *phase {
	p := &phase{name: "Phase 5: Coefficient Consistency"}

	ideal := make([]float64, len(rows))
	computed := make([]float64, len(rows))
	for i, r := range rows {
		ideal[i] = r.Estimate.PVWattsPower
		computed[i] = r.Estimate.ComputedPower
	}

	k, err := domain.EstimateCoefficient(ideal, computed)
	if err != nil {
		p.skipped = true
		fmt.Printf("  Note: coefficient not checked: %v\n", err)
		return p
	}
	fmt.Printf("  Applied coefficient: %.4f\n", k)

	// Both columns are rounded to 0.01 W.
	tolerance := 0.005*(1+k) + 1e-9
	for i, r := range rows {
		if d := math.Abs(computed[i] - k*ideal[i]); d > tolerance {
			p.errorf("%s line %d: computed_power=%g, %g × pvwatts_power=%g", r.Time, i+2, computed[i], k, k*ideal[i])
		}
		if len(p.errors) >= maxErrors {
			break
		}
	}

	if expected > 0 && math.Abs(k-expected) > 1e-3 {
		p.errorf("applied coefficient %.4f, expected %.4f", k, expected)
	}
	return p
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
